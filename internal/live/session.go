package live

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/docskin/internal/colormode"
)

// Message is the outgoing WebSocket message format.
type Message struct {
	Type     string               `json:"type"` // "patch", "mode" or "error"
	Mount    colormode.MountPoint `json:"mount,omitempty"`
	Value    string               `json:"value,omitempty"`
	Content  *string              `json:"content,omitempty"`
	Expanded *bool                `json:"expanded,omitempty"`
	Mode     string               `json:"mode,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// Event is the incoming WebSocket message format.
type Event struct {
	Type string `json:"type"` // "select", "toggle", "open", "close" or "render"
	Mode string `json:"mode,omitempty"`
}

const writeWait = 10 * time.Second

// Config configures a Handler.
type Config struct {
	Modes   *colormode.ModeSet
	Default string
	Icons   *colormode.IconCache // shared with page rendering
	Source  colormode.IconSource // loads icons missing from Icons; may be nil

	// Store returns the persistence hook for the requesting client, or nil.
	Store func(r *http.Request) colormode.ModeStore

	Logger *log.Logger
}

// Handler serves live color-mode sessions. Each connection drives its own
// colormode.Controller whose mount points live in the browser: renders are
// sent as patches and user actions arrive as events.
type Handler struct {
	cfg      Config
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler.
func NewHandler(cfg Config) *Handler {
	// The zero Upgrader only accepts browsers whose Origin matches the
	// request host; a session can rewrite the visitor's stored mode.
	h := &Handler{
		cfg:    cfg,
		logger: cfg.Logger,
	}
	if h.logger == nil {
		h.logger = log.Default()
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var store colormode.ModeStore
	if h.cfg.Store != nil {
		store = h.cfg.Store(r)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("live: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s := &session{conn: conn, logger: h.logger}
	ctl, err := colormode.New(ctx, colormode.Config{
		Modes:   h.cfg.Modes,
		Default: h.cfg.Default,
		Source:  h.cfg.Source,
		Cache:   h.cfg.Icons,
		Store:   store,
		Mounts:  s,
		Logger:  h.logger,
	})
	if err != nil {
		s.sendError(err.Error())
		return
	}
	defer ctl.Close()

	ctl.OnChange(func(m colormode.Mode) {
		s.send(Message{Type: "mode", Mode: m.Value})
	})

	s.send(Message{Type: "mode", Mode: ctl.ActiveMode().Value})
	if err := ctl.Render(); err != nil {
		h.logger.Printf("live: initial render: %v", err)
	}
	if h.cfg.Source != nil && ctl.Cache().Len() < h.cfg.Modes.Len() {
		go ctl.PrefetchIcons(ctx)
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Printf("live: websocket read: %v", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			s.sendError("invalid message format")
			continue
		}
		h.dispatch(ctx, s, ctl, ev)
	}
}

func (h *Handler) dispatch(ctx context.Context, s *session, ctl *colormode.Controller, ev Event) {
	switch ev.Type {
	case "select":
		if err := ctl.SelectMode(ctx, ev.Mode); err != nil {
			s.sendError(err.Error())
		}
	case "toggle":
		ctl.ToggleMenu()
	case "open":
		ctl.OpenMenu()
	case "close":
		ctl.CloseMenu()
	case "render":
		if err := ctl.Render(); err != nil {
			h.logger.Printf("live: render: %v", err)
		}
	default:
		s.sendError("unknown message type: " + ev.Type)
	}
}

// session is one browser connection. It implements colormode.Mounts; every
// mount is present and writes become patches.
type session struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	logger *log.Logger
}

func (s *session) send(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(m); err != nil {
		s.logger.Printf("live: websocket write: %v", err)
	}
}

func (s *session) sendError(message string) {
	s.send(Message{Type: "error", Error: message})
}

func (s *session) Toggle() (colormode.Element, bool) {
	return remoteElement{s: s, mount: colormode.MountToggle}, true
}

func (s *session) Menu() (colormode.Element, bool) {
	return remoteElement{s: s, mount: colormode.MountMenu}, true
}

func (s *session) Item(value string) (colormode.Element, bool) {
	return remoteElement{s: s, mount: colormode.MountItem, value: value}, true
}

type remoteElement struct {
	s     *session
	mount colormode.MountPoint
	value string
}

func (e remoteElement) SetContent(markup string) error {
	e.s.send(Message{Type: "patch", Mount: e.mount, Value: e.value, Content: &markup})
	return nil
}

func (e remoteElement) SetExpanded(expanded bool) {
	e.s.send(Message{Type: "patch", Mount: e.mount, Value: e.value, Expanded: &expanded})
}
