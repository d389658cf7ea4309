package live

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/docskin/internal/colormode"
)

func testModes(t *testing.T) *colormode.ModeSet {
	t.Helper()
	set, err := colormode.NewModeSet([]colormode.Mode{
		{Name: "Light", Value: "light", Icon: "/icons/sun.svg"},
		{Name: "Dark", Value: "dark", Icon: "/icons/moon.svg"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return set
}

type memStore struct {
	mu    sync.Mutex
	value string
}

func (s *memStore) StoredMode(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.value != "", nil
}

func (s *memStore) StoreMode(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	return nil
}

type mapSource map[string]string

func (m mapSource) FetchIcon(ctx context.Context, locator string) (string, error) {
	if s, ok := m[locator]; ok {
		return s, nil
	}
	return "", fmt.Errorf("no icon at %s", locator)
}

func setupServer(t *testing.T, cfg Config) string {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = log.New(&bytes.Buffer{}, "", 0)
	}
	r := chi.NewRouter()
	r.Get(SocketPath, NewHandler(cfg).ServeHTTP)
	r.Get(ScriptPath, ServeScript)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http") + SocketPath
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var m Message
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	return m
}

// readInitial consumes the mode message and the full render sent on
// connect: toggle, menu and one patch per item.
func readInitial(t *testing.T, conn *websocket.Conn, items int) []Message {
	t.Helper()
	msgs := make([]Message, 0, 3+items)
	for i := 0; i < 3+items; i++ {
		msgs = append(msgs, read(t, conn))
	}
	return msgs
}

func TestSession_InitialRender(t *testing.T) {
	icons := colormode.NewIconCache()
	icons.Put("light", "<svg>sun</svg>")
	icons.Put("dark", "<svg>moon</svg>")
	url := setupServer(t, Config{Modes: testModes(t), Default: "light", Icons: icons})

	conn := dial(t, url)
	msgs := readInitial(t, conn, 2)

	if msgs[0].Type != "mode" || msgs[0].Mode != "light" {
		t.Errorf("first message = %+v, want mode light", msgs[0])
	}
	toggle := msgs[1]
	if toggle.Type != "patch" || toggle.Mount != colormode.MountToggle || toggle.Content == nil || *toggle.Content != "<svg>sun</svg>" {
		t.Errorf("toggle patch = %+v", toggle)
	}
	menu := msgs[2]
	if menu.Mount != colormode.MountMenu || menu.Expanded == nil || *menu.Expanded {
		t.Errorf("menu patch = %+v", menu)
	}
	if msgs[3].Mount != colormode.MountItem || msgs[3].Value != "light" {
		t.Errorf("first item patch = %+v", msgs[3])
	}
	if msgs[4].Mount != colormode.MountItem || msgs[4].Value != "dark" || *msgs[4].Content != "<svg>moon</svg>" {
		t.Errorf("second item patch = %+v", msgs[4])
	}
}

func TestSession_SelectMode(t *testing.T) {
	icons := colormode.NewIconCache()
	icons.Put("light", "<svg>sun</svg>")
	icons.Put("dark", "<svg>moon</svg>")
	store := &memStore{}
	url := setupServer(t, Config{
		Modes:   testModes(t),
		Default: "light",
		Icons:   icons,
		Store:   func(*http.Request) colormode.ModeStore { return store },
	})

	conn := dial(t, url)
	readInitial(t, conn, 2)

	// Open the menu first so the select has something to close.
	if err := conn.WriteJSON(Event{Type: "open"}); err != nil {
		t.Fatal(err)
	}
	if m := read(t, conn); m.Mount != colormode.MountMenu || m.Expanded == nil || !*m.Expanded {
		t.Fatalf("open patch = %+v", m)
	}

	if err := conn.WriteJSON(Event{Type: "select", Mode: "dark"}); err != nil {
		t.Fatal(err)
	}
	if m := read(t, conn); m.Type != "mode" || m.Mode != "dark" {
		t.Errorf("mode message = %+v", m)
	}
	if m := read(t, conn); m.Mount != colormode.MountToggle || *m.Content != "<svg>moon</svg>" {
		t.Errorf("toggle patch = %+v", m)
	}
	if m := read(t, conn); m.Mount != colormode.MountMenu || m.Expanded == nil || *m.Expanded {
		t.Errorf("close patch = %+v", m)
	}

	if v, _, _ := store.StoredMode(context.Background()); v != "dark" {
		t.Errorf("stored mode = %q, want dark", v)
	}
}

func TestSession_RestoresStoredMode(t *testing.T) {
	store := &memStore{value: "dark"}
	url := setupServer(t, Config{
		Modes:   testModes(t),
		Default: "light",
		Icons:   colormode.NewIconCache(),
		Store:   func(*http.Request) colormode.ModeStore { return store },
	})

	conn := dial(t, url)
	if m := read(t, conn); m.Type != "mode" || m.Mode != "dark" {
		t.Errorf("first message = %+v, want mode dark", m)
	}
}

func TestSession_InvalidSelect(t *testing.T) {
	url := setupServer(t, Config{Modes: testModes(t), Default: "light", Icons: colormode.NewIconCache()})

	conn := dial(t, url)
	readInitial(t, conn, 2)

	if err := conn.WriteJSON(Event{Type: "select", Mode: "sepia"}); err != nil {
		t.Fatal(err)
	}
	// The menu is already closed, so only the error arrives.
	m := read(t, conn)
	if m.Type != "error" || !strings.Contains(m.Error, "sepia") {
		t.Errorf("expected invalid mode error, got %+v", m)
	}
}

func TestSession_ToggleTwice(t *testing.T) {
	url := setupServer(t, Config{Modes: testModes(t), Default: "light", Icons: colormode.NewIconCache()})

	conn := dial(t, url)
	readInitial(t, conn, 2)

	for _, want := range []bool{true, false} {
		if err := conn.WriteJSON(Event{Type: "toggle"}); err != nil {
			t.Fatal(err)
		}
		m := read(t, conn)
		if m.Mount != colormode.MountMenu || m.Expanded == nil || *m.Expanded != want {
			t.Errorf("toggle patch = %+v, want expanded=%v", m, want)
		}
	}
}

func TestSession_BadMessages(t *testing.T) {
	url := setupServer(t, Config{Modes: testModes(t), Default: "light", Icons: colormode.NewIconCache()})

	conn := dial(t, url)
	readInitial(t, conn, 2)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if m := read(t, conn); m.Type != "error" || m.Error != "invalid message format" {
		t.Errorf("got %+v", m)
	}

	if err := conn.WriteJSON(Event{Type: "dance"}); err != nil {
		t.Fatal(err)
	}
	if m := read(t, conn); m.Type != "error" || !strings.Contains(m.Error, "dance") {
		t.Errorf("got %+v", m)
	}
}

func TestSession_PrefetchesMissingIcons(t *testing.T) {
	icons := colormode.NewIconCache()
	url := setupServer(t, Config{
		Modes:   testModes(t),
		Default: "light",
		Icons:   icons,
		Source:  mapSource{"/icons/sun.svg": "<svg>sun</svg>", "/icons/moon.svg": "<svg>moon</svg>"},
	})

	conn := dial(t, url)
	readInitial(t, conn, 2)

	// After the background fetch the toggle is re-rendered with the icon.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		m := read(t, conn)
		if m.Mount == colormode.MountToggle && m.Content != nil && *m.Content == "<svg>sun</svg>" {
			if _, ok := icons.Get("dark"); !ok {
				t.Error("dark icon not cached")
			}
			return
		}
	}
	t.Fatal("toggle never re-rendered with the fetched icon")
}

func TestServeScript(t *testing.T) {
	w := httptest.NewRecorder()
	ServeScript(w, httptest.NewRequest("GET", ScriptPath, nil))

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{
		SocketPath,
		"theme-dropdown-item",
		"data-color-mode",
		`"select"`,
		`document.querySelectorAll('[data-toggle="rst-versions"]')`,
		`document.querySelectorAll('[data-toggle="wy-nav-shift"]')`,
		"toggleMobileMenu();",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("script missing %q", want)
		}
	}
	if strings.Contains(body, "{{") {
		t.Error("script has unreplaced placeholders")
	}
}

func TestSession_RejectsCrossOrigin(t *testing.T) {
	url := setupServer(t, Config{Modes: testModes(t), Default: "light", Icons: colormode.NewIconCache()})

	header := http.Header{}
	header.Set("Origin", "http://attacker.example")
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		conn.Close()
		t.Fatal("cross-origin handshake accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %v", resp)
	}
}

func TestSession_AcceptsSameOrigin(t *testing.T) {
	url := setupServer(t, Config{Modes: testModes(t), Default: "light", Icons: colormode.NewIconCache()})

	header := http.Header{}
	header.Set("Origin", "http://"+strings.TrimPrefix(strings.TrimSuffix(url, SocketPath), "ws://"))
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("same-origin handshake: %v", err)
	}
	defer conn.Close()
	if m := read(t, conn); m.Type != "mode" {
		t.Errorf("first message = %+v", m)
	}
}
