package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/ziadkadry99/docskin/internal/colormode"
	"github.com/ziadkadry99/docskin/internal/db"
	"github.com/ziadkadry99/docskin/internal/live"
	"github.com/ziadkadry99/docskin/internal/prefs"
	"github.com/ziadkadry99/docskin/internal/site"
	"github.com/ziadkadry99/docskin/internal/walker"
)

// Config holds server configuration.
type Config struct {
	Port     int
	DataDir  string // directory for the SQLite DB
	SiteDir  string // built HTML site being served
	Include  []string
	Exclude  []string
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server serves a built site with the color-mode widget rendered per
// client, the preference API and the live session endpoint.
type Server struct {
	cfg        Config
	db         *db.DB
	prefs      *prefs.Store
	site       *site.Customizer
	live       *live.Handler
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. source loads icons missing from the customizer's
// cache during live sessions; it may be nil.
func New(cfg Config, database *db.DB, customizer *site.Customizer, source colormode.IconSource) *Server {
	s := &Server{
		cfg:   cfg,
		db:    database,
		prefs: prefs.NewStore(database),
		site:  customizer,
	}
	if customizer != nil {
		s.live = live.NewHandler(live.Config{
			Modes:   customizer.Modes(),
			Default: customizer.DefaultMode(),
			Icons:   customizer.Icons(),
			Source:  source,
			Store:   s.storeFor,
		})
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Live sessions outlive any request timeout.
	if s.live != nil {
		r.Get(live.SocketPath, s.live.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Health check
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Get(live.ScriptPath, live.ServeScript)

		if s.site != nil {
			prefs.RegisterRoutes(r, prefs.RoutesConfig{
				Store:   s.prefs,
				Modes:   s.site.Modes(),
				Default: s.site.DefaultMode(),
				Icons:   s.site.Icons(),
			})
			r.Get("/*", s.handleSite)
		}
	})

	return r
}

// storeFor binds the preference store to the client cookie of r. Requests
// without a valid cookie get no persistence.
func (s *Server) storeFor(r *http.Request) colormode.ModeStore {
	c, err := r.Cookie(prefs.CookieName)
	if err != nil {
		return nil
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return nil
	}
	return s.prefs.ForClient(id.String())
}

// handleSite serves the built site. Pages are customized on the fly with
// the client's stored color mode; everything else is served as is.
func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if rel == "" || strings.HasSuffix(r.URL.Path, "/") {
		rel = path.Join(rel, "index.html")
	}

	if !s.isPage(rel) {
		http.FileServer(http.Dir(s.cfg.SiteDir)).ServeHTTP(w, r)
		return
	}

	data, err := os.ReadFile(filepath.Join(s.cfg.SiteDir, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	id := prefs.ClientID(w, r)
	mode := ""
	if p, ok, err := s.prefs.Get(r.Context(), id); err != nil {
		log.Printf("server: reading color mode: %v", err)
	} else if ok {
		mode = p.Mode
	}

	out, warnings, err := s.site.RewritePage(r.Context(), rel, data, mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, warn := range warnings {
		log.Printf("server: %s: %v", rel, warn)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(out)
}

func (s *Server) isPage(rel string) bool {
	if !strings.HasSuffix(rel, ".html") {
		return false
	}
	return walker.MatchesInclude(rel, s.cfg.Include) && !walker.MatchesExclude(rel, s.cfg.Exclude)
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("docskin server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
