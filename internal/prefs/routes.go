package prefs

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/docskin/internal/colormode"
)

// RoutesConfig holds what the preference endpoints need.
type RoutesConfig struct {
	Store   *Store
	Modes   *colormode.ModeSet
	Default string
	Icons   *colormode.IconCache // reports which icons are loaded; may be nil
}

type modeResponse struct {
	colormode.Mode
	Loaded bool `json:"loaded"`
}

type colorModeResponse struct {
	Mode   string `json:"mode"`
	Stored bool   `json:"stored"`
}

type colorModeRequest struct {
	Mode string `json:"mode"`
}

// RegisterRoutes mounts the mode listing and the per-client color-mode
// endpoints on the given router.
func RegisterRoutes(r chi.Router, cfg RoutesConfig) {
	r.Get("/api/modes", handleModes(cfg))
	r.Route("/api/color-mode", func(r chi.Router) {
		r.Get("/", handleGetColorMode(cfg))
		r.Put("/", handleSetColorMode(cfg))
		r.Delete("/", handleResetColorMode(cfg))
	})
}

func handleModes(cfg RoutesConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modes := cfg.Modes.All()
		out := make([]modeResponse, len(modes))
		for i, m := range modes {
			out[i] = modeResponse{Mode: m}
			if cfg.Icons != nil {
				_, out[i].Loaded = cfg.Icons.Get(m.Value)
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetColorMode(cfg RoutesConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ClientID(w, r)

		p, ok, err := cfg.Store.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		// A value that is no longer configured falls back to the default.
		if ok {
			if _, known := cfg.Modes.Lookup(p.Mode); known {
				writeJSON(w, http.StatusOK, colorModeResponse{Mode: p.Mode, Stored: true})
				return
			}
		}
		writeJSON(w, http.StatusOK, colorModeResponse{Mode: cfg.Default})
	}
}

func handleSetColorMode(cfg RoutesConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req colorModeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if _, ok := cfg.Modes.Lookup(req.Mode); !ok {
			http.Error(w, (&colormode.InvalidModeError{Value: req.Mode}).Error(), http.StatusBadRequest)
			return
		}

		id := ClientID(w, r)
		if err := cfg.Store.Set(r.Context(), id, req.Mode); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, colorModeResponse{Mode: req.Mode, Stored: true})
	}
}

func handleResetColorMode(cfg RoutesConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ClientID(w, r)
		if err := cfg.Store.Delete(r.Context(), id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, colorModeResponse{Mode: cfg.Default})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
