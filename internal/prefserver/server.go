// Package prefserver serves the preference document over HTTP, in the shape
// the original workspace backend used, so a dashboard can run against a
// remote store instead of a local file.
package prefserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pulseboard/internal/prefs"
)

type Server struct {
	store  prefs.Store
	logger *log.Logger
}

func New(store prefs.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{store: store, logger: logger}
}

// Handler builds the router. The document endpoint merges per key on PATCH,
// which is what lets dashboard clients write only the keys they own.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/api/users/me/preferences", s.getPreferences)
	r.Patch("/api/users/me/preferences", s.patchPreferences)
	return r
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Read(r.Context())
	if err != nil {
		s.logger.Error("read preferences", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read preferences")
		return
	}
	writeJSON(w, http.StatusOK, documentBody(doc))
}

func (s *Server) patchPreferences(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	doc, err := documentFromPatch(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.Write(r.Context(), doc); err != nil {
		s.logger.Error("write preferences", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to write preferences")
		return
	}

	updated, err := s.store.Read(r.Context())
	if err != nil {
		s.logger.Error("re-read preferences", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read preferences")
		return
	}
	writeJSON(w, http.StatusOK, documentBody(updated))
}

// documentFromPatch validates the owned keys the way the original backend
// did (layout must be an object, active widgets a list, visibility an
// object) and passes every other key through untouched.
func documentFromPatch(body map[string]json.RawMessage) (prefs.Document, error) {
	var doc prefs.Document
	for k, v := range body {
		switch k {
		case prefs.KeyActiveWidgets:
			var ids []string
			// A JSON null unmarshals cleanly but leaves the slice nil; the
			// original backend treated null as a type violation too.
			if err := json.Unmarshal(v, &ids); err != nil || ids == nil {
				return prefs.Document{}, errors.New(prefs.KeyActiveWidgets + " must be a list")
			}
			doc.ActiveWidgets = ids
		case prefs.KeyLayout:
			var m map[string]prefs.Rect
			if err := json.Unmarshal(v, &m); err != nil || m == nil {
				return prefs.Document{}, errors.New(prefs.KeyLayout + " must be a dictionary")
			}
			doc.Layouts = m
		case prefs.KeyVisibility:
			var m map[string]bool
			if err := json.Unmarshal(v, &m); err != nil || m == nil {
				return prefs.Document{}, errors.New(prefs.KeyVisibility + " must be a dictionary")
			}
			doc.Visibility = m
		default:
			if doc.Extra == nil {
				doc.Extra = map[string]json.RawMessage{}
			}
			doc.Extra[k] = v
		}
	}
	return doc, nil
}

// documentBody flattens a document back into one JSON object for responses.
func documentBody(doc prefs.Document) map[string]any {
	out := map[string]any{}
	for k, v := range doc.Extra {
		out[k] = v
	}
	// Owned keys are always present in responses, defaulted when unset, so
	// clients need no absent-key handling of their own.
	if doc.ActiveWidgets != nil {
		out[prefs.KeyActiveWidgets] = doc.ActiveWidgets
	} else {
		out[prefs.KeyActiveWidgets] = []string{}
	}
	if doc.Layouts != nil {
		out[prefs.KeyLayout] = doc.Layouts
	} else {
		out[prefs.KeyLayout] = map[string]prefs.Rect{}
	}
	if doc.Visibility != nil {
		out[prefs.KeyVisibility] = doc.Visibility
	} else {
		out[prefs.KeyVisibility] = map[string]bool{}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
