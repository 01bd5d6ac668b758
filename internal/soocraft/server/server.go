// Package server exposes the local companion API: a loopback-only HTTP
// surface for inspecting the session and receiving answer merges from
// another soocraft instance's sync push.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
	"github.com/outcome-tools/soocraft/internal/soocraft/audit"
	"github.com/outcome-tools/soocraft/internal/soocraft/export"
	"github.com/outcome-tools/soocraft/internal/soocraft/flow"
	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
	"github.com/outcome-tools/soocraft/pkg/httpapi"
	"github.com/outcome-tools/soocraft/pkg/netguard"
)

type Server struct {
	def    *flow.Definition
	store  *answers.Store
	linter *lint.Engine
	log    *audit.Log
	mux    *http.ServeMux
	srv    *http.Server
	routed bool

	// Prompts renders prompts.txt for artifact downloads. Optional; when
	// unset the artifact is served empty.
	Prompts func() string
}

func New(def *flow.Definition, store *answers.Store, linter *lint.Engine, log *audit.Log) *Server {
	return &Server{def: def, store: store, linter: linter, log: log, mux: http.NewServeMux()}
}

func (s *Server) ListenAndServe(addr string) error {
	if err := netguard.EnsureLocalOnly(addr); err != nil {
		return err
	}
	s.routes()
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s.srv.ListenAndServe()
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	s.routes()
	return s.mux
}

func (s *Server) routes() {
	if s.routed {
		return
	}
	s.routed = true
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/session", s.handleSession)
	s.mux.HandleFunc("/api/answers", s.handleAnswers)
	s.mux.HandleFunc("/api/audit", s.handleAudit)
	s.mux.HandleFunc("/api/lint", s.handleLint)
	s.mux.HandleFunc("/api/artifacts/", s.handleArtifact)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	httpapi.WriteOK(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionStep struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Answered int    `json:"answered"`
	Fields   int    `json:"fields"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	values := s.store.All()
	steps := make([]sessionStep, 0, len(s.def.Steps))
	for _, step := range s.def.Steps {
		ss := sessionStep{ID: step.ID, Title: step.Title, Fields: len(step.Field)}
		for _, field := range step.Field {
			if _, ok := values[answers.Key(step.ID, field.ID)]; ok {
				ss.Answered++
			}
		}
		steps = append(steps, ss)
	}
	httpapi.WriteOK(w, http.StatusOK, map[string]any{
		"steps":        steps,
		"totalAnswers": len(values),
	})
}

func (s *Server) handleAnswers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httpapi.WriteOK(w, http.StatusOK, s.store.All())
	case http.MethodPost:
		var incoming map[string]any
		if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
			httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "invalid JSON body", nil)
			return
		}
		var unknown []string
		for key := range incoming {
			if !s.def.HasKey(key) {
				unknown = append(unknown, key)
			}
		}
		if len(unknown) > 0 {
			httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "unknown answer keys", unknown)
			return
		}
		for key, value := range incoming {
			stepID, fieldID, _ := strings.Cut(key, ".")
			s.store.Set(stepID, fieldID, value)
		}
		httpapi.WriteOK(w, http.StatusOK, map[string]int{"merged": len(incoming)})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	httpapi.WriteOK(w, http.StatusOK, s.log.Snapshot())
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.ErrInvalidRequest, "invalid JSON body", nil)
		return
	}
	httpapi.WriteOK(w, http.StatusOK, s.linter.Evaluate(body.Text))
}

// handleArtifact serves one file of the export bundle, e.g.
// GET /api/artifacts/soo.md or /api/artifacts/source/inputs.yml.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/artifacts/")
	prompts := ""
	if s.Prompts != nil {
		prompts = s.Prompts()
	}
	files, err := export.Artifacts(s.store, s.log, prompts, audit.WizardVersion)
	if err != nil {
		httpapi.WriteError(w, http.StatusConflict, httpapi.ErrGateDenied, err.Error(), nil)
		return
	}
	if _, ok := files[name]; !ok {
		httpapi.WriteError(w, http.StatusNotFound, httpapi.ErrNotFound, "unknown artifact "+name, nil)
		return
	}
	w.Header().Set("Content-Type", artifactContentType(name))
	_ = export.WriteArtifact(w, files, name)
}

func artifactContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(name, ".rtf"):
		return "application/rtf"
	case strings.HasSuffix(name, ".yml"):
		return "application/yaml"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	httpapi.WriteError(w, http.StatusMethodNotAllowed, httpapi.ErrInvalidRequest, "method not allowed", nil)
}
