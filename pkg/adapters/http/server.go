package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/hostline/pkg/calllog"
	"github.com/aretw0/hostline/pkg/chat"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/knowledge"
	"github.com/aretw0/hostline/pkg/publisher"
	"github.com/aretw0/hostline/pkg/session"
)

// Config wires the collaborators served over HTTP. Sessions is required;
// routes whose collaborator is nil answer 503.
type Config struct {
	Sessions  *session.Manager
	Knowledge *knowledge.Base
	Chat      *chat.Responder
	CallLog   *calllog.Logger
	Graph     *publisher.Graph
	Metrics   http.Handler
	Logger    *slog.Logger
	Version   string

	// MaxInputBytes bounds chat messages. Zero means domain.DefaultMaxInputBytes.
	MaxInputBytes int
}

// Server holds the handlers.
type Server struct {
	cfg     Config
	logger  *slog.Logger
	Streams *StreamManager
}

// NewHandler builds the router.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("http: session manager is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s := &Server{cfg: cfg, logger: logger, Streams: NewStreamManager(logger)}

	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(doc, func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(enableCORS)
	r.Use(validate)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Post("/webhook", s.HandleWebhook)
	r.Post("/chatbot-log", s.LogChatbotConversation)
	r.Post("/chat", s.Chat)

	r.Route("/conversations", func(r chi.Router) {
		r.Get("/", s.ListConversations)
		r.Post("/", s.StartConversation)
		r.Get("/{id}", s.GetConversation)
		r.Delete("/{id}", s.DeleteConversation)
		r.Post("/{id}/turns", s.TakeTurn)
		r.Get("/{id}/events", s.SubscribeEvents)
	})

	r.Route("/kb", func(r chi.Router) {
		r.Get("/cities", s.ListCities)
		r.Get("/outlets/{city}", s.ListOutlets)
		r.Get("/outlet/{city}/{outlet}", s.GetOutlet)
		r.Get("/menu", s.GetMenu)
		r.Post("/query", s.QueryKnowledge)
	})

	r.Get("/graph", s.GetGraph)
	r.Get("/graph/mermaid", s.GetMermaid)

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := LoadSpec(r.Context()); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	version := s.cfg.Version
	if version == "" {
		version = "dev"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "hostline",
		"version":     version,
		"api_version": apiVersion,
	})
}

// GetGraph handles GET /graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Graph == nil {
		writeError(w, http.StatusServiceUnavailable, "graph export not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Graph)
}

// GetMermaid handles GET /graph/mermaid.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Graph == nil {
		writeError(w, http.StatusServiceUnavailable, "graph export not configured")
		return
	}

	var overlay *publisher.Overlay
	if id := r.URL.Query().Get("conversation_id"); id != "" {
		conv, err := s.cfg.Sessions.Load(r.Context(), id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		overlay = &publisher.Overlay{Visited: conv.History, Current: conv.State}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, publisher.Mermaid(*s.cfg.Graph, overlay))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrConversationNotFound),
		errors.Is(err, knowledge.ErrCityNotFound),
		errors.Is(err, knowledge.ErrOutletNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConversationEnded):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInputTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidUTF8):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Info("request refused", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
