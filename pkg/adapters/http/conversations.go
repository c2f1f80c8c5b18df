package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/hostline/internal/runtime"
	"github.com/aretw0/hostline/pkg/domain"
)

type startRequest struct {
	ID    string         `json:"id"`
	Slots map[string]any `json:"slots"`
}

type conversationResponse struct {
	Conversation *domain.Conversation `json:"conversation"`
	Prompt       string               `json:"prompt"`
}

// ListConversations handles GET /conversations.
func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	ids, err := s.cfg.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"conversations": ids})
}

// StartConversation handles POST /conversations.
func (s *Server) StartConversation(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, prompt, err := s.cfg.Sessions.Start(r.Context(), body.ID, body.Slots)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("conversation started", "conversation_id", conv.ID)
	writeJSON(w, http.StatusCreated, conversationResponse{Conversation: conv, Prompt: prompt})
}

// GetConversation handles GET /conversations/{id}.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, prompt, err := s.cfg.Sessions.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversationResponse{Conversation: conv, Prompt: prompt})
}

// DeleteConversation handles DELETE /conversations/{id}.
func (s *Server) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TakeTurn handles POST /conversations/{id}/turns.
func (s *Server) TakeTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in runtime.TurnInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.cfg.Sessions.Turn(r.Context(), id, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if res.Diff != nil {
		if b, err := json.Marshal(res.Diff); err == nil {
			s.Streams.Broadcast(id, string(b))
		}
	}
	writeJSON(w, http.StatusOK, res)
}
