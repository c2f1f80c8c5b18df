package http

import (
	"net/http"

	"github.com/aretw0/hostline/pkg/domain"
)

type chatRequest struct {
	Message string `json:"message"`
}

// Chat handles POST /chat. It answers from the canned tables only and never
// touches a conversation.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Chat == nil {
		writeError(w, http.StatusServiceUnavailable, "chat not configured")
		return
	}
	var body chatRequest
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg, err := domain.SanitizeInput(body.Message, s.cfg.MaxInputBytes)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Chat.Reply(msg))
}
