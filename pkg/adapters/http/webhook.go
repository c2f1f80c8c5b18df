package http

import (
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/hostline/pkg/calllog"
	"github.com/aretw0/hostline/pkg/outcome"
)

// Webhook event types sent by the voice platform.
const (
	EventCallStarted  = "call_started"
	EventCallEnded    = "call_ended"
	EventCallAnalyzed = "call_analyzed"
)

type webhookEvent struct {
	EventType string         `json:"event_type"`
	Payload   map[string]any `json:"payload"`
}

type callTurn struct {
	Role       string `mapstructure:"role"`
	Transcript string `mapstructure:"transcript"`
}

// callPayload is the part of a call event payload the call log needs.
type callPayload struct {
	CallID      string         `mapstructure:"call_id"`
	PhoneNumber string         `mapstructure:"phone_number"`
	FromNumber  string         `mapstructure:"from_number"`
	Transcript  string         `mapstructure:"transcript"`
	Turns       []callTurn     `mapstructure:"turns"`
	Analysis    map[string]any `mapstructure:"analysis"`
}

func decodePayload(raw map[string]any) (callPayload, error) {
	var p callPayload
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return p, err
	}
	return p, dec.Decode(raw)
}

func (p callPayload) phone() string {
	if p.PhoneNumber != "" {
		return p.PhoneNumber
	}
	return p.FromNumber
}

// HandleWebhook handles POST /webhook.
func (s *Server) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var ev webhookEvent
	if err := decode(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch ev.EventType {
	case EventCallStarted:
		s.logger.Info("call started", "call_id", ev.Payload["call_id"])
		writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Call started event received"})
		return
	case EventCallEnded, EventCallAnalyzed:
	default:
		s.logger.Warn("unknown webhook event", "event_type", ev.EventType)
		writeJSON(w, http.StatusOK, map[string]string{"status": "warning", "message": "Unknown event type: " + ev.EventType})
		return
	}

	p, err := decodePayload(ev.Payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	transcript := p.Transcript
	if ev.EventType == EventCallEnded && len(p.Turns) > 0 {
		parts := make([]string, len(p.Turns))
		for i, t := range p.Turns {
			parts[i] = t.Transcript
		}
		transcript = strings.Join(parts, " ")
	}

	s.logger.Info("call finished", "event_type", ev.EventType, "call_id", p.CallID)
	s.logCall(w, r, outcome.Call{Modality: outcome.ModalityCall, PhoneNumber: p.phone(), Transcript: transcript})
}

type chatbotLog struct {
	PhoneNumber string `json:"phone_number"`
	Transcript  string `json:"transcript"`
}

// LogChatbotConversation handles POST /chatbot-log.
func (s *Server) LogChatbotConversation(w http.ResponseWriter, r *http.Request) {
	var body chatbotLog
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logCall(w, r, outcome.Call{Modality: outcome.ModalityChatbot, PhoneNumber: body.PhoneNumber, Transcript: body.Transcript})
}

// logCall writes the call log row. Sink failures are reported in the body
// with a 200 status; they never fail the request.
func (s *Server) logCall(w http.ResponseWriter, r *http.Request, call outcome.Call) {
	if s.cfg.CallLog == nil {
		writeJSON(w, http.StatusOK, calllog.Result{Status: calllog.StatusError, Error: "call log not configured"})
		return
	}
	res := <-s.cfg.CallLog.LogAsync(r.Context(), call)
	writeJSON(w, http.StatusOK, res)
}
