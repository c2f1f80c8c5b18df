package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/guard"
	"github.com/aretw0/hostline/pkg/knowledge"
	"github.com/aretw0/hostline/pkg/outcome"
	"github.com/aretw0/hostline/pkg/publisher"
)

const graphURI = "hostline://graph"

// Engine is the slice of the flow engine the MCP tools need.
type Engine interface {
	Evaluate(state domain.State, in guard.Input) (domain.State, error)
	Render(state domain.State, slots domain.SlotContext) (string, error)
}

// StateResponse answers next_state and render_prompt.
type StateResponse struct {
	State        domain.State `json:"state" jsonschema_description:"The state the conversation is in after evaluation"`
	Transitioned bool         `json:"transitioned" jsonschema_description:"Whether the state changed"`
	Terminal     bool         `json:"terminal" jsonschema_description:"Whether the conversation ends in this state"`
	Prompt       string       `json:"prompt,omitempty" jsonschema_description:"Agent instructions for the state"`
}

// StateArgs are the arguments of next_state and render_prompt.
type StateArgs struct {
	State      string         `json:"state"`
	Slots      map[string]any `json:"slots,omitempty"`
	Attempts   int            `json:"attempts,omitempty"`
	Transcript string         `json:"transcript,omitempty"`
}

// ClassifyArgs are the arguments of classify_outcome.
type ClassifyArgs struct {
	Transcript  string `json:"transcript"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithKnowledge enables the ask_knowledge tool.
func WithKnowledge(kb *knowledge.Base) Option {
	return func(s *Server) { s.kb = kb }
}

// WithGraph exposes the compiled agent graph as a resource.
func WithGraph(g *publisher.Graph) Option {
	return func(s *Server) { s.graph = g }
}

// WithClock sets the clock used to resolve relative booking dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server exposes the engine as an MCP server.
type Server struct {
	engine    Engine
	kb        *knowledge.Base
	graph     *publisher.Graph
	logger    *slog.Logger
	now       func() time.Time
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		mcpServer: server.NewMCPServer("hostline-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio serves on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on addr using SSE until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop mcp server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("next_state",
		mcp.WithDescription("Decide the conversation state after a turn, from the current state, collected slots and attempt counter."),
		mcp.WithString("state", mcp.Required(), mcp.Description("Current state name, e.g. city_collection")),
		mcp.WithObject("slots", mcp.Description("Slot values collected so far")),
		mcp.WithNumber("attempts", mcp.Description("Turns already spent in the current state")),
		mcp.WithString("transcript", mcp.Description("Caller utterance for keyword rules")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleNextState))

	s.mcpServer.AddTool(mcp.NewTool("render_prompt",
		mcp.WithDescription("Render the agent instructions for a state."),
		mcp.WithString("state", mcp.Required(), mcp.Description("State name")),
		mcp.WithObject("slots", mcp.Description("Slot values to fill in")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleRenderPrompt))

	s.mcpServer.AddTool(mcp.NewTool("classify_outcome",
		mcp.WithDescription("Classify a finished call transcript into the call log row."),
		mcp.WithString("transcript", mcp.Required(), mcp.Description("Full call transcript")),
		mcp.WithString("phone_number", mcp.Description("Caller phone number")),
		mcp.WithOutputSchema[outcome.Record](),
	), mcp.NewStructuredToolHandler(s.handleClassify))

	if s.kb != nil {
		s.mcpServer.AddTool(mcp.NewTool("ask_knowledge",
			mcp.WithDescription("Answer a restaurant question from the knowledge base."),
			mcp.WithString("query", mcp.Required(), mcp.Description("The question")),
			mcp.WithString("city", mcp.Description("City context")),
			mcp.WithString("outlet", mcp.Description("Outlet context")),
			mcp.WithOutputSchema[knowledge.Answer](),
		), mcp.NewStructuredToolHandler(s.handleAskKnowledge))
	}
}

func (s *Server) handleNextState(ctx context.Context, request mcp.CallToolRequest, args StateArgs) (StateResponse, error) {
	from := domain.State(args.State)
	next, err := s.engine.Evaluate(from, guard.Input{
		Slots:      domain.SlotContext(args.Slots),
		Attempts:   args.Attempts,
		Transcript: args.Transcript,
	})
	if err != nil {
		return StateResponse{}, err
	}
	s.logger.Debug("mcp next_state", "from", from, "to", next)
	return StateResponse{State: next, Transitioned: next != from, Terminal: next.Terminal()}, nil
}

func (s *Server) handleRenderPrompt(ctx context.Context, request mcp.CallToolRequest, args StateArgs) (StateResponse, error) {
	state := domain.State(args.State)
	prompt, err := s.engine.Render(state, domain.SlotContext(args.Slots))
	if err != nil {
		return StateResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return StateResponse{State: state, Terminal: state.Terminal(), Prompt: prompt}, nil
}

func (s *Server) handleClassify(ctx context.Context, request mcp.CallToolRequest, args ClassifyArgs) (outcome.Record, error) {
	if args.Transcript == "" {
		return outcome.Record{}, errors.New("transcript is required")
	}
	return outcome.NewRecord(outcome.Call{
		Modality:    outcome.ModalityCall,
		PhoneNumber: args.PhoneNumber,
		Transcript:  args.Transcript,
	}, s.now), nil
}

func (s *Server) handleAskKnowledge(ctx context.Context, request mcp.CallToolRequest, args knowledge.QueryRequest) (knowledge.Answer, error) {
	if args.Query == "" {
		return knowledge.Answer{}, errors.New("query is required")
	}
	return s.kb.Query(args), nil
}

func (s *Server) registerResources() {
	if s.graph == nil {
		return
	}
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Agent conversation graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(s.graph)
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: graphURI, MIMEType: "application/json", Text: string(b)},
		}, nil
	})
}
