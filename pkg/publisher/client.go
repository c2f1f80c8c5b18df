package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/hostline/pkg/domain"
)

// DefaultBaseURL is the platform's REST endpoint.
const DefaultBaseURL = "https://api.retellai.com/v1"

// APIError is a non-2xx response from the platform.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client talks to the voice platform.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client authenticating with apiKey.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Published holds the platform ids of everything Publish created.
type Published struct {
	AgentID string                  `json:"agent_id"`
	FlowID  string                  `json:"flow_id"`
	Nodes   map[domain.State]string `json:"nodes"`
	Edges   []string                `json:"edges"`
}

type created struct {
	ID string `json:"id"`
}

// Publish creates the agent, the flow, the nodes and the edges, in that
// order. It stops at the first failure and returns what was created so far.
func (c *Client) Publish(ctx context.Context, g Graph) (*Published, error) {
	out := &Published{Nodes: make(map[domain.State]string, len(g.Nodes))}

	agent, err := c.create(ctx, "agents", g.Agent)
	if err != nil {
		return out, fmt.Errorf("create agent: %w", err)
	}
	out.AgentID = agent
	c.logger.Info("agent created", "agent_id", agent)

	flowID, err := c.create(ctx, "flows", map[string]string{
		"agent_id":    agent,
		"name":        g.Flow.Name,
		"description": g.Flow.Description,
	})
	if err != nil {
		return out, fmt.Errorf("create flow: %w", err)
	}
	out.FlowID = flowID
	c.logger.Info("flow created", "flow_id", flowID)

	for _, n := range g.Nodes {
		id, err := c.create(ctx, "nodes", map[string]string{
			"flow_id": flowID,
			"name":    n.Name,
			"prompt":  n.Prompt,
		})
		if err != nil {
			return out, fmt.Errorf("create node %s: %w", n.State, err)
		}
		out.Nodes[n.State] = id
	}

	for _, e := range g.Edges {
		id, err := c.create(ctx, "edges", map[string]string{
			"flow_id":      flowID,
			"from_node_id": out.Nodes[e.From],
			"to_node_id":   out.Nodes[e.To],
			"condition":    e.Condition,
		})
		if err != nil {
			return out, fmt.Errorf("create edge %s -> %s: %w", e.From, e.To, err)
		}
		out.Edges = append(out.Edges, id)
	}

	c.logger.Info("flow published", "flow_id", flowID, "nodes", len(out.Nodes), "edges", len(out.Edges))
	return out, nil
}

func (c *Client) create(ctx context.Context, endpoint string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var res created
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	if res.ID == "" {
		return "", fmt.Errorf("%s response has no id", endpoint)
	}
	return res.ID, nil
}
