package calllog

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/hostline/pkg/outcome"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result reports what happened to one log write.
type Result struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Record  *outcome.Record `json:"record,omitempty"`
}

// OK reports whether the write succeeded.
func (r Result) OK() bool { return r.Status == StatusSuccess }

const defaultWriteTimeout = 15 * time.Second

// Logger classifies finished calls and writes them to a sink.
type Logger struct {
	sink    Sink
	logger  *slog.Logger
	clock   func() time.Time
	timeout time.Duration
	observe func(Result)
	wg      sync.WaitGroup
}

// Option configures a Logger.
type Option func(*Logger)

func WithLogger(l *slog.Logger) Option {
	return func(c *Logger) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the time source for the Call Time column.
func WithClock(clock func() time.Time) Option {
	return func(c *Logger) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithTimeout bounds each background write.
func WithTimeout(d time.Duration) Option {
	return func(c *Logger) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithObserver is called with every Result, after the write.
func WithObserver(fn func(Result)) Option {
	return func(c *Logger) { c.observe = fn }
}

// NewLogger wraps sink. A nil sink makes every write fail with a
// "not configured" result.
func NewLogger(sink Sink, opts ...Option) *Logger {
	l := &Logger{
		sink:    sink,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:   time.Now,
		timeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log builds the record for call and writes it, waiting for the sink.
func (l *Logger) Log(ctx context.Context, call outcome.Call) Result {
	res := l.write(ctx, call)
	if l.observe != nil {
		l.observe(res)
	}
	return res
}

func (l *Logger) write(ctx context.Context, call outcome.Call) Result {
	rec := outcome.NewRecord(call, l.clock)
	if l.sink == nil {
		l.logger.Warn("call log sink not configured", "outcome", rec.Outcome)
		return Result{Status: StatusError, Error: "call log sink not configured", Record: &rec}
	}

	if err := l.sink.Append(ctx, rec); err != nil {
		l.logger.Error("failed to log call", "error", err, "outcome", rec.Outcome)
		return Result{Status: StatusError, Error: err.Error(), Record: &rec}
	}

	l.logger.Info("call logged", "modality", rec.Modality, "outcome", rec.Outcome)
	return Result{Status: StatusSuccess, Message: "Call logged successfully", Record: &rec}
}

// LogAsync writes in the background and delivers the Result on the returned
// channel. The write outlives ctx cancellation but not the configured timeout.
func (l *Logger) LogAsync(ctx context.Context, call outcome.Call) <-chan Result {
	out := make(chan Result, 1)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(out)
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		out <- l.Log(writeCtx, call)
	}()
	return out
}

// Wait blocks until every background write has finished.
func (l *Logger) Wait() {
	l.wg.Wait()
}
