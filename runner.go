package hostline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/hostline/pkg/domain"
)

// ContentRenderer transforms a prompt before it is written, e.g. markdown to
// ANSI.
type ContentRenderer func(string) (string, error)

// Runner drives one conversation from line-oriented input. A line is either
// caller speech or a command:
//
//	/set city=Delhi; outlet=Connaught Place
//	/state
//	/quit
//
// Values "true" and "false" become booleans.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// Run plays the input against a new conversation until the input ends, the
// conversation reaches farewell or the caller quits. It returns the final
// snapshot.
func (r *Runner) Run(ctx context.Context, eng *Engine, id string) (*domain.Conversation, error) {
	if r.Input == nil || r.Output == nil {
		return nil, errors.New("runner: input and output must be set")
	}
	render := r.Renderer
	if render == nil {
		render = func(s string) (string, error) { return s, nil }
	}

	conv, err := eng.Start(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if !r.Headless {
		fmt.Fprintf(r.Output, "--- conversation %s ---\n", conv.ID)
	}
	if err := r.show(eng, conv, render); err != nil {
		return conv, err
	}

	scanner := bufio.NewScanner(r.Input)
	for {
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return conv, err
		}

		line := strings.TrimSpace(scanner.Text())
		var in TurnInput
		switch {
		case line == "":
			continue
		case line == "/quit":
			return conv, nil
		case line == "/state":
			fmt.Fprintf(r.Output, "state=%s attempts=%d slots=%s\n", conv.State, conv.Attempts, formatSlots(conv.Slots))
			continue
		case strings.HasPrefix(line, "/set "):
			slots, err := ParseSlots(strings.TrimPrefix(line, "/set "))
			if err != nil {
				fmt.Fprintf(r.Output, "error: %v\n", err)
				continue
			}
			in.Slots = slots
		default:
			in.Transcript = line
		}

		res, err := eng.Turn(ctx, conv, in)
		if err != nil {
			return conv, err
		}
		conv = res.Conversation
		if res.Transitioned {
			if !r.Headless {
				fmt.Fprintf(r.Output, "[%s -> %s: %s]\n", res.From, conv.State, res.Reason)
			}
			if err := r.show(eng, conv, render); err != nil {
				return conv, err
			}
		} else if !r.Headless {
			fmt.Fprintf(r.Output, "[stay %s, attempt %d]\n", conv.State, conv.Attempts)
		}
		if res.Terminal {
			return conv, nil
		}
	}
	return conv, scanner.Err()
}

func (r *Runner) show(eng *Engine, conv *domain.Conversation, render ContentRenderer) error {
	prompt, err := eng.Render(conv.State, conv.Slots)
	if err != nil {
		return err
	}
	out, err := render(prompt)
	if err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	fmt.Fprintln(r.Output, out)
	return nil
}

// ParseSlots reads "name=value; name=value" assignments.
func ParseSlots(s string) (map[string]any, error) {
	slots := map[string]any{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", part)
		}
		switch value = strings.TrimSpace(value); value {
		case "true":
			slots[name] = true
		case "false":
			slots[name] = false
		default:
			slots[name] = value
		}
	}
	return slots, nil
}

func formatSlots(s domain.SlotContext) string {
	var parts []string
	for _, name := range domain.KnownSlots() {
		if s.IsSet(name) {
			parts = append(parts, name+"="+s.String(name))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
