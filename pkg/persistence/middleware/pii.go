package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// phonePattern matches digit runs with optional country code, spaces or
// dashes. Only runs of at least minPhoneDigits digits are redacted, which
// leaves dates and times alone.
var phonePattern = regexp.MustCompile(`\+?\d[\d\s-]{6,}\d`)

const minPhoneDigits = 10

func redactPhones(s string) string {
	return phonePattern.ReplaceAllStringFunc(s, func(m string) string {
		var n int
		for _, r := range m {
			if r >= '0' && r <= '9' {
				n++
			}
		}
		if n < minPhoneDigits {
			return m
		}
		return Mask
	})
}

type piiMiddleware struct {
	next     ports.ConversationStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware redacts caller details before they reach the backend.
// Slots whose name matches one of slotPatterns are replaced by Mask and
// phone numbers are scrubbed from the transcript. The caller's copy is left
// untouched.
//
// Masked slots are lost for later turns, so only name slots that no prompt or
// guard needs.
func NewPIIMiddleware(slotPatterns []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(slotPatterns))
	for i, p := range slotPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.ConversationStore) ports.ConversationStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, conv *domain.Conversation) error {
	masked := conv.Clone()
	masked.Slots = domain.SlotContext(deepCopyMap(conv.Slots))
	maskMap(masked.Slots, m.patterns)
	for i := range masked.Transcript {
		masked.Transcript[i].Text = redactPhones(masked.Transcript[i].Text)
	}
	return m.next.Save(ctx, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				break
			}
		}
		if sub, ok := v.(map[string]any); ok {
			maskMap(sub, patterns)
		}
	}
}
