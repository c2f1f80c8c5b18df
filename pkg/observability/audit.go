package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/hostline/pkg/domain"
)

// AuditHooks logs every engine event as a structured record.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(msg string) func(context.Context, *domain.StateEvent) {
		return func(ctx context.Context, e *domain.StateEvent) {
			logger.InfoContext(ctx, msg,
				"conversation_id", e.ConversationID,
				"state", e.State,
				"from", e.From,
				"attempts", e.Attempts,
			)
		}
	}
	return domain.LifecycleHooks{
		OnStateEnter:      log("state_enter"),
		OnStateLeave:      log("state_leave"),
		OnStay:            log("stay"),
		OnConversationEnd: log("conversation_end"),
	}
}
