package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wedding-invitations/internal/models"
	"wedding-invitations/internal/storage"
)

// SessionKey is where the analytics session id lives in the store
const SessionKey = "wedding_analytics_sid"

// SessionID returns the analytics session id, minting one on first use
func SessionID(ctx context.Context, store storage.Store) (string, error) {
	if sid, ok, err := store.Get(ctx, SessionKey); err != nil {
		return "", fmt.Errorf("failed to read session id: %w", err)
	} else if ok && sid != "" {
		return sid, nil
	}

	sid := uuid.NewString()
	if err := store.Set(ctx, SessionKey, sid, 0); err != nil {
		return "", fmt.Errorf("failed to store session id: %w", err)
	}
	return sid, nil
}

// InteractionSender posts analytics events
type InteractionSender interface {
	LogInteraction(ctx context.Context, in models.Interaction) error
}

// InteractionLogger sends events best-effort: failures never reach the caller
type InteractionLogger struct {
	sender    InteractionSender
	sessionID string
	timeout   time.Duration
	log       zerolog.Logger
}

func NewInteractionLogger(sender InteractionSender, sessionID string, log zerolog.Logger) *InteractionLogger {
	return &InteractionLogger{
		sender:    sender,
		sessionID: sessionID,
		timeout:   5 * time.Second,
		log:       log.With().Str("component", "Analytics").Logger(),
	}
}

// Log sends one event, waiting at most the logger timeout, and swallows any error
func (l *InteractionLogger) Log(ctx context.Context, event string, details map[string]any) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	err := l.sender.LogInteraction(ctx, models.Interaction{
		SessionID: l.sessionID,
		Event:     event,
		Details:   details,
	})
	if err != nil {
		l.log.Debug().Err(err).Str("event", event).Msg("Interaction not logged")
	}
}
