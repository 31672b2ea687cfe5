// Package replay re-drives a recorded RSVP session through the wizard
// reducer for review. It never submits anything.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"wedding-invitations/internal/models"
	"wedding-invitations/internal/wizard"
)

type MessageType string

const (
	TypeReset  MessageType = "REPLAY_RESET"
	TypeAction MessageType = "REPLAY_ACTION"
)

// Message is one replay instruction
type Message struct {
	Type    MessageType `json:"type"`
	Payload Payload     `json:"payload"`
}

// Payload names a recorded action and its details
type Payload struct {
	Action  string         `json:"action"`
	Details map[string]any `json:"details,omitempty"`
}

// Stopper halts live tracking when replay takes over
type Stopper interface {
	Stop()
}

// Bridge feeds replay messages into a wizard session
type Bridge struct {
	session    *wizard.Session
	invitation models.Invitation
	tracker    Stopper
	log        zerolog.Logger

	mu     sync.Mutex
	active bool
}

// NewBridge creates a bridge; tracker may be nil
func NewBridge(session *wizard.Session, inv models.Invitation, tracker Stopper, log zerolog.Logger) *Bridge {
	return &Bridge{
		session:    session,
		invitation: inv,
		tracker:    tracker,
		log:        log.With().Str("component", "Replay").Logger(),
	}
}

// Active reports whether replay mode has been entered
func (b *Bridge) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *Bridge) enter() {
	b.mu.Lock()
	if b.active {
		b.mu.Unlock()
		return
	}
	b.active = true
	b.mu.Unlock()

	if b.tracker != nil {
		b.tracker.Stop()
	}
	b.session.Mute()
	b.log.Info().Msg("Replay mode enabled")
}

// Handle applies one message. Unknown actions are skipped.
func (b *Bridge) Handle(ctx context.Context, msg Message) error {
	switch msg.Type {
	case TypeReset, TypeAction:
	default:
		return fmt.Errorf("unknown replay message type %q", msg.Type)
	}
	b.enter()

	if msg.Type == TypeReset {
		b.session.Reset(b.invitation)
		return nil
	}

	action, err := wizard.DecodeAction(msg.Payload.Action, msg.Payload.Details)
	if err != nil {
		var unknown *wizard.ErrUnknownAction
		if errors.As(err, &unknown) {
			b.log.Debug().Str("action", unknown.Name).Msg("Skipping unknown replay action")
			return nil
		}
		return err
	}
	b.session.Dispatch(ctx, action)
	return nil
}

// Run reads one JSON message per line from r and applies them in order
func (b *Bridge) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(text), &msg); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := b.Handle(ctx, msg); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return scanner.Err()
}
