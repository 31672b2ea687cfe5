package wizard

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"wedding-invitations/internal/apperr"
	"wedding-invitations/internal/models"
)

// Submitter posts the final answer
type Submitter interface {
	SubmitRSVP(ctx context.Context, req models.RSVPRequest) (*models.RSVPResponse, error)
}

// InteractionLogger records every dispatched action
type InteractionLogger interface {
	Log(ctx context.Context, event string, details map[string]any)
}

// eventQueueSize bounds the interactions waiting to be logged; later ones
// are dropped while the queue is full
const eventQueueSize = 64

type loggedEvent struct {
	ctx     context.Context
	name    string
	details map[string]any
}

// Session drives the wizard for one guest: it holds the current state,
// logs each action and performs the submit.
type Session struct {
	submitter Submitter
	sessionID string
	log       zerolog.Logger

	mu     sync.Mutex
	state  State
	muted  bool
	closed bool
	queue  chan loggedEvent
	done   chan struct{}
	submit sync.Mutex
}

// NewSession creates a session for inv. events may be nil. Interactions reach
// events in dispatch order from a background worker; Close flushes them.
func NewSession(inv models.Invitation, submitter Submitter, events InteractionLogger, sessionID string, log zerolog.Logger) *Session {
	s := &Session{
		submitter: submitter,
		sessionID: sessionID,
		log:       log.With().Str("component", "RSVP").Str("code", inv.Code).Logger(),
		state:     New(inv),
	}
	if events != nil {
		s.queue = make(chan loggedEvent, eventQueueSize)
		s.done = make(chan struct{})
		go s.drain(events)
	}
	return s
}

func (s *Session) drain(events InteractionLogger) {
	defer close(s.done)
	for ev := range s.queue {
		events.Log(ev.ctx, ev.name, ev.details)
	}
}

// Close waits for queued interactions to be logged. Later actions are not logged.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed || s.queue == nil {
		s.closed = true
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	<-s.done
}

// State returns a snapshot of the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch runs a through Reduce and logs it unless the session is muted
func (s *Session) Dispatch(ctx context.Context, a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	snapshot := s.state.clone()
	if !s.muted && !s.closed && s.queue != nil {
		select {
		case s.queue <- loggedEvent{ctx: context.WithoutCancel(ctx), name: a.Name(), details: a.Details()}:
		default:
			s.log.Debug().Str("action", a.Name()).Msg("Interaction dropped, queue full")
		}
	}
	s.mu.Unlock()

	if snapshot.Err != nil {
		s.log.Debug().Str("action", a.Name()).Str("error", apperr.UserMessage(snapshot.Err)).Msg("Action rejected")
	}
	return snapshot
}

// Reset rebuilds the state from inv
func (s *Session) Reset(inv models.Invitation) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = New(inv)
	return s.state.clone()
}

// Mute stops interaction logging for the rest of the session
func (s *Session) Mute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = true
}

func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Submit sends the answer. It is allowed from the final step, or from the
// summary to save the same answer again. Concurrent calls run one at a time.
func (s *Session) Submit(ctx context.Context, status models.InvitationStatus) error {
	if status != models.StatusConfirmed && status != models.StatusDeclined {
		return ErrInvalidStatus
	}

	s.submit.Lock()
	defer s.submit.Unlock()

	current := s.State()
	if current.Step != StepFinal && current.Step != StepSummary {
		return ErrNotReady
	}

	s.Dispatch(ctx, SubmitStarted{Status: status})
	req := s.State().Payload(status, s.sessionID)

	resp, err := s.submitter.SubmitRSVP(ctx, req)
	if err != nil {
		s.log.Error().Err(err).Str("status", string(status)).Msg("RSVP submit failed")
		s.Dispatch(ctx, SubmitFailed{Message: apperr.UserMessage(err)})
		return err
	}

	if resp != nil && resp.Status.Valid() {
		status = resp.Status
	}
	s.Dispatch(ctx, SubmitSucceeded{Status: status})
	s.log.Info().Str("status", string(status)).Msg("RSVP submitted")
	return nil
}
