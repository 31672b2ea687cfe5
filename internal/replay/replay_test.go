package replay

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"wedding-invitations/internal/models"
	"wedding-invitations/internal/wizard"
)

type panicSubmitter struct{}

func (panicSubmitter) SubmitRSVP(context.Context, models.RSVPRequest) (*models.RSVPResponse, error) {
	panic("replay must not submit")
}

type countingLogger struct{ n int }

func (c *countingLogger) Log(context.Context, string, map[string]any) { c.n++ }

type fakeTracker struct{ stops int }

func (f *fakeTracker) Stop() { f.stops++ }

func invitation() models.Invitation {
	return models.Invitation{
		Code:   "bianchi",
		Status: models.StatusRead,
		Guests: []models.Guest{{FirstName: "Giulia"}, {FirstName: "Marco"}},
	}
}

const recording = `{"type":"REPLAY_RESET"}
{"type":"REPLAY_ACTION","payload":{"action":"card_flip"}}
{"type":"REPLAY_ACTION","payload":{"action":"toggle_guest_exclusion","details":{"index":1}}}
{"type":"REPLAY_ACTION","payload":{"action":"rsvp_next_step"}}

{"type":"REPLAY_ACTION","payload":{"action":"phone_changed","details":{"value":"3201234567"}}}
{"type":"REPLAY_ACTION","payload":{"action":"rsvp_next_step"}}
{"type":"REPLAY_ACTION","payload":{"action":"travel_transport_selected","details":{"value":"aereo"}}}
{"type":"REPLAY_ACTION","payload":{"action":"travel_schedule_changed","details":{"value":"saturday"}}}
{"type":"REPLAY_ACTION","payload":{"action":"mouse_wiggle"}}
{"type":"REPLAY_ACTION","payload":{"action":"rsvp_next_step"}}
{"type":"REPLAY_ACTION","payload":{"action":"rsvp_submit_started","details":{"status":"confirmed"}}}
{"type":"REPLAY_ACTION","payload":{"action":"rsvp_submit_success","details":{"status":"confirmed"}}}
`

func TestRunReplaysRecordedSession(t *testing.T) {
	ctx := context.Background()
	events := &countingLogger{}
	tracker := &fakeTracker{}
	session := wizard.NewSession(invitation(), panicSubmitter{}, events, "sid", zerolog.Nop())
	b := NewBridge(session, invitation(), tracker, zerolog.Nop())

	require.NoError(t, b.Run(ctx, strings.NewReader(recording)))

	st := session.State()
	require.True(t, b.Active())
	require.True(t, session.Muted())
	require.Equal(t, 1, tracker.stops)
	require.Zero(t, events.n)

	require.True(t, st.CardFlipped)
	require.Equal(t, []int{1}, st.ExcludedIndexes())
	require.Equal(t, "3201234567", st.PhoneNumber)
	require.Equal(t, models.TransportPlane, st.Travel.TransportType)
	require.Equal(t, wizard.StepSummary, st.Step)
	require.Equal(t, models.StatusConfirmed, st.Status)
}

func TestReplayMatchesLiveInput(t *testing.T) {
	ctx := context.Background()
	live := wizard.NewSession(invitation(), panicSubmitter{}, nil, "sid", zerolog.Nop())
	actions := []wizard.Action{
		wizard.StartGuestEdit{Index: 0},
		wizard.EditGuestField{Field: wizard.FieldLastName, Value: "Verdi"},
		wizard.NextStep{},
		wizard.StartPhoneEdit{},
		wizard.SetTempPhone{Value: "123"},
		wizard.NextStep{},
	}
	for _, a := range actions {
		live.Dispatch(ctx, a)
	}

	replayed := wizard.NewSession(invitation(), panicSubmitter{}, nil, "sid", zerolog.Nop())
	b := NewBridge(replayed, invitation(), nil, zerolog.Nop())
	for _, a := range actions {
		require.NoError(t, b.Handle(ctx, Message{Type: TypeAction, Payload: Payload{Action: a.Name(), Details: a.Details()}}))
	}

	want, got := live.State(), replayed.State()
	require.Equal(t, want.Step, got.Step)
	require.Equal(t, want.GuestUpdates, got.GuestUpdates)
	require.Equal(t, want.TempPhone, got.TempPhone)
	require.ErrorIs(t, got.Err, wizard.ErrPhoneInvalid)
}

func TestResetRebuildsState(t *testing.T) {
	ctx := context.Background()
	session := wizard.NewSession(invitation(), panicSubmitter{}, nil, "sid", zerolog.Nop())
	b := NewBridge(session, invitation(), nil, zerolog.Nop())

	require.NoError(t, b.Handle(ctx, Message{Type: TypeAction, Payload: Payload{Action: "card_flip"}}))
	require.True(t, session.State().CardFlipped)

	require.NoError(t, b.Handle(ctx, Message{Type: TypeReset}))
	require.False(t, session.State().CardFlipped)
	require.True(t, b.Active())
}

func TestHandleRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	session := wizard.NewSession(invitation(), panicSubmitter{}, nil, "sid", zerolog.Nop())
	b := NewBridge(session, invitation(), nil, zerolog.Nop())

	require.Error(t, b.Handle(ctx, Message{Type: "REPLAY_STOP"}))
	require.False(t, b.Active())

	err := b.Run(ctx, strings.NewReader(`{"type":"REPLAY_ACTION","payload":{"action":"edit_guest_start","details":{"index":"x"}}}`))
	require.ErrorContains(t, err, "line 1")

	require.Error(t, b.Run(ctx, strings.NewReader("not json\n")))
}
