package wizard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wedding-invitations/internal/models"
)

func testInvitation() models.Invitation {
	return models.Invitation{
		ID:     7,
		Code:   "rossi-family",
		Name:   "Famiglia Rossi",
		Status: models.StatusSent,
		Guests: []models.Guest{
			{FirstName: "Mario", LastName: "Rossi"},
			{FirstName: "Anna", LastName: "Rossi"},
		},
		AccommodationOffered: true,
		TransferOffered:      true,
	}
}

func run(s State, actions ...Action) State {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

func TestNewStartsOnGuestsOrSummary(t *testing.T) {
	inv := testInvitation()
	require.Equal(t, StepGuests, New(inv).Step)

	inv.Status = models.StatusDeclined
	s := New(inv)
	require.Equal(t, StepSummary, s.Step)
	require.Equal(t, models.CarNone, s.Travel.CarOption)

	s = Reduce(s, ModifyAnswer{})
	require.Equal(t, StepGuests, s.Step)
}

func TestGuestsStepRequiresAnAttendingGuest(t *testing.T) {
	s := run(New(testInvitation()),
		ToggleGuestExclusion{Index: 0},
		ToggleGuestExclusion{Index: 1},
		NextStep{},
	)
	require.Equal(t, StepGuests, s.Step)
	require.ErrorIs(t, s.Err, ErrNoGuests)

	s = run(s, ToggleGuestExclusion{Index: 1})
	require.NoError(t, s.Err)

	s = Reduce(s, NextStep{})
	require.Equal(t, StepContact, s.Step)
	require.Equal(t, []int{0}, s.ExcludedIndexes())
}

func TestContactStepValidatesPhone(t *testing.T) {
	base := run(New(testInvitation()), NextStep{})
	require.Equal(t, StepContact, base.Step)

	tests := []struct {
		name    string
		input   string
		wantErr error
		want    Step
	}{
		{name: "empty", input: "", wantErr: ErrPhoneRequired, want: StepContact},
		{name: "too short", input: "123", wantErr: ErrPhoneInvalid, want: StepContact},
		{name: "italian mobile", input: "3201234567", want: StepTravel},
		{name: "spaced international", input: "+39 320 123 4567", want: StepTravel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := run(base, StartPhoneEdit{}, SetTempPhone{Value: tt.input}, NextStep{})
			require.Equal(t, tt.want, s.Step)
			if tt.wantErr != nil {
				require.ErrorIs(t, s.Err, tt.wantErr)
				require.True(t, s.EditingPhone)
				return
			}
			require.NoError(t, s.Err)
			require.False(t, s.EditingPhone)
		})
	}
}

func TestSavePhoneWithoutEditIsNoop(t *testing.T) {
	inv := testInvitation()
	inv.PhoneNumber = "+393201234567"
	s := run(New(inv), SavePhoneEdit{})
	require.NoError(t, s.Err)
	require.Equal(t, "+393201234567", s.PhoneNumber)

	s = run(s, StartPhoneEdit{}, SavePhoneEdit{})
	require.NoError(t, s.Err)
	require.Equal(t, "+393201234567", s.PhoneNumber)
}

func TestTravelStepRoutesByOffer(t *testing.T) {
	toTravel := []Action{NextStep{}, SetTempPhone{Value: "3201234567"}, NextStep{}}

	s := run(New(testInvitation()), toTravel...)
	require.Equal(t, StepTravel, s.Step)

	s = Reduce(s, NextStep{})
	require.ErrorIs(t, s.Err, ErrTransportRequired)

	s = run(s, SelectTransport{Type: models.TransportFerry}, NextStep{})
	require.ErrorIs(t, s.Err, ErrScheduleRequired)

	s = run(s, SetSchedule{Value: "arrive friday"}, NextStep{})
	require.Equal(t, StepAccommodation, s.Step)
	s = Reduce(s, NextStep{})
	require.Equal(t, StepFinal, s.Step)
	s = Reduce(s, PrevStep{})
	require.Equal(t, StepAccommodation, s.Step)

	inv := testInvitation()
	inv.AccommodationOffered = false
	s = run(New(inv), toTravel...)
	s = run(s, SelectTransport{Type: models.TransportPlane}, SetSchedule{Value: "sat 10:00"}, NextStep{})
	require.Equal(t, StepFinal, s.Step)
	s = Reduce(s, PrevStep{})
	require.Equal(t, StepTravel, s.Step)
}

func TestPrevStepFromGuests(t *testing.T) {
	s := Reduce(New(testInvitation()), PrevStep{})
	require.Equal(t, StepGuests, s.Step)

	inv := testInvitation()
	inv.Status = models.StatusConfirmed
	s = run(New(inv), ModifyAnswer{}, PrevStep{})
	require.Equal(t, StepSummary, s.Step)
}

func TestGuestEditProducesSparseUpdate(t *testing.T) {
	s := run(New(testInvitation()),
		StartGuestEdit{Index: 1},
		EditGuestField{Field: FieldLastName, Value: "Bianchi"},
		EditGuestField{Field: FieldDietaryRequirements, Value: "vegetarian"},
		SaveGuestEdit{},
	)
	require.NoError(t, s.Err)
	require.Equal(t, noGuest, s.EditingGuest)

	upd := s.GuestUpdates[1]
	require.Nil(t, upd.FirstName)
	require.Equal(t, "Bianchi", *upd.LastName)
	require.Equal(t, "vegetarian", *upd.DietaryRequirements)
	require.Equal(t, "Anna Bianchi", s.Guests()[1].FullName())

	s = run(s,
		StartGuestEdit{Index: 1},
		EditGuestField{Field: FieldLastName, Value: "Rossi"},
		EditGuestField{Field: FieldDietaryRequirements, Value: ""},
		SaveGuestEdit{},
	)
	require.NotContains(t, s.GuestUpdates, 1)
}

func TestGuestEditRequiresFirstName(t *testing.T) {
	s := run(New(testInvitation()),
		StartGuestEdit{Index: 0},
		EditGuestField{Field: FieldFirstName, Value: "  "},
		NextStep{},
	)
	require.ErrorIs(t, s.Err, ErrGuestNameRequired)
	require.Equal(t, StepGuests, s.Step)
	require.Equal(t, 0, s.EditingGuest)

	s = Reduce(s, CancelGuestEdit{})
	require.NoError(t, s.Err)
	require.Empty(t, s.GuestUpdates)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := New(testInvitation())
	after := run(before, ToggleGuestExclusion{Index: 0}, StartGuestEdit{Index: 1},
		EditGuestField{Field: FieldFirstName, Value: "Annalisa"}, SaveGuestEdit{})

	require.Empty(t, before.Excluded)
	require.Empty(t, before.GuestUpdates)
	require.True(t, after.Excluded[0])
	require.Contains(t, after.GuestUpdates, 1)
}

func TestWarnings(t *testing.T) {
	inv := testInvitation()
	inv.Status = models.StatusConfirmed
	inv.AccommodationRequested = true

	s := New(inv)
	require.Empty(t, s.Warnings())

	s = run(s, ToggleGuestExclusion{Index: 0}, ToggleGuestExclusion{Index: 1}, SetAccommodationRequested{Requested: false})
	require.Equal(t, []Warning{WarnAllGuestsExcluded, WarnAccommodationWithdrawn}, s.Warnings())

	inv.Status = models.StatusSent
	inv.AccommodationRequested = false
	s = run(New(inv), ToggleGuestExclusion{Index: 0}, ToggleGuestExclusion{Index: 1})
	require.Empty(t, s.Warnings())
}

func TestPayloadOmitsRequestsUnlessConfirmedAndOffered(t *testing.T) {
	inv := testInvitation()
	inv.TransferOffered = false
	s := run(New(inv), SetAccommodationRequested{Requested: true}, SetTransferRequested{Requested: true}, ToggleGuestExclusion{Index: 1})

	req := s.Payload(models.StatusConfirmed, "sid-1")
	require.Equal(t, "sid-1", req.SessionID)
	require.Equal(t, []int{1}, req.ExcludedGuests)
	require.NotNil(t, req.AccommodationRequested)
	require.True(t, *req.AccommodationRequested)
	require.Nil(t, req.TransferRequested)
	require.NotNil(t, req.GuestUpdates)

	req = s.Payload(models.StatusDeclined, "sid-1")
	require.Nil(t, req.AccommodationRequested)
	require.Nil(t, req.TransferRequested)
}

func TestSubmitLifecycle(t *testing.T) {
	s := run(New(testInvitation()), SubmitStarted{Status: models.StatusConfirmed})
	require.True(t, s.Submitting)

	failed := Reduce(s, SubmitFailed{Message: "Invalid invitation link"})
	require.False(t, failed.Submitting)
	require.EqualError(t, failed.Err, "Invalid invitation link")

	done := Reduce(s, SubmitSucceeded{Status: models.StatusConfirmed})
	require.Equal(t, StepSummary, done.Step)
	require.Equal(t, models.StatusConfirmed, done.Status)
	require.Equal(t, models.StatusConfirmed, done.OriginalStatus)
}

func TestDecodeActionRoundTrip(t *testing.T) {
	actions := []Action{
		FlipCard{},
		ExpandCard{Expanded: true},
		StartGuestEdit{Index: 1},
		EditGuestField{Field: FieldFirstName, Value: "Luca"},
		ToggleGuestExclusion{Index: 0},
		SetTempPhone{Value: "3201234567"},
		SelectTransport{Type: models.TransportPlane},
		SelectCarOption{Option: models.CarRental},
		SetCarpoolInterest{Interested: true},
		SetTransferRequested{Requested: true},
		SubmitSucceeded{Status: models.StatusDeclined},
		SubmitFailed{Message: "boom"},
	}
	for _, a := range actions {
		t.Run(a.Name(), func(t *testing.T) {
			got, err := DecodeAction(a.Name(), a.Details())
			require.NoError(t, err)
			require.Equal(t, a, got)
		})
	}
}

func TestDecodeActionFromJSONDetails(t *testing.T) {
	a, err := DecodeAction("toggle_guest_exclusion", map[string]any{"index": float64(2)})
	require.NoError(t, err)
	require.Equal(t, ToggleGuestExclusion{Index: 2}, a)

	_, err = DecodeAction("toggle_guest_exclusion", map[string]any{"index": "two"})
	require.Error(t, err)

	_, err = DecodeAction("toggle_guest_exclusion", nil)
	require.Error(t, err)

	_, err = DecodeAction("mouse_dance", nil)
	var unknown *ErrUnknownAction
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "mouse_dance", unknown.Name)
}
