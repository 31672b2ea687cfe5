// Package wizard implements the guest-facing RSVP flow as a pure state
// machine. Live input and session replay both go through Reduce, so the two
// paths always produce the same transitions.
package wizard

import (
	"sort"

	"wedding-invitations/internal/apperr"
	"wedding-invitations/internal/models"
)

type Step string

const (
	StepSummary       Step = "summary"
	StepGuests        Step = "guests"
	StepContact       Step = "contact"
	StepTravel        Step = "travel"
	StepAccommodation Step = "accommodation"
	StepFinal         Step = "final"
)

// Validation errors; compare with errors.Is
var (
	ErrNoGuests          = apperr.Validation("Select at least one guest who will attend")
	ErrGuestNameRequired = apperr.Validation("Guest first name is required")
	ErrPhoneRequired     = apperr.Validation("Phone number is required")
	ErrPhoneInvalid      = apperr.Validation("Invalid phone number")
	ErrTransportRequired = apperr.Validation("Select how you will travel")
	ErrScheduleRequired  = apperr.Validation("Tell us when you plan to arrive")
	ErrNotReady          = apperr.Validation("Complete the previous steps first")
	ErrInvalidStatus     = apperr.Validation("Answer must be confirmed or declined")
)

// Warning is a non-blocking notice asking the guest to get in touch
type Warning string

const (
	WarnAllGuestsExcluded      Warning = "all_guests_excluded"
	WarnAccommodationWithdrawn Warning = "accommodation_withdrawn"
)

// noGuest marks that no guest row is being edited
const noGuest = -1

// State is everything the RSVP screens render from
type State struct {
	Step   Step
	Status models.InvitationStatus

	Invitation            models.Invitation
	OriginalStatus        models.InvitationStatus
	OriginalAccommodation bool

	GuestUpdates map[int]models.GuestUpdate
	Excluded     map[int]bool
	EditingGuest int
	GuestDraft   models.Guest

	PhoneNumber  string
	EditingPhone bool
	TempPhone    string

	Travel                 models.TravelInfo
	AccommodationRequested bool
	TransferRequested      bool

	CardFlipped  bool
	CardExpanded bool
	Submitting   bool

	// Err is the inline error of the last action, nil when it succeeded
	Err error
}

// New builds the initial state for an invitation
func New(inv models.Invitation) State {
	step := StepGuests
	if inv.Status.IsAnswered() {
		step = StepSummary
	}
	travel := inv.TravelInfo
	if travel.CarOption == "" {
		travel.CarOption = models.CarNone
	}
	return State{
		Step:                   step,
		Status:                 inv.Status,
		Invitation:             inv,
		OriginalStatus:         inv.Status,
		OriginalAccommodation:  inv.AccommodationRequested,
		GuestUpdates:           make(map[int]models.GuestUpdate),
		Excluded:               make(map[int]bool),
		EditingGuest:           noGuest,
		PhoneNumber:            inv.PhoneNumber,
		Travel:                 travel,
		AccommodationRequested: inv.AccommodationRequested,
		TransferRequested:      inv.TransferRequested,
	}
}

func (s State) clone() State {
	updates := make(map[int]models.GuestUpdate, len(s.GuestUpdates))
	for k, v := range s.GuestUpdates {
		updates[k] = v
	}
	excluded := make(map[int]bool, len(s.Excluded))
	for k, v := range s.Excluded {
		if v {
			excluded[k] = true
		}
	}
	s.GuestUpdates = updates
	s.Excluded = excluded
	return s
}

// Guests returns the guests with pending edits applied
func (s State) Guests() []models.Guest {
	out := make([]models.Guest, len(s.Invitation.Guests))
	for i, g := range s.Invitation.Guests {
		out[i] = s.guest(i, g)
	}
	return out
}

func (s State) guest(i int, g models.Guest) models.Guest {
	if upd, ok := s.GuestUpdates[i]; ok {
		return upd.Apply(g)
	}
	return g
}

// AttendingCount is the number of guests not excluded
func (s State) AttendingCount() int {
	n := 0
	for i := range s.Invitation.Guests {
		if !s.Excluded[i] {
			n++
		}
	}
	return n
}

// ExcludedIndexes returns the excluded guest indexes in ascending order
func (s State) ExcludedIndexes() []int {
	out := make([]int, 0, len(s.Excluded))
	for i, ex := range s.Excluded {
		if ex {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// Warnings lists notices that do not block the flow
func (s State) Warnings() []Warning {
	var out []Warning
	if s.OriginalStatus == models.StatusConfirmed && len(s.Invitation.Guests) > 0 && s.AttendingCount() == 0 {
		out = append(out, WarnAllGuestsExcluded)
	}
	if s.OriginalAccommodation && !s.AccommodationRequested {
		out = append(out, WarnAccommodationWithdrawn)
	}
	return out
}

// Payload builds the RSVP request for status. Accommodation and transfer
// requests are only sent when confirming and only when they were offered.
func (s State) Payload(status models.InvitationStatus, sessionID string) models.RSVPRequest {
	updates := make(map[int]models.GuestUpdate, len(s.GuestUpdates))
	for k, v := range s.GuestUpdates {
		updates[k] = v
	}
	req := models.RSVPRequest{
		Status:         status,
		PhoneNumber:    s.PhoneNumber,
		GuestUpdates:   updates,
		ExcludedGuests: s.ExcludedIndexes(),
		TravelInfo:     s.Travel,
		SessionID:      sessionID,
	}
	if status == models.StatusConfirmed {
		if s.Invitation.AccommodationOffered {
			requested := s.AccommodationRequested
			req.AccommodationRequested = &requested
		}
		if s.Invitation.TransferOffered {
			requested := s.TransferRequested
			req.TransferRequested = &requested
		}
	}
	return req
}
