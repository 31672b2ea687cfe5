package wizard

import (
	"errors"
	"strings"

	"wedding-invitations/internal/models"
	"wedding-invitations/internal/phone"
)

// Reduce applies a to s and returns the next state. s is never modified.
// A rejected transition keeps the step and sets Err; anything else clears it.
func Reduce(s State, a Action) State {
	next := s.clone()
	next.Err = nil

	switch a := a.(type) {
	case FlipCard:
		next.CardFlipped = true
	case ExpandCard:
		next.CardExpanded = a.Expanded

	case StartGuestEdit:
		if a.Index < 0 || a.Index >= len(next.Invitation.Guests) {
			return next
		}
		if next.EditingGuest != noGuest {
			if err := next.saveGuest(); err != nil {
				next.Err = err
				return next
			}
		}
		next.EditingGuest = a.Index
		next.GuestDraft = next.guest(a.Index, next.Invitation.Guests[a.Index])
	case EditGuestField:
		if next.EditingGuest == noGuest {
			return next
		}
		switch a.Field {
		case FieldFirstName:
			next.GuestDraft.FirstName = a.Value
		case FieldLastName:
			next.GuestDraft.LastName = a.Value
		case FieldDietaryRequirements:
			next.GuestDraft.DietaryRequirements = a.Value
		}
	case SaveGuestEdit:
		if err := next.saveGuest(); err != nil {
			next.Err = err
		}
	case CancelGuestEdit:
		next.EditingGuest = noGuest
		next.GuestDraft = models.Guest{}
	case ToggleGuestExclusion:
		if a.Index < 0 || a.Index >= len(next.Invitation.Guests) {
			return next
		}
		if next.Excluded[a.Index] {
			delete(next.Excluded, a.Index)
		} else {
			next.Excluded[a.Index] = true
		}

	case StartPhoneEdit:
		next.EditingPhone = true
		next.TempPhone = next.PhoneNumber
	case SetTempPhone:
		next.EditingPhone = true
		next.TempPhone = a.Value
	case SavePhoneEdit:
		if err := next.savePhone(); err != nil {
			next.Err = err
		}
	case CancelPhoneEdit:
		next.EditingPhone = false
		next.TempPhone = ""

	case SelectTransport:
		next.Travel.TransportType = a.Type
	case SetSchedule:
		next.Travel.Schedule = a.Value
	case SelectCarOption:
		next.Travel.CarOption = a.Option
	case SetCarpoolInterest:
		next.Travel.CarpoolInterest = a.Interested
	case SetAccommodationRequested:
		next.AccommodationRequested = a.Requested
	case SetTransferRequested:
		next.TransferRequested = a.Requested

	case NextStep:
		next.Err = next.advance()
	case PrevStep:
		next.back()
	case ModifyAnswer:
		if next.Step == StepSummary {
			next.Step = StepGuests
		}

	case SubmitStarted:
		next.Submitting = true
	case SubmitSucceeded:
		next.Submitting = false
		next.Status = a.Status
		next.Step = StepSummary
		next.OriginalStatus = a.Status
		next.OriginalAccommodation = a.Status == models.StatusConfirmed &&
			next.Invitation.AccommodationOffered && next.AccommodationRequested
	case SubmitFailed:
		next.Submitting = false
		next.Err = errors.New(a.Message)
	}
	return next
}

func (s *State) saveGuest() error {
	if s.EditingGuest == noGuest {
		return nil
	}
	if strings.TrimSpace(s.GuestDraft.FirstName) == "" {
		return ErrGuestNameRequired
	}

	orig := s.Invitation.Guests[s.EditingGuest]
	var upd models.GuestUpdate
	if first := strings.TrimSpace(s.GuestDraft.FirstName); first != orig.FirstName {
		upd.FirstName = &first
	}
	if last := strings.TrimSpace(s.GuestDraft.LastName); last != orig.LastName {
		upd.LastName = &last
	}
	if diet := strings.TrimSpace(s.GuestDraft.DietaryRequirements); diet != orig.DietaryRequirements {
		upd.DietaryRequirements = &diet
	}
	if upd.Empty() {
		delete(s.GuestUpdates, s.EditingGuest)
	} else {
		s.GuestUpdates[s.EditingGuest] = upd
	}
	s.EditingGuest = noGuest
	s.GuestDraft = models.Guest{}
	return nil
}

func (s *State) savePhone() error {
	if !s.EditingPhone {
		return nil
	}
	if err := checkPhone(s.TempPhone); err != nil {
		return err
	}
	s.PhoneNumber = phone.Clean(s.TempPhone)
	s.EditingPhone = false
	s.TempPhone = ""
	return nil
}

func checkPhone(number string) error {
	cleaned := phone.Clean(number)
	if cleaned == "" {
		return ErrPhoneRequired
	}
	if !phone.ValidatePhone(cleaned) {
		return ErrPhoneInvalid
	}
	return nil
}

func (s *State) advance() error {
	switch s.Step {
	case StepGuests:
		if err := s.saveGuest(); err != nil {
			return err
		}
		if s.AttendingCount() == 0 {
			return ErrNoGuests
		}
		s.Step = StepContact
	case StepContact:
		if err := s.savePhone(); err != nil {
			return err
		}
		if err := checkPhone(s.PhoneNumber); err != nil {
			return err
		}
		s.Step = StepTravel
	case StepTravel:
		if s.Travel.TransportType == models.TransportNone {
			return ErrTransportRequired
		}
		if strings.TrimSpace(s.Travel.Schedule) == "" {
			return ErrScheduleRequired
		}
		if s.Invitation.AccommodationOffered {
			s.Step = StepAccommodation
		} else {
			s.Step = StepFinal
		}
	case StepAccommodation:
		s.Step = StepFinal
	}
	return nil
}

func (s *State) back() {
	switch s.Step {
	case StepFinal:
		if s.Invitation.AccommodationOffered {
			s.Step = StepAccommodation
		} else {
			s.Step = StepTravel
		}
	case StepAccommodation:
		s.Step = StepTravel
	case StepTravel:
		s.Step = StepContact
	case StepContact:
		s.Step = StepGuests
	case StepGuests:
		if s.Status.IsAnswered() {
			s.Step = StepSummary
		}
	}
}
