package wizard

import (
	"fmt"
	"math"

	"wedding-invitations/internal/models"
)

// Action is one user input. Name is the analytics event name and Details
// its payload; DecodeAction turns the pair back into the same Action.
type Action interface {
	Name() string
	Details() map[string]any
	action()
}

// Guest fields editable from the guests step
const (
	FieldFirstName           = "first_name"
	FieldLastName            = "last_name"
	FieldDietaryRequirements = "dietary_requirements"
)

type (
	FlipCard   struct{}
	ExpandCard struct{ Expanded bool }

	StartGuestEdit struct{ Index int }
	EditGuestField struct {
		Field string
		Value string
	}
	SaveGuestEdit        struct{}
	CancelGuestEdit      struct{}
	ToggleGuestExclusion struct{ Index int }

	StartPhoneEdit  struct{}
	SetTempPhone    struct{ Value string }
	SavePhoneEdit   struct{}
	CancelPhoneEdit struct{}

	SelectTransport    struct{ Type models.TransportType }
	SetSchedule        struct{ Value string }
	SelectCarOption    struct{ Option models.CarOption }
	SetCarpoolInterest struct{ Interested bool }

	SetAccommodationRequested struct{ Requested bool }
	SetTransferRequested      struct{ Requested bool }

	NextStep     struct{}
	PrevStep     struct{}
	ModifyAnswer struct{}

	SubmitStarted   struct{ Status models.InvitationStatus }
	SubmitSucceeded struct{ Status models.InvitationStatus }
	SubmitFailed    struct{ Message string }
)

func (FlipCard) Name() string                  { return "card_flip" }
func (ExpandCard) Name() string                { return "card_expand" }
func (StartGuestEdit) Name() string            { return "edit_guest_start" }
func (EditGuestField) Name() string            { return "edit_guest_field" }
func (SaveGuestEdit) Name() string             { return "save_edit_guest" }
func (CancelGuestEdit) Name() string           { return "cancel_edit_guest" }
func (ToggleGuestExclusion) Name() string      { return "toggle_guest_exclusion" }
func (StartPhoneEdit) Name() string            { return "edit_phone_start" }
func (SetTempPhone) Name() string              { return "phone_changed" }
func (SavePhoneEdit) Name() string             { return "save_edit_phone" }
func (CancelPhoneEdit) Name() string           { return "cancel_edit_phone" }
func (SelectTransport) Name() string           { return "travel_transport_selected" }
func (SetSchedule) Name() string               { return "travel_schedule_changed" }
func (SelectCarOption) Name() string           { return "travel_car_option_selected" }
func (SetCarpoolInterest) Name() string        { return "travel_carpool_toggled" }
func (SetAccommodationRequested) Name() string { return "accommodation_toggled" }
func (SetTransferRequested) Name() string      { return "transfer_toggled" }
func (NextStep) Name() string                  { return "rsvp_next_step" }
func (PrevStep) Name() string                  { return "rsvp_prev_step" }
func (ModifyAnswer) Name() string              { return "rsvp_modify_answer" }
func (SubmitStarted) Name() string             { return "rsvp_submit_started" }
func (SubmitSucceeded) Name() string           { return "rsvp_submit_success" }
func (SubmitFailed) Name() string              { return "rsvp_submit_error" }

func (FlipCard) Details() map[string]any {
	return map[string]any{}
}

func (a ExpandCard) Details() map[string]any {
	return map[string]any{"expanded": a.Expanded}
}

func (a StartGuestEdit) Details() map[string]any {
	return map[string]any{"index": a.Index}
}

func (a EditGuestField) Details() map[string]any {
	return map[string]any{"field": a.Field, "value": a.Value}
}

func (SaveGuestEdit) Details() map[string]any {
	return map[string]any{}
}

func (CancelGuestEdit) Details() map[string]any {
	return map[string]any{}
}

func (a ToggleGuestExclusion) Details() map[string]any {
	return map[string]any{"index": a.Index}
}

func (StartPhoneEdit) Details() map[string]any {
	return map[string]any{}
}

func (a SetTempPhone) Details() map[string]any {
	return map[string]any{"value": a.Value}
}

func (SavePhoneEdit) Details() map[string]any {
	return map[string]any{}
}

func (CancelPhoneEdit) Details() map[string]any {
	return map[string]any{}
}

func (a SelectTransport) Details() map[string]any {
	return map[string]any{"value": string(a.Type)}
}

func (a SetSchedule) Details() map[string]any {
	return map[string]any{"value": a.Value}
}

func (a SelectCarOption) Details() map[string]any {
	return map[string]any{"value": string(a.Option)}
}

func (a SetCarpoolInterest) Details() map[string]any {
	return map[string]any{"interested": a.Interested}
}

func (a SetAccommodationRequested) Details() map[string]any {
	return map[string]any{"requested": a.Requested}
}

func (a SetTransferRequested) Details() map[string]any {
	return map[string]any{"requested": a.Requested}
}

func (NextStep) Details() map[string]any {
	return map[string]any{}
}

func (PrevStep) Details() map[string]any {
	return map[string]any{}
}

func (ModifyAnswer) Details() map[string]any {
	return map[string]any{}
}

func (a SubmitStarted) Details() map[string]any {
	return map[string]any{"status": string(a.Status)}
}

func (a SubmitSucceeded) Details() map[string]any {
	return map[string]any{"status": string(a.Status)}
}

func (a SubmitFailed) Details() map[string]any {
	return map[string]any{"error": a.Message}
}

func (FlipCard) action()                  {}
func (ExpandCard) action()                {}
func (StartGuestEdit) action()            {}
func (EditGuestField) action()            {}
func (SaveGuestEdit) action()             {}
func (CancelGuestEdit) action()           {}
func (ToggleGuestExclusion) action()      {}
func (StartPhoneEdit) action()            {}
func (SetTempPhone) action()              {}
func (SavePhoneEdit) action()             {}
func (CancelPhoneEdit) action()           {}
func (SelectTransport) action()           {}
func (SetSchedule) action()               {}
func (SelectCarOption) action()           {}
func (SetCarpoolInterest) action()        {}
func (SetAccommodationRequested) action() {}
func (SetTransferRequested) action()      {}
func (NextStep) action()                  {}
func (PrevStep) action()                  {}
func (ModifyAnswer) action()              {}
func (SubmitStarted) action()             {}
func (SubmitSucceeded) action()           {}
func (SubmitFailed) action()              {}

// ErrUnknownAction is returned by DecodeAction for names it does not know
type ErrUnknownAction struct {
	Name string
}

func (e *ErrUnknownAction) Error() string {
	return fmt.Sprintf("unknown action %q", e.Name)
}

// DecodeAction rebuilds an Action from its event name and details. Details
// may come from JSON, so numbers are accepted as float64.
func DecodeAction(name string, raw map[string]any) (Action, error) {
	d := &detailReader{m: raw}
	var a Action
	switch name {
	case "card_flip":
		a = FlipCard{}
	case "card_expand":
		a = ExpandCard{Expanded: d.bool("expanded")}
	case "edit_guest_start":
		a = StartGuestEdit{Index: d.int("index")}
	case "edit_guest_field":
		a = EditGuestField{Field: d.string("field"), Value: d.string("value")}
	case "save_edit_guest":
		a = SaveGuestEdit{}
	case "cancel_edit_guest":
		a = CancelGuestEdit{}
	case "toggle_guest_exclusion":
		a = ToggleGuestExclusion{Index: d.int("index")}
	case "edit_phone_start":
		a = StartPhoneEdit{}
	case "phone_changed":
		a = SetTempPhone{Value: d.string("value")}
	case "save_edit_phone":
		a = SavePhoneEdit{}
	case "cancel_edit_phone":
		a = CancelPhoneEdit{}
	case "travel_transport_selected":
		a = SelectTransport{Type: models.TransportType(d.string("value"))}
	case "travel_schedule_changed":
		a = SetSchedule{Value: d.string("value")}
	case "travel_car_option_selected":
		a = SelectCarOption{Option: models.CarOption(d.string("value"))}
	case "travel_carpool_toggled":
		a = SetCarpoolInterest{Interested: d.bool("interested")}
	case "accommodation_toggled":
		a = SetAccommodationRequested{Requested: d.bool("requested")}
	case "transfer_toggled":
		a = SetTransferRequested{Requested: d.bool("requested")}
	case "rsvp_next_step":
		a = NextStep{}
	case "rsvp_prev_step":
		a = PrevStep{}
	case "rsvp_modify_answer":
		a = ModifyAnswer{}
	case "rsvp_submit_started":
		a = SubmitStarted{Status: models.InvitationStatus(d.string("status"))}
	case "rsvp_submit_success":
		a = SubmitSucceeded{Status: models.InvitationStatus(d.string("status"))}
	case "rsvp_submit_error":
		a = SubmitFailed{Message: d.string("error")}
	default:
		return nil, &ErrUnknownAction{Name: name}
	}
	if d.err != nil {
		return nil, fmt.Errorf("action %s: %w", name, d.err)
	}
	return a, nil
}

// detailReader extracts typed values and keeps the first mismatch
type detailReader struct {
	m   map[string]any
	err error
}

func (d *detailReader) string(key string) string {
	v, ok := d.m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(key, v)
	}
	return s
}

func (d *detailReader) bool(key string) bool {
	v, ok := d.m[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(key, v)
	}
	return b
}

func (d *detailReader) int(key string) int {
	v, ok := d.m[key]
	if !ok {
		d.fail(key, nil)
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	}
	d.fail(key, v)
	return 0
}

func (d *detailReader) fail(key string, v any) {
	if d.err == nil {
		d.err = fmt.Errorf("bad %q value %v (%T)", key, v, v)
	}
}
