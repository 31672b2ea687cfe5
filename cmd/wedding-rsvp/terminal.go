package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"wedding-invitations/internal/analytics"
	"wedding-invitations/internal/apperr"
	"wedding-invitations/internal/config"
	"wedding-invitations/internal/models"
	"wedding-invitations/internal/phone"
	"wedding-invitations/internal/texts"
	"wedding-invitations/internal/wizard"
)

// terminal width and height reported with each heatmap point
const (
	termWidth  = 80
	termHeight = 24
)

var stepRow = map[wizard.Step]int{
	wizard.StepSummary:       0,
	wizard.StepGuests:        1,
	wizard.StepContact:       2,
	wizard.StepTravel:        3,
	wizard.StepAccommodation: 4,
	wizard.StepFinal:         5,
}

type terminal struct {
	cfg     *config.Config
	in      *bufio.Scanner
	session *wizard.Session
	tracker *analytics.Tracker
	texts   *texts.Cache
}

func (t *terminal) run(ctx context.Context) error {
	s := t.session.State()
	fmt.Printf("\n💌 %s\n", t.texts.Get(ctx, "rsvp_title", "You're invited!"))
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("%s\n", s.Invitation.Name)
	t.session.Dispatch(ctx, wizard.FlipCard{})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		s = t.session.State()
		if s.Err != nil {
			fmt.Printf("❌ %s\n", apperr.UserMessage(s.Err))
		}
		t.printWarnings(s)

		var done bool
		switch s.Step {
		case wizard.StepSummary:
			done = t.summary(ctx, s)
		case wizard.StepGuests:
			done = t.guests(ctx, s)
		case wizard.StepContact:
			done = t.contact(ctx, s)
		case wizard.StepTravel:
			done = t.travel(ctx, s)
		case wizard.StepAccommodation:
			done = t.accommodation(ctx, s)
		case wizard.StepFinal:
			done = t.final(ctx, s)
		}
		if done {
			return nil
		}
	}
}

// read prompts for one line. ok is false once stdin is closed.
func (t *terminal) read(label string) (string, bool) {
	fmt.Print(label)
	if !t.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

// choose reads a command and records where on the screen the guest picked it
func (t *terminal) choose(ctx context.Context, s wizard.State, label string) (string, bool) {
	raw, ok := t.read(label)
	if !ok {
		return "", false
	}
	if raw != "" {
		t.tracker.Record(ctx, int(raw[0]), stepRow[s.Step], termWidth, termHeight)
	}
	return strings.ToLower(raw), true
}

func (t *terminal) printWarnings(s wizard.State) {
	for _, w := range s.Warnings() {
		var msg string
		switch w {
		case wizard.WarnAllGuestsExcluded:
			msg = "You removed every guest. If nobody can come, please let us know."
		case wizard.WarnAccommodationWithdrawn:
			msg = "You no longer need accommodation. Please tell us so we can free the room."
		}
		fmt.Printf("⚠️  %s\n", msg)
		if t.cfg.WhatsAppContactNumber != "" {
			fmt.Printf("    %s\n", phone.WhatsAppLink(t.cfg.WhatsAppContactNumber, fmt.Sprintf("Hi, this is %s. %s", s.Invitation.Name, msg)))
		}
	}
}

func (t *terminal) summary(ctx context.Context, s wizard.State) bool {
	fmt.Println("\n📋 Your answer")
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Status: %s\n", s.Status)
	for i, g := range s.Guests() {
		mark := "✅"
		if s.Excluded[i] || s.Status == models.StatusDeclined {
			mark = "❌"
		}
		fmt.Printf("  %s %s\n", mark, g.FullName())
	}
	if s.Status == models.StatusConfirmed && s.Invitation.AccommodationOffered {
		fmt.Printf("Accommodation requested: %v\n", s.AccommodationRequested)
	}
	if s.Status == models.StatusConfirmed && s.Invitation.TransferOffered {
		fmt.Printf("Transfer requested: %v\n", s.TransferRequested)
	}

	cmd, ok := t.choose(ctx, s, "\n[m]odify answer, [q]uit: ")
	if !ok || cmd == "q" {
		return true
	}
	if cmd == "m" {
		t.session.Dispatch(ctx, wizard.ModifyAnswer{})
	}
	return false
}

func (t *terminal) guests(ctx context.Context, s wizard.State) bool {
	fmt.Println("\n👥 Who is coming?")
	for i, g := range s.Guests() {
		box := "[x]"
		if s.Excluded[i] {
			box = "[ ]"
		}
		line := fmt.Sprintf("  %d. %s %s", i+1, box, g.FullName())
		if g.DietaryRequirements != "" {
			line += " (" + g.DietaryRequirements + ")"
		}
		fmt.Println(line)
	}

	cmd, ok := t.choose(ctx, s, "\n[t N] toggle, [e N] edit, [n]ext, [b]ack, [q]uit: ")
	if !ok {
		return true
	}
	verb, index := splitIndex(cmd)
	switch verb {
	case "t":
		t.session.Dispatch(ctx, wizard.ToggleGuestExclusion{Index: index})
	case "e":
		t.editGuest(ctx, index)
	case "n":
		t.session.Dispatch(ctx, wizard.NextStep{})
	case "b":
		t.session.Dispatch(ctx, wizard.PrevStep{})
	case "q":
		return true
	}
	return false
}

func (t *terminal) editGuest(ctx context.Context, index int) {
	s := t.session.Dispatch(ctx, wizard.StartGuestEdit{Index: index})
	if s.EditingGuest != index {
		return
	}
	fields := []struct {
		field   string
		label   string
		current string
	}{
		{wizard.FieldFirstName, "First name", s.GuestDraft.FirstName},
		{wizard.FieldLastName, "Last name", s.GuestDraft.LastName},
		{wizard.FieldDietaryRequirements, "Dietary requirements", s.GuestDraft.DietaryRequirements},
	}
	for _, f := range fields {
		raw, ok := t.read(fmt.Sprintf("%s [%s]: ", f.label, f.current))
		if !ok {
			t.session.Dispatch(ctx, wizard.CancelGuestEdit{})
			return
		}
		if raw != "" {
			t.session.Dispatch(ctx, wizard.EditGuestField{Field: f.field, Value: raw})
		}
	}
	t.session.Dispatch(ctx, wizard.SaveGuestEdit{})
}

func (t *terminal) contact(ctx context.Context, s wizard.State) bool {
	fmt.Println("\n📞 How can we reach you?")
	current := s.PhoneNumber
	if current == "" {
		current = "(none)"
	}
	fmt.Printf("Phone: %s\n", current)

	cmd, ok := t.choose(ctx, s, "\n[e]dit phone, [n]ext, [b]ack, [q]uit: ")
	if !ok {
		return true
	}
	switch cmd {
	case "e":
		t.session.Dispatch(ctx, wizard.StartPhoneEdit{})
		raw, ok := t.read("New phone number: ")
		if !ok || raw == "" {
			t.session.Dispatch(ctx, wizard.CancelPhoneEdit{})
			break
		}
		t.session.Dispatch(ctx, wizard.SetTempPhone{Value: raw})
		t.session.Dispatch(ctx, wizard.SavePhoneEdit{})
	case "n":
		t.session.Dispatch(ctx, wizard.NextStep{})
	case "b":
		t.session.Dispatch(ctx, wizard.PrevStep{})
	case "q":
		return true
	}
	return false
}

func (t *terminal) travel(ctx context.Context, s wizard.State) bool {
	fmt.Println("\n✈️  Travel")
	fmt.Printf("Transport: %s\n", orDash(string(s.Travel.TransportType)))
	fmt.Printf("Schedule: %s\n", orDash(s.Travel.Schedule))
	fmt.Printf("Car: %s  Carpool: %v\n", s.Travel.CarOption, s.Travel.CarpoolInterest)

	cmd, ok := t.choose(ctx, s, "\n[f]erry, [p]lane, [s]chedule, [c]ar, [cp] carpool, [n]ext, [b]ack, [q]uit: ")
	if !ok {
		return true
	}
	switch cmd {
	case "f":
		t.session.Dispatch(ctx, wizard.SelectTransport{Type: models.TransportFerry})
	case "p":
		t.session.Dispatch(ctx, wizard.SelectTransport{Type: models.TransportPlane})
	case "s":
		if raw, ok := t.read("When do you plan to arrive? "); ok {
			t.session.Dispatch(ctx, wizard.SetSchedule{Value: raw})
		}
	case "c":
		raw, ok := t.read("Car: [1] none, [2] own car, [3] rental: ")
		if !ok {
			return true
		}
		options := map[string]models.CarOption{"1": models.CarNone, "2": models.CarOwn, "3": models.CarRental}
		if opt, found := options[raw]; found {
			t.session.Dispatch(ctx, wizard.SelectCarOption{Option: opt})
		}
	case "cp":
		t.session.Dispatch(ctx, wizard.SetCarpoolInterest{Interested: !s.Travel.CarpoolInterest})
	case "n":
		t.session.Dispatch(ctx, wizard.NextStep{})
	case "b":
		t.session.Dispatch(ctx, wizard.PrevStep{})
	case "q":
		return true
	}
	return false
}

func (t *terminal) accommodation(ctx context.Context, s wizard.State) bool {
	fmt.Println("\n🏨 Stay")
	inv := s.Invitation
	if inv.AccommodationOffered {
		fmt.Printf("  [a] Accommodation: %v\n", s.AccommodationRequested)
	}
	if inv.TransferOffered {
		fmt.Printf("  [t] Transfer: %v\n", s.TransferRequested)
	}
	if !inv.AccommodationOffered && !inv.TransferOffered {
		fmt.Println("  Nothing to choose here.")
	}

	cmd, ok := t.choose(ctx, s, "\nToggle an option, [n]ext, [b]ack, [q]uit: ")
	if !ok {
		return true
	}
	switch cmd {
	case "a":
		t.session.Dispatch(ctx, wizard.SetAccommodationRequested{Requested: !s.AccommodationRequested})
	case "t":
		t.session.Dispatch(ctx, wizard.SetTransferRequested{Requested: !s.TransferRequested})
	case "n":
		t.session.Dispatch(ctx, wizard.NextStep{})
	case "b":
		t.session.Dispatch(ctx, wizard.PrevStep{})
	case "q":
		return true
	}
	return false
}

func (t *terminal) final(ctx context.Context, s wizard.State) bool {
	fmt.Printf("\n💒 %s\n", t.texts.Get(ctx, "rsvp_final_question", "Will you join us?"))
	fmt.Printf("%d guest(s) attending\n", s.AttendingCount())

	cmd, ok := t.choose(ctx, s, "\n[c]onfirm, [d]ecline, [b]ack, [q]uit: ")
	if !ok {
		return true
	}
	var status models.InvitationStatus
	switch cmd {
	case "c":
		status = models.StatusConfirmed
	case "d":
		status = models.StatusDeclined
	case "b":
		t.session.Dispatch(ctx, wizard.PrevStep{})
		return false
	case "q":
		return true
	default:
		return false
	}

	fmt.Println("Sending...")
	if err := t.session.Submit(ctx, status); err != nil {
		if t.session.State().Err == nil {
			fmt.Printf("❌ %s\n", apperr.UserMessage(err))
		}
		return false
	}
	if status == models.StatusConfirmed {
		fmt.Printf("🎉 %s\n", t.texts.Get(ctx, "rsvp_thanks_confirmed", "Thank you! We can't wait to see you."))
	} else {
		fmt.Printf("💔 %s\n", t.texts.Get(ctx, "rsvp_thanks_declined", "Thank you for letting us know."))
	}
	return false
}

func splitIndex(cmd string) (string, int) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return "", -1
	}
	index := -1
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil {
			index = n - 1
		}
	}
	return fields[0], index
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
