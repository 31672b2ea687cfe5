package main

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"wedding-invitations/internal/api"
	"wedding-invitations/internal/apperr"
	"wedding-invitations/internal/autoassign"
	"wedding-invitations/internal/crud"
	"wedding-invitations/internal/models"
	"wedding-invitations/internal/phone"
	"wedding-invitations/internal/scenario"
	"wedding-invitations/internal/slug"
)

func (a *app) prompt(label string) (string, bool) {
	fmt.Print(label)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *app) promptInt(label string, def int) (int, bool) {
	raw, ok := a.prompt(label)
	if !ok {
		return 0, false
	}
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Println("Not a number.")
		return 0, false
	}
	return n, true
}

func (a *app) promptYesNo(label string) bool {
	raw, _ := a.prompt(label + " [y/N]: ")
	raw = strings.ToLower(raw)
	return raw == "y" || raw == "yes" || raw == "s" || raw == "si"
}

func printErr(action string, err error) {
	fmt.Printf("❌ %s: %s\n", action, apperr.UserMessage(err))
}

func (a *app) refreshReplies(ctx context.Context) {
	invs, err := a.client.ListInvitations(ctx, "")
	if err != nil {
		a.log.Warn().Err(err).Msg("Could not load invitations for reply matching")
		return
	}
	a.replies.SetInvitations(invs)
}

func (a *app) listInvitations(ctx context.Context, status models.InvitationStatus) {
	invs, err := a.client.ListInvitations(ctx, status)
	if err != nil {
		printErr("Error loading invitations", err)
		return
	}
	if len(invs) == 0 {
		if status == "" {
			fmt.Println("\nNo invitations found.")
		} else {
			fmt.Printf("\nNo invitations with status '%s'.\n", status)
		}
		return
	}

	if status == "" {
		fmt.Printf("\n📋 All Invitations (%d total):\n", len(invs))
	} else {
		fmt.Printf("\n📋 Invitations with status '%s' (%d total):\n", status, len(invs))
	}
	fmt.Println(strings.Repeat("-", 60))
	for _, inv := range invs {
		fmt.Printf("#%d %s [%s]\n", inv.ID, inv.Name, inv.Code)
		fmt.Printf("Phone: %s\n", inv.PhoneNumber)
		fmt.Printf("Status: %s\n", inv.Status)
		names := make([]string, len(inv.Guests))
		for i, g := range inv.Guests {
			names[i] = g.FullName()
		}
		fmt.Printf("Guests: %s\n", strings.Join(names, ", "))
		if inv.AccommodationRequested || inv.TransferRequested {
			fmt.Printf("Requests: accommodation=%v transfer=%v\n", inv.AccommodationRequested, inv.TransferRequested)
		}
		fmt.Println(strings.Repeat("-", 60))
	}
}

func (a *app) invitationsByStatus(ctx context.Context) {
	statuses := []models.InvitationStatus{
		models.StatusCreated, models.StatusSent, models.StatusRead, models.StatusConfirmed, models.StatusDeclined,
	}
	fmt.Println("\nSelect status:")
	for i, st := range statuses {
		fmt.Printf("  %d. %s\n", i+1, st)
	}
	choice, ok := a.promptInt(fmt.Sprintf("Enter choice (1-%d): ", len(statuses)), 0)
	if !ok || choice < 1 || choice > len(statuses) {
		fmt.Println("Invalid choice.")
		return
	}
	a.listInvitations(ctx, statuses[choice-1])
}

func (a *app) createInvitation(ctx context.Context) {
	name, ok := a.prompt("Invitation name (e.g. Famiglia Rossi): ")
	if !ok || name == "" {
		return
	}
	raw, ok := a.prompt("Phone number (Italian, e.g. 320 123 4567): ")
	if !ok {
		return
	}
	number := phone.NormalizePhone(raw)
	if raw != "" && number == "" {
		fmt.Println("❌ Not a valid Italian phone number.")
		return
	}

	var guests []models.Guest
	for {
		first, ok := a.prompt(fmt.Sprintf("Guest %d first name (empty to finish): ", len(guests)+1))
		if !ok || first == "" {
			break
		}
		last, _ := a.prompt("Last name: ")
		child := a.promptYesNo("Child?")
		guests = append(guests, models.Guest{FirstName: first, LastName: last, IsChild: child})
	}
	if len(guests) == 0 {
		fmt.Println("❌ An invitation needs at least one guest.")
		return
	}

	in := models.InvitationInput{
		Code:                 slug.GenerateSlug(name, number),
		Name:                 name,
		PhoneNumber:          number,
		Guests:               guests,
		AccommodationOffered: a.promptYesNo("Offer accommodation?"),
		TransferOffered:      a.promptYesNo("Offer transfer?"),
	}
	inv, err := a.client.CreateInvitation(ctx, in)
	if err != nil {
		printErr("Error creating invitation", err)
		return
	}
	fmt.Printf("✅ Invitation #%d created with code %s\n", inv.ID, inv.Code)
	a.refreshReplies(ctx)
}

func (a *app) sendInvitations(ctx context.Context) {
	if a.sender == nil {
		fmt.Println("WhatsApp is disabled; restart with -whatsapp to send invitations.")
		return
	}

	raw, ok := a.prompt("Invitation id, or 'all' for every unsent one: ")
	if !ok || raw == "" {
		return
	}

	var invs []models.Invitation
	if raw == "all" {
		list, err := a.client.ListInvitations(ctx, models.StatusCreated)
		if err != nil {
			printErr("Error loading invitations", err)
			return
		}
		invs = list
	} else {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fmt.Println("Invalid id.")
			return
		}
		inv, err := a.client.GetInvitation(ctx, id)
		if err != nil {
			printErr("Error loading invitation", err)
			return
		}
		invs = []models.Invitation{*inv}
	}
	if len(invs) == 0 {
		fmt.Println("Nothing to send.")
		return
	}

	fmt.Printf("\nSending %d invitation(s)...\n", len(invs))
	sent, err := a.sender.SendAll(ctx, invs)
	fmt.Printf("✅ %d sent\n", sent)
	if err != nil {
		fmt.Printf("❌ Some invitations failed:\n%v\n", err)
	}
	a.refreshReplies(ctx)
}

func (a *app) accommodationsMenu(ctx context.Context) {
	page := a.accommodations
	for {
		overview, err := crud.LoadAccommodationsOverview(ctx, a.client)
		if err != nil {
			printErr("Error loading accommodations", err)
			return
		}
		if err := page.Load(ctx); err != nil {
			return
		}

		fmt.Printf("\n🏨 Accommodations: %d beds, %d free, %d guests waiting\n",
			overview.TotalCapacity(), overview.TotalFree(), overview.UnassignedGuests())
		fmt.Println(strings.Repeat("-", 60))
		for _, acc := range page.Items() {
			fmt.Printf("#%d %s (%s): %d/%d free\n", acc.ID, acc.Name, acc.Address, acc.TotalFree(), acc.TotalCapacity())
			for _, r := range acc.Rooms {
				fmt.Printf("    room %s: %d adults + %d children, %d occupied\n", r.RoomNumber, r.CapacityAdults, r.CapacityChildren, r.OccupiedCount)
			}
		}

		choice, ok := a.prompt("\n[c]reate, [e]dit <id>, [d]elete <id>, [b]ack: ")
		if !ok {
			return
		}
		cmd, id := parseCommand(choice)
		switch cmd {
		case "c":
			a.editAccommodation(ctx, page.OpenCreate())
		case "e":
			form, err := page.OpenEdit(id)
			if err != nil {
				fmt.Println(err)
				continue
			}
			a.editAccommodation(ctx, form)
		case "d":
			if _, err := page.Delete(ctx, id); err != nil {
				printErr("Error deleting accommodation", err)
			}
		default:
			return
		}
	}
}

func (a *app) editAccommodation(ctx context.Context, form crud.AccommodationForm) {
	page := a.accommodations
	defer page.CloseForm()

	form.Name = a.promptDefault("Name", form.Name)
	form.Address = a.promptDefault("Address", form.Address)
	if a.promptYesNo("Edit rooms?") {
		var rooms []crud.RoomForm
		for i := 0; ; i++ {
			var r crud.RoomForm
			if i < len(form.Rooms) {
				r = form.Rooms[i]
			}
			r.RoomNumber = a.promptDefault(fmt.Sprintf("Room %d number (empty to finish)", i+1), r.RoomNumber)
			if r.RoomNumber == "" {
				break
			}
			r.CapacityAdults, _ = a.promptInt(fmt.Sprintf("Adults [%d]: ", r.CapacityAdults), r.CapacityAdults)
			r.CapacityChildren, _ = a.promptInt(fmt.Sprintf("Children [%d]: ", r.CapacityChildren), r.CapacityChildren)
			rooms = append(rooms, r)
		}
		form.Rooms = rooms
	}

	if err := page.SetForm(form); err != nil {
		fmt.Println(err)
		return
	}
	if err := page.Submit(ctx); err != nil && apperr.IsKind(err, apperr.KindValidation) {
		printErr("Invalid accommodation", err)
	}
}

func (a *app) promptDefault(label, current string) string {
	if current != "" {
		label = fmt.Sprintf("%s [%s]", label, current)
	}
	raw, ok := a.prompt(label + ": ")
	if !ok || raw == "" {
		return current
	}
	if raw == "-" {
		return ""
	}
	return raw
}

func parseCommand(raw string) (string, int64) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", 0
	}
	var id int64
	if len(fields) > 1 {
		id, _ = strconv.ParseInt(fields[1], 10, 64)
	}
	return strings.ToLower(fields[0][:1]), id
}

func (a *app) autoAssign(ctx context.Context) {
	var applied *models.StrategyResult
	modal := autoassign.NewModal(a.client, terminalConfirmer{in: a.in},
		func(r models.StrategyResult) { applied = &r },
		func(err error) { printErr("Auto-assign failed", err) },
		a.log,
	)
	defer modal.Close()

	fmt.Println("\nSimulating strategies...")
	if err := modal.RunSimulation(ctx); err != nil {
		return
	}

	results := modal.Results()
	fmt.Println(strings.Repeat("-", 60))
	for i, r := range results {
		marker := "  "
		if i == 0 {
			marker = "⭐"
		}
		fmt.Printf("%s %d. %-20s assigned %3d  unassigned %3d  wasted beds %3d\n",
			marker, i+1, r.StrategyName, r.AssignedGuests, r.UnassignedGuests, r.WastedBeds)
	}
	fmt.Println(strings.Repeat("-", 60))

	choice, ok := a.promptInt(fmt.Sprintf("Apply which strategy (1-%d, empty to cancel): ", len(results)), 0)
	if !ok || choice < 1 || choice > len(results) {
		return
	}
	if _, err := modal.ApplyStrategy(ctx, results[choice-1].StrategyCode); err != nil {
		return
	}
	if applied != nil {
		a.toasts.Success(fmt.Sprintf("%s applied: %d guests assigned, %d without a room",
			applied.StrategyName, applied.AssignedGuests, applied.UnassignedGuests))
	}
}

func (a *app) suppliersMenu(ctx context.Context) {
	page := a.suppliers
	for {
		catalog, err := crud.LoadSupplierCatalog(ctx, a.client)
		if err != nil {
			printErr("Error loading suppliers", err)
			return
		}
		if err := page.Load(ctx); err != nil {
			return
		}

		fmt.Printf("\n🧾 Suppliers: total %.2f €\n", catalog.TotalCost())
		fmt.Println(strings.Repeat("-", 60))
		for _, g := range catalog.Grouped() {
			name := g.Type.Name
			if name == "" {
				name = "Other"
			}
			fmt.Printf("%s (%.2f €)\n", name, g.Total)
			for _, s := range g.Suppliers {
				fmt.Printf("    #%d %s: %.2f € %s\n", s.ID, s.Name, s.Cost, s.Contact)
			}
		}

		choice, ok := a.prompt("\n[c]reate, [e]dit <id>, [d]elete <id>, [b]ack: ")
		if !ok {
			return
		}
		cmd, id := parseCommand(choice)
		switch cmd {
		case "c":
			a.editSupplier(ctx, page.OpenCreate(), catalog.Types)
		case "e":
			form, err := page.OpenEdit(id)
			if err != nil {
				fmt.Println(err)
				continue
			}
			a.editSupplier(ctx, form, catalog.Types)
		case "d":
			if _, err := page.Delete(ctx, id); err != nil {
				printErr("Error deleting supplier", err)
			}
		default:
			return
		}
	}
}

func (a *app) editSupplier(ctx context.Context, form crud.SupplierForm, types []models.SupplierType) {
	page := a.suppliers
	defer page.CloseForm()

	form.Name = a.promptDefault("Name", form.Name)
	if len(types) > 0 {
		for _, t := range types {
			fmt.Printf("  %d. %s\n", t.ID, t.Name)
		}
		current := 0
		if form.TypeID != nil {
			current = int(*form.TypeID)
		}
		if id, ok := a.promptInt(fmt.Sprintf("Type id [%d]: ", current), current); ok && id > 0 {
			typeID := int64(id)
			form.TypeID = &typeID
		}
	}
	cost := a.promptDefault("Cost", strconv.FormatFloat(form.Cost, 'f', 2, 64))
	if v, err := strconv.ParseFloat(strings.ReplaceAll(cost, ",", "."), 64); err == nil {
		form.Cost = v
	}
	form.Contact = a.promptDefault("Contact", form.Contact)
	form.Notes = a.promptDefault("Notes", form.Notes)

	if err := page.SetForm(form); err != nil {
		fmt.Println(err)
		return
	}
	if err := page.Submit(ctx); err != nil && apperr.IsKind(err, apperr.KindValidation) {
		printErr("Invalid supplier", err)
	}
}

func (a *app) supplierTypesMenu(ctx context.Context) {
	page := a.supplierTypes
	for {
		if err := page.Load(ctx); err != nil {
			return
		}
		fmt.Println("\n🏷️  Supplier types:")
		for _, t := range page.Items() {
			fmt.Printf("  #%d %s\n", t.ID, t.Name)
		}

		choice, ok := a.prompt("\n[c]reate, [e]dit <id>, [d]elete <id>, [b]ack: ")
		if !ok {
			return
		}
		cmd, id := parseCommand(choice)
		var form crud.SupplierTypeForm
		switch cmd {
		case "c":
			form = page.OpenCreate()
		case "e":
			f, err := page.OpenEdit(id)
			if err != nil {
				fmt.Println(err)
				continue
			}
			form = f
		case "d":
			if _, err := page.Delete(ctx, id); err != nil {
				printErr("Error deleting supplier type", err)
			}
			continue
		default:
			return
		}

		form.Name = a.promptDefault("Name", form.Name)
		if err := page.SetForm(form); err == nil {
			if err := page.Submit(ctx); err != nil && apperr.IsKind(err, apperr.KindValidation) {
				printErr("Invalid supplier type", err)
			}
		}
		page.CloseForm()
	}
}

func (a *app) runScenario(ctx context.Context) {
	fmt.Println("⚠️  The scenario creates real invitations on the backend.")
	if !a.promptYesNo("Continue?") {
		return
	}
	n, ok := a.promptInt("How many invitations [10]: ", 10)
	if !ok {
		return
	}

	public := func() *api.Client {
		return api.NewClient(a.cfg.APIBaseURL, api.WithTimeout(a.cfg.HTTPTimeout), api.WithLogger(a.log))
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	report, err := scenario.Run(ctx, a.client, public, scenario.Options{Count: n}, rng, a.log)
	if err != nil {
		printErr("Scenario failed", err)
		return
	}
	fmt.Printf("✅ Scenario passed in %s: %d confirmed, %d declined\n",
		report.Duration.Round(time.Millisecond), report.Confirmed, report.Declined)
	a.refreshReplies(ctx)
}
