// Package scenario runs an end to end RSVP smoke test against a live backend:
// create invitations as the admin, answer each one as its guest, then check
// the answers were stored.
package scenario

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wedding-invitations/internal/api"
	"wedding-invitations/internal/apperr"
	"wedding-invitations/internal/models"
	"wedding-invitations/internal/phone"
	"wedding-invitations/internal/slug"
	"wedding-invitations/internal/wizard"
)

var firstNames = []string{"Mario", "Giulia", "Luca", "Francesca", "Marco", "Chiara", "Andrea", "Sara", "Paolo", "Elena"}
var lastNames = []string{"Rossi", "Bianchi", "Esposito", "Romano", "Colombo", "Ricci", "Marino", "Greco", "Bruno", "Gallo"}

// Options tunes a run
type Options struct {
	Count       int
	Concurrency int
	ReadyWait   time.Duration
}

// Outcome is what one guest answered
type Outcome struct {
	ID                     int64
	Code                   string
	Status                 models.InvitationStatus
	AccommodationRequested bool
	TransferRequested      bool
}

// Report summarizes a run
type Report struct {
	Outcomes  []Outcome
	Confirmed int
	Declined  int
	Duration  time.Duration
}

// PublicFactory returns a fresh public client, one per guest, so each guest
// gets its own session cookie
type PublicFactory func() *api.Client

type plan struct {
	inv    models.Invitation
	status models.InvitationStatus
	acc    bool
	trans  bool
	travel models.TransportType
}

// Run executes the scenario. It stops at the first failure.
func Run(ctx context.Context, admin *api.Client, newPublic PublicFactory, opts Options, rng *rand.Rand, log zerolog.Logger) (*Report, error) {
	log = log.With().Str("component", "Scenario").Logger()
	if opts.Count <= 0 {
		opts.Count = 10
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.ReadyWait <= 0 {
		opts.ReadyWait = 30 * time.Second
	}
	start := time.Now()

	if err := waitReady(ctx, admin, opts.ReadyWait, log); err != nil {
		return nil, err
	}

	run := fmt.Sprintf("%04d", rng.Intn(10000))
	plans := make([]plan, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		in := newInvitation(rng, run, i)
		inv, err := admin.CreateInvitation(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("create invitation %s: %w", in.Code, err)
		}
		p := plan{inv: *inv, status: models.StatusDeclined, acc: rng.Intn(2) == 1, trans: rng.Intn(2) == 1, travel: models.TransportFerry}
		if rng.Intn(2) == 1 {
			p.status = models.StatusConfirmed
		}
		if rng.Intn(2) == 1 {
			p.travel = models.TransportPlane
		}
		plans = append(plans, p)
	}
	log.Info().Int("count", len(plans)).Msg("Invitations created")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, p := range plans {
		g.Go(func() error {
			return answer(gctx, admin, newPublic(), p, log)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{}
	for _, p := range plans {
		stored, err := admin.GetInvitation(ctx, p.inv.ID)
		if err != nil {
			return nil, fmt.Errorf("reload invitation %s: %w", p.inv.Code, err)
		}
		if stored.Status != p.status {
			return nil, fmt.Errorf("invitation %s: status %q, want %q", p.inv.Code, stored.Status, p.status)
		}
		if p.status == models.StatusConfirmed && stored.AccommodationRequested != p.acc {
			return nil, fmt.Errorf("invitation %s: accommodation_requested %v, want %v", p.inv.Code, stored.AccommodationRequested, p.acc)
		}
		if p.status == models.StatusConfirmed {
			report.Confirmed++
		} else {
			report.Declined++
		}
		report.Outcomes = append(report.Outcomes, Outcome{
			ID:                     stored.ID,
			Code:                   stored.Code,
			Status:                 stored.Status,
			AccommodationRequested: stored.AccommodationRequested,
			TransferRequested:      stored.TransferRequested,
		})
	}
	report.Duration = time.Since(start)

	log.Info().
		Int("confirmed", report.Confirmed).
		Int("declined", report.Declined).
		Dur("took", report.Duration).
		Msg("Scenario passed")
	return report, nil
}

func waitReady(ctx context.Context, admin *api.Client, maxWait time.Duration, log zerolog.Logger) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = maxWait

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		_, err := admin.ListInvitations(ctx, "")
		if e, ok := apperr.As(err); ok && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden) {
			return backoff.Permanent(err)
		}
		if err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("Backend not ready")
		}
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return fmt.Errorf("backend not ready: %w", err)
	}
	return nil
}

func newInvitation(rng *rand.Rand, run string, i int) models.InvitationInput {
	last := lastNames[rng.Intn(len(lastNames))]
	guests := []models.Guest{{FirstName: firstNames[rng.Intn(len(firstNames))], LastName: last}}
	if rng.Intn(2) == 1 {
		guests = append(guests, models.Guest{FirstName: firstNames[rng.Intn(len(firstNames))], LastName: last})
	}
	if rng.Intn(4) == 0 {
		guests = append(guests, models.Guest{FirstName: "Bimbo", LastName: last, IsChild: true})
	}

	name := fmt.Sprintf("Famiglia %s %s-%d", last, run, i)
	number := phone.NormalizePhone(fmt.Sprintf("3%s%05d", run, i))
	return models.InvitationInput{
		Code:                 slug.GenerateSlug(name, number),
		Name:                 name,
		PhoneNumber:          number,
		Guests:               guests,
		AccommodationOffered: true,
		TransferOffered:      true,
	}
}

// answer walks the RSVP wizard as the guest would and submits
func answer(ctx context.Context, admin *api.Client, public *api.Client, p plan, log zerolog.Logger) error {
	link, err := admin.GenerateLink(ctx, p.inv.ID)
	if err != nil {
		return fmt.Errorf("generate link %s: %w", p.inv.Code, err)
	}
	inv, err := public.Authenticate(ctx, link.Code, link.Token)
	if err != nil {
		return fmt.Errorf("open link %s: %w", p.inv.Code, err)
	}

	session := wizard.NewSession(*inv, public, nil, uuid.NewString(), log)
	for _, a := range []wizard.Action{
		wizard.FlipCard{},
		wizard.NextStep{},
		wizard.NextStep{},
		wizard.SelectTransport{Type: p.travel},
		wizard.SetSchedule{Value: "arrive the day before"},
		wizard.NextStep{},
		wizard.SetAccommodationRequested{Requested: p.acc},
		wizard.SetTransferRequested{Requested: p.trans},
		wizard.NextStep{},
	} {
		if st := session.Dispatch(ctx, a); st.Err != nil {
			return fmt.Errorf("wizard %s at %s: %w", p.inv.Code, st.Step, st.Err)
		}
	}
	if err := session.Submit(ctx, p.status); err != nil {
		return fmt.Errorf("submit %s: %w", p.inv.Code, err)
	}
	return nil
}
