// Package messaging sends invitation links over WhatsApp and turns guest
// replies into admin notifications.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"wedding-invitations/internal/models"
	"wedding-invitations/internal/phone"
)

var ErrNoPhone = errors.New("invitation has no valid phone number")

// Sender delivers a text message to a phone number
type Sender interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// LinkService issues public links and records that an invitation went out
type LinkService interface {
	GenerateLink(ctx context.Context, id int64) (*models.InvitationLink, error)
	MarkAsSent(ctx context.Context, id int64) error
}

type Config struct {
	PublicSiteURL   string
	WeddingDate     string
	WeddingLocation string
	BrideName       string
	GroomName       string
}

type InvitationSender struct {
	sender Sender
	links  LinkService
	cfg    Config
	log    zerolog.Logger
}

func NewInvitationSender(sender Sender, links LinkService, cfg Config, log zerolog.Logger) *InvitationSender {
	return &InvitationSender{
		sender: sender,
		links:  links,
		cfg:    cfg,
		log:    log.With().Str("component", "Invitations").Logger(),
	}
}

// PublicLink builds the guest-facing URL for an invitation
func PublicLink(siteURL, code, token string) string {
	q := url.Values{}
	q.Set("code", code)
	q.Set("token", token)
	return strings.TrimRight(siteURL, "/") + "/?" + q.Encode()
}

// FormatInvitation renders the WhatsApp text for inv
func FormatInvitation(cfg Config, inv models.Invitation, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💌 *%s*\n\n", inv.Name)
	fmt.Fprintf(&b, "%s & %s are getting married!\n\n", cfg.BrideName, cfg.GroomName)
	fmt.Fprintf(&b, "📅 %s\n", cfg.WeddingDate)
	if cfg.WeddingLocation != "" {
		fmt.Fprintf(&b, "📍 %s\n", cfg.WeddingLocation)
	}
	if len(inv.Guests) > 0 {
		names := make([]string, len(inv.Guests))
		for i, g := range inv.Guests {
			names[i] = g.FirstName
		}
		fmt.Fprintf(&b, "\nThis invitation is for: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "\nPlease let us know if you can come:\n%s", link)
	return b.String()
}

// Send delivers one invitation and marks it as sent
func (s *InvitationSender) Send(ctx context.Context, inv models.Invitation) error {
	number := phone.NormalizePhone(inv.PhoneNumber)
	if number == "" {
		return fmt.Errorf("%s: %w", inv.Code, ErrNoPhone)
	}

	link, err := s.links.GenerateLink(ctx, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to generate link for %s: %w", inv.Code, err)
	}
	target := link.URL
	if s.cfg.PublicSiteURL != "" {
		code := link.Code
		if code == "" {
			code = inv.Code
		}
		target = PublicLink(s.cfg.PublicSiteURL, code, link.Token)
	}

	if err := s.sender.SendMessage(ctx, number, FormatInvitation(s.cfg, inv, target)); err != nil {
		return fmt.Errorf("failed to send invitation %s: %w", inv.Code, err)
	}
	if err := s.links.MarkAsSent(ctx, inv.ID); err != nil {
		return fmt.Errorf("invitation %s sent but not marked: %w", inv.Code, err)
	}

	s.log.Info().Str("code", inv.Code).Str("phone", number).Msg("Invitation sent")
	return nil
}

// SendAll sends every invitation, continuing past failures. It returns the
// number sent and the joined errors.
func (s *InvitationSender) SendAll(ctx context.Context, invs []models.Invitation) (int, error) {
	var errs []error
	sent := 0
	for _, inv := range invs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.Send(ctx, inv); err != nil {
			s.log.Warn().Err(err).Str("code", inv.Code).Msg("Invitation not sent")
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
