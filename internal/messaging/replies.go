package messaging

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"wedding-invitations/internal/models"
	"wedding-invitations/internal/phone"
	"wedding-invitations/internal/toast"
)

// ReplyHandler notifies the admin when an invited household writes back
type ReplyHandler struct {
	toasts *toast.Store
	log    zerolog.Logger

	mu      sync.RWMutex
	byPhone map[string]models.Invitation
}

func NewReplyHandler(toasts *toast.Store, log zerolog.Logger) *ReplyHandler {
	return &ReplyHandler{
		toasts:  toasts,
		log:     log.With().Str("component", "Replies").Logger(),
		byPhone: make(map[string]models.Invitation),
	}
}

// SetInvitations replaces the known invitations, keyed by normalized phone
func (h *ReplyHandler) SetInvitations(invs []models.Invitation) {
	byPhone := make(map[string]models.Invitation, len(invs))
	for _, inv := range invs {
		if number := phone.NormalizePhone(inv.PhoneNumber); number != "" {
			byPhone[number] = inv
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.byPhone = byPhone
}

// HandleMessage matches the sender to an invitation and raises a toast.
// Messages from unknown numbers are ignored.
func (h *ReplyHandler) HandleMessage(msg *events.Message) error {
	if msg == nil || msg.Message == nil || msg.Info.IsFromMe {
		return nil
	}

	text := msg.Message.GetConversation()
	if text == "" {
		text = msg.Message.GetExtendedTextMessage().GetText()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	number := phone.NormalizePhone("+" + senderPhone(msg.Info.MessageSource).User)
	h.mu.RLock()
	inv, ok := h.byPhone[number]
	h.mu.RUnlock()
	if !ok {
		h.log.Debug().Str("sender", msg.Info.Sender.String()).Msg("Reply from unknown number")
		return nil
	}

	kind := toast.KindInfo
	if looksLikeDecline(text) {
		kind = toast.KindWarning
	}
	h.toasts.Push(kind, fmt.Sprintf("WhatsApp reply from %s: %s", inv.Name, text))
	h.log.Info().Str("code", inv.Code).Msg("Guest replied on WhatsApp")
	return nil
}

// senderPhone returns the phone-number JID of the sender. LID-addressed
// messages carry it in SenderAlt.
func senderPhone(src types.MessageSource) types.JID {
	if src.Sender.Server == types.HiddenUserServer && !src.SenderAlt.IsEmpty() {
		return src.SenderAlt
	}
	return src.Sender
}

func looksLikeDecline(text string) bool {
	return containsAny(strings.ToLower(text),
		"non possiamo", "non riusciamo", "non veniamo", "non ci saremo", "purtroppo",
		"can't come", "cannot come", "won't come", "not coming", "decline", "❌")
}

func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
