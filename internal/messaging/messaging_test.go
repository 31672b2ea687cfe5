package messaging

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"wedding-invitations/internal/api"
	"wedding-invitations/internal/api/apitest"
	"wedding-invitations/internal/models"
	"wedding-invitations/internal/toast"
)

type sentMessage struct {
	phone string
	text  string
}

type fakeSender struct {
	sent    []sentMessage
	failFor string
}

func (f *fakeSender) SendMessage(_ context.Context, phoneNumber, message string) error {
	if phoneNumber == f.failFor {
		return errors.New("not on whatsapp")
	}
	f.sent = append(f.sent, sentMessage{phone: phoneNumber, text: message})
	return nil
}

var testConfig = Config{
	PublicSiteURL: "https://sposi.example/",
	WeddingDate:   "20 giugno 2026",
	BrideName:     "Giulia",
	GroomName:     "Luca",
}

func TestSendBuildsLinkAndMarksSent(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	inv, token := srv.AddInvitation(models.Invitation{
		Code:        "rossi",
		Name:        "Famiglia Rossi",
		PhoneNumber: "320 123 4567",
		Guests:      []models.Guest{{FirstName: "Mario"}, {FirstName: "Anna"}},
	})

	sender := &fakeSender{}
	s := NewInvitationSender(sender, api.NewClient(srv.URL), testConfig, zerolog.Nop())
	require.NoError(t, s.Send(ctx, inv))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	require.Equal(t, "+393201234567", msg.phone)
	require.Contains(t, msg.text, "Giulia & Luca")
	require.Contains(t, msg.text, "Mario, Anna")

	link := msg.text[strings.LastIndex(msg.text, "\n")+1:]
	u, err := url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, "sposi.example", u.Host)
	require.Equal(t, "rossi", u.Query().Get("code"))
	require.Equal(t, token, u.Query().Get("token"))

	stored, ok := srv.Invitation(inv.ID)
	require.True(t, ok)
	require.Equal(t, models.StatusSent, stored.Status)
}

func TestSendAllContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	a, _ := srv.AddInvitation(models.Invitation{Code: "a", Name: "A", PhoneNumber: "3201111111"})
	b, _ := srv.AddInvitation(models.Invitation{Code: "b", Name: "B", PhoneNumber: "+15551234567"})
	c, _ := srv.AddInvitation(models.Invitation{Code: "c", Name: "C", PhoneNumber: "3202222222"})
	d, _ := srv.AddInvitation(models.Invitation{Code: "d", Name: "D", PhoneNumber: "3203333333"})

	sender := &fakeSender{failFor: "+393202222222"}
	s := NewInvitationSender(sender, api.NewClient(srv.URL), testConfig, zerolog.Nop())

	sent, err := s.SendAll(ctx, []models.Invitation{a, b, c, d})
	require.Equal(t, 2, sent)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNoPhone)
	require.Contains(t, err.Error(), "failed to send invitation c")

	stored, _ := srv.Invitation(c.ID)
	require.Equal(t, models.StatusCreated, stored.Status)
	stored, _ = srv.Invitation(d.ID)
	require.Equal(t, models.StatusSent, stored.Status)
}

func TestPublicLinkEscapes(t *testing.T) {
	require.Equal(t, "https://x.test/?code=a+b&token=t%2F1", PublicLink("https://x.test/", "a b", "t/1"))
}

func incoming(user, text string, fromMe bool) *events.Message {
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Sender:   types.NewJID(user, types.DefaultUserServer),
				IsFromMe: fromMe,
			},
		},
		Message: &waE2E.Message{Conversation: &text},
	}
}

func TestReplyHandlerPushesToastForKnownGuests(t *testing.T) {
	toasts := toast.New(0)
	t.Cleanup(toasts.Close)
	h := NewReplyHandler(toasts, zerolog.Nop())
	h.SetInvitations([]models.Invitation{
		{Code: "rossi", Name: "Famiglia Rossi", PhoneNumber: "320 123 4567"},
		{Code: "nophone", Name: "Senza telefono"},
	})

	require.NoError(t, h.HandleMessage(incoming("393201234567", "Ci saremo!", false)))
	require.NoError(t, h.HandleMessage(incoming("393209999999", "chi sei?", false)))
	require.NoError(t, h.HandleMessage(incoming("393201234567", "echo", true)))
	require.NoError(t, h.HandleMessage(incoming("393201234567", "   ", false)))

	list := toasts.List()
	require.Len(t, list, 1)
	require.Equal(t, toast.KindInfo, list[0].Kind)
	require.Equal(t, "WhatsApp reply from Famiglia Rossi: Ci saremo!", list[0].Message)

	require.NoError(t, h.HandleMessage(incoming("393201234567", "Purtroppo non possiamo venire", false)))
	list = toasts.List()
	require.Equal(t, toast.KindWarning, list[len(list)-1].Kind)

	lid := incoming("100200300400500", "Arriviamo venerdì", false)
	lid.Info.Sender = types.NewJID("100200300400500", types.HiddenUserServer)
	lid.Info.SenderAlt = types.NewJID("393201234567", types.DefaultUserServer)
	require.NoError(t, h.HandleMessage(lid))
	list = toasts.List()
	require.Len(t, list, 3)
	require.Equal(t, "WhatsApp reply from Famiglia Rossi: Arriviamo venerdì", list[2].Message)

	unknownLID := incoming("100200300400501", "ciao", false)
	unknownLID.Info.Sender = types.NewJID("100200300400501", types.HiddenUserServer)
	require.NoError(t, h.HandleMessage(unknownLID))
	require.Len(t, toasts.List(), 3)
}
