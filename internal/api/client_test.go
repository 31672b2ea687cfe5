package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wedding-invitations/internal/api"
	"wedding-invitations/internal/api/apitest"
	"wedding-invitations/internal/apperr"
	"wedding-invitations/internal/models"
)

func newBackend(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return srv
}

func TestAdminTokenIsSent(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)
	srv.AdminToken = "s3cret"

	_, err := api.NewClient(srv.URL).ListSuppliers(ctx)
	require.True(t, apperr.IsKind(err, apperr.KindHTTP))

	suppliers, err := api.NewClient(srv.URL, api.WithAdminToken("s3cret")).ListSuppliers(ctx)
	require.NoError(t, err)
	require.Empty(t, suppliers)
}

func TestErrorHookReceivesBackendMessage(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)

	var got []*apperr.Error
	c := api.NewClient(srv.URL, api.WithErrorHook(func(e *apperr.Error) { got = append(got, e) }))

	srv.FailNext("GET /api/admin/accommodations/", http.StatusInternalServerError, "database is down")
	_, err := c.ListAccommodations(ctx)
	require.Error(t, err)
	require.Equal(t, "database is down", apperr.UserMessage(err))

	require.Len(t, got, 1)
	require.Equal(t, apperr.KindHTTP, got[0].Kind)
	require.Equal(t, http.StatusInternalServerError, got[0].Status)

	_, err = c.ListAccommodations(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestNetworkErrorKind(t *testing.T) {
	srv := apitest.NewServer()
	url := srv.URL
	srv.Close()

	_, err := api.NewClient(url).ListTexts(context.Background())
	require.True(t, apperr.IsKind(err, apperr.KindNetwork))
}

func TestCancelledContext(t *testing.T) {
	srv := newBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.NewClient(srv.URL).ListTexts(ctx)
	require.True(t, apperr.IsKind(err, apperr.KindCancelled))
}

func TestSupplierCRUD(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)
	c := api.NewClient(srv.URL)

	st, err := c.CreateSupplierType(ctx, models.SupplierType{Name: "Catering"})
	require.NoError(t, err)

	sup, err := c.CreateSupplier(ctx, models.Supplier{Name: "Da Mario", TypeID: &st.ID, Cost: 4200})
	require.NoError(t, err)
	require.NotZero(t, sup.ID)

	sup.Notes = "menu di pesce"
	updated, err := c.UpdateSupplier(ctx, sup.ID, *sup)
	require.NoError(t, err)
	require.Equal(t, "menu di pesce", updated.Notes)

	list, err := c.ListSuppliers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, st.ID, *list[0].TypeID)

	require.NoError(t, c.DeleteSupplier(ctx, sup.ID))
	err = c.DeleteSupplier(ctx, sup.ID)
	require.Equal(t, "supplier not found", apperr.UserMessage(err))
}

func TestPublicHandshakeAndRSVP(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)
	inv, token := srv.AddInvitation(models.Invitation{
		Code:   "mario-rossi-393201234567",
		Name:   "Mario Rossi",
		Status: models.StatusSent,
		Guests: []models.Guest{{FirstName: "Mario"}, {FirstName: "Anna"}},
	})

	c := api.NewClient(srv.URL)

	_, err := c.SubmitRSVP(ctx, models.RSVPRequest{Status: models.StatusConfirmed})
	require.Error(t, err, "rsvp without session must fail")

	_, err = c.Authenticate(ctx, inv.Code, "wrong")
	require.Equal(t, "Invalid invitation link", apperr.UserMessage(err))

	got, err := c.Authenticate(ctx, inv.Code, token)
	require.NoError(t, err)
	require.Equal(t, models.StatusRead, got.Status)
	require.Len(t, got.Guests, 2)

	name := "Annalisa"
	resp, err := c.SubmitRSVP(ctx, models.RSVPRequest{
		Status:       models.StatusConfirmed,
		PhoneNumber:  "+393201234567",
		GuestUpdates: map[int]models.GuestUpdate{1: {FirstName: &name}},
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusConfirmed, resp.Status)

	stored, ok := srv.Invitation(inv.ID)
	require.True(t, ok)
	require.Equal(t, models.StatusConfirmed, stored.Status)
	require.Equal(t, "Annalisa", stored.Guests[1].FirstName)
}

type countingTransport struct {
	mu sync.Mutex
	n  int
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	return http.DefaultTransport.RoundTrip(req)
}

func TestWithHTTPClientLeavesCallerClientAlone(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)
	inv, token := srv.AddInvitation(models.Invitation{Code: "rossi", Name: "Rossi", Guests: []models.Guest{{FirstName: "Mario"}}})

	transport := &countingTransport{}
	shared := &http.Client{Transport: transport}
	c := api.NewClient(srv.URL, api.WithTimeout(5*time.Second), api.WithHTTPClient(shared))

	_, err := c.Authenticate(ctx, inv.Code, token)
	require.NoError(t, err)
	_, err = c.SubmitRSVP(ctx, models.RSVPRequest{Status: models.StatusDeclined, PhoneNumber: "+393201234567"})
	require.NoError(t, err, "session cookie must survive on the copied client")

	require.Equal(t, 2, transport.n)
	require.Nil(t, shared.Jar)
	require.Zero(t, shared.Timeout)

	require.NotPanics(t, func() { api.NewClient(srv.URL, api.WithHTTPClient(nil)) })
}

func TestTimeoutAppliesBeforeOrAfterHTTPClient(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(slow.Close)

	for name, opts := range map[string][]api.Option{
		"timeout first": {api.WithTimeout(50 * time.Millisecond), api.WithHTTPClient(&http.Client{})},
		"timeout last":  {api.WithHTTPClient(&http.Client{}), api.WithTimeout(50 * time.Millisecond)},
	} {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			_, err := api.NewClient(slow.URL, opts...).ListTexts(context.Background())
			e, ok := apperr.As(err)
			require.True(t, ok)
			require.Contains(t, []apperr.Kind{apperr.KindNetwork, apperr.KindCancelled}, e.Kind)
			require.Less(t, time.Since(start), time.Second)
		})
	}
}

func TestAutoAssignRequestBody(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)
	c := api.NewClient(srv.URL)

	sim, err := c.TriggerAutoAssign(ctx, true, models.StrategySimulation)
	require.NoError(t, err)
	require.Len(t, sim.Results, 3)
	require.Nil(t, sim.Result)

	applied, err := c.TriggerAutoAssign(ctx, true, models.StrategyStandard)
	require.NoError(t, err)
	require.Equal(t, models.StrategyStandard, applied.Result.StrategyCode)

	require.Equal(t, []models.AutoAssignRequest{
		{ResetPrevious: true, Strategy: models.StrategySimulation},
		{ResetPrevious: true, Strategy: models.StrategyStandard},
	}, srv.AutoAssignCalls())
}

func TestInvitationsByStatus(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)
	srv.AddInvitation(models.Invitation{Code: "a", Name: "A", Status: models.StatusConfirmed})
	srv.AddInvitation(models.Invitation{Code: "b", Name: "B", Status: models.StatusDeclined})
	created, err := api.NewClient(srv.URL).CreateInvitation(ctx, models.InvitationInput{Code: "c", Name: "C"})
	require.NoError(t, err)

	c := api.NewClient(srv.URL)
	all, err := c.ListInvitations(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	confirmed, err := c.ListInvitations(ctx, models.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	require.Equal(t, "A", confirmed[0].Name)

	require.NoError(t, c.MarkAsSent(ctx, created.ID))
	got, err := c.GetInvitation(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusSent, got.Status)

	_, err = c.CreateInvitation(ctx, models.InvitationInput{Code: "c", Name: "dup"})
	require.Equal(t, "An invitation with this code already exists", apperr.UserMessage(err))
}
