package scenario_test

import (
	"context"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"wedding-invitations/internal/api"
	"wedding-invitations/internal/api/apitest"
	"wedding-invitations/internal/models"
	"wedding-invitations/internal/phone"
	"wedding-invitations/internal/scenario"
)

func TestRunTenInvitations(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AdminToken = "tok"

	admin := api.NewClient(srv.URL, api.WithAdminToken("tok"))
	public := func() *api.Client { return api.NewClient(srv.URL) }

	report, err := scenario.Run(context.Background(), admin, public, scenario.Options{Count: 10}, rand.New(rand.NewSource(7)), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 10)
	require.Equal(t, 10, report.Confirmed+report.Declined)

	rsvps := srv.RSVPs()
	require.Len(t, rsvps, 10)
	for _, r := range rsvps {
		require.NotEmpty(t, r.SessionID)
		require.True(t, phone.ValidatePhone(r.PhoneNumber))
		if r.Status == models.StatusDeclined {
			require.Nil(t, r.AccommodationRequested)
		}
	}

	for _, o := range report.Outcomes {
		stored, ok := srv.Invitation(o.ID)
		require.True(t, ok)
		require.Equal(t, o.Status, stored.Status)
	}
}

func TestRunWaitsForBackend(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.FailNext("GET /api/admin/invitations/", http.StatusServiceUnavailable, "starting")

	admin := api.NewClient(srv.URL)
	public := func() *api.Client { return api.NewClient(srv.URL) }

	report, err := scenario.Run(context.Background(), admin, public, scenario.Options{Count: 2, ReadyWait: 5 * time.Second}, rand.New(rand.NewSource(1)), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 2)
}

func TestRunStopsOnUnauthorized(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AdminToken = "right"

	admin := api.NewClient(srv.URL, api.WithAdminToken("wrong"))
	public := func() *api.Client { return api.NewClient(srv.URL) }

	start := time.Now()
	_, err := scenario.Run(context.Background(), admin, public, scenario.Options{Count: 1, ReadyWait: 10 * time.Second}, rand.New(rand.NewSource(1)), zerolog.Nop())
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}
