package autoassign_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"wedding-invitations/internal/api"
	"wedding-invitations/internal/api/apitest"
	"wedding-invitations/internal/autoassign"
	"wedding-invitations/internal/models"
)

func setup(t *testing.T, confirm bool) (*apitest.Server, *autoassign.Modal, *[]string, *[]models.StrategyResult, *[]error) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	var prompts []string
	var applied []models.StrategyResult
	var failures []error
	confirmer := autoassign.ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		prompts = append(prompts, prompt)
		return confirm, nil
	})
	m := autoassign.NewModal(api.NewClient(srv.URL), confirmer,
		func(r models.StrategyResult) { applied = append(applied, r) },
		func(err error) { failures = append(failures, err) },
		zerolog.Nop(),
	)
	return srv, m, &prompts, &applied, &failures
}

func TestSimulationKeepsBackendOrder(t *testing.T) {
	srv, m, _, _, _ := setup(t, true)
	srv.SetSimulation([]models.StrategyResult{
		{StrategyCode: models.StrategySmallestFirst, StrategyName: "Smallest first", AssignedGuests: 3, WastedBeds: 9},
		{StrategyCode: models.StrategyPerfectMatch, StrategyName: "Perfect match", AssignedGuests: 20},
	})

	require.Equal(t, autoassign.PhaseSimulate, m.Phase())
	require.NoError(t, m.RunSimulation(context.Background()))
	require.Equal(t, autoassign.PhaseResults, m.Phase())

	best, ok := m.Best()
	require.True(t, ok)
	require.Equal(t, models.StrategySmallestFirst, best.StrategyCode)
	require.Len(t, m.Results(), 2)

	calls := srv.AutoAssignCalls()
	require.Len(t, calls, 1)
	require.Equal(t, models.AutoAssignRequest{ResetPrevious: true, Strategy: models.StrategySimulation}, calls[0])
}

func TestApplyStrategyConfirmed(t *testing.T) {
	ctx := context.Background()
	srv, m, prompts, applied, failures := setup(t, true)
	require.NoError(t, m.RunSimulation(ctx))

	ok, err := m.ApplyStrategy(ctx, models.StrategyStandard)
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, *prompts, 1)
	require.True(t, strings.Contains((*prompts)[0], "Standard"))
	require.Len(t, *applied, 1)
	require.Equal(t, models.StrategyStandard, (*applied)[0].StrategyCode)
	require.Empty(t, *failures)

	calls := srv.AutoAssignCalls()
	require.Len(t, calls, 2)
	require.Equal(t, models.AutoAssignRequest{ResetPrevious: true, Strategy: models.StrategyStandard}, calls[1])

	require.Equal(t, autoassign.PhaseSimulate, m.Phase())
	require.Empty(t, m.Results())
}

func TestApplyStrategyDeclined(t *testing.T) {
	ctx := context.Background()
	srv, m, prompts, applied, _ := setup(t, false)
	require.NoError(t, m.RunSimulation(ctx))

	ok, err := m.ApplyStrategy(ctx, models.StrategyPerfectMatch)
	require.NoError(t, err)
	require.False(t, ok)

	require.Len(t, *prompts, 1)
	require.Empty(t, *applied)
	require.Len(t, srv.AutoAssignCalls(), 1)
	require.Equal(t, autoassign.PhaseResults, m.Phase())
}

func TestApplyStrategyFailure(t *testing.T) {
	ctx := context.Background()
	srv, m, _, applied, failures := setup(t, true)
	require.NoError(t, m.RunSimulation(ctx))

	srv.FailNext("POST /api/admin/accommodations/auto-assign/", http.StatusInternalServerError, "boom")
	ok, err := m.ApplyStrategy(ctx, models.StrategyChildrenFirst)
	require.Error(t, err)
	require.True(t, ok)
	require.Empty(t, *applied)
	require.Len(t, *failures, 1)
	require.Equal(t, autoassign.PhaseResults, m.Phase())
}

func TestApplyUnknownStrategy(t *testing.T) {
	_, m, prompts, _, failures := setup(t, true)

	_, err := m.ApplyStrategy(context.Background(), models.StrategyAffinityCluster)
	require.True(t, errors.Is(err, autoassign.ErrUnknownStrategy))
	require.Empty(t, *prompts)
	require.Len(t, *failures, 1)
	require.ErrorIs(t, (*failures)[0], autoassign.ErrUnknownStrategy)
}

func TestApplyConfirmErrorReachesOnError(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	var failures []error
	confirmer := autoassign.ConfirmFunc(func(context.Context, string) (bool, error) {
		return false, errors.New("stdin closed")
	})
	m := autoassign.NewModal(api.NewClient(srv.URL), confirmer, nil, func(err error) { failures = append(failures, err) }, zerolog.Nop())
	require.NoError(t, m.RunSimulation(ctx))

	ok, err := m.ApplyStrategy(ctx, models.StrategyStandard)
	require.Error(t, err)
	require.False(t, ok)
	require.Len(t, failures, 1)
	require.Len(t, srv.AutoAssignCalls(), 1)

	// the modal is usable again after the failure
	_, err = m.ApplyStrategy(ctx, models.StrategyStandard)
	require.NotErrorIs(t, err, autoassign.ErrInProgress)
}

func TestApplyStrategyOneAtATime(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	entered := make(chan struct{})
	release := make(chan struct{})
	confirmer := autoassign.ConfirmFunc(func(context.Context, string) (bool, error) {
		close(entered)
		<-release
		return true, nil
	})
	var mu sync.Mutex
	var failures []error
	m := autoassign.NewModal(api.NewClient(srv.URL), confirmer, nil, func(err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, err)
	}, zerolog.Nop())
	require.NoError(t, m.RunSimulation(ctx))

	first := make(chan error, 1)
	go func() {
		_, err := m.ApplyStrategy(ctx, models.StrategyStandard)
		first <- err
	}()
	<-entered

	ok, err := m.ApplyStrategy(ctx, models.StrategyStandard)
	require.ErrorIs(t, err, autoassign.ErrInProgress)
	require.False(t, ok)

	close(release)
	require.NoError(t, <-first)

	calls := srv.AutoAssignCalls()
	require.Len(t, calls, 2)
	require.Equal(t, models.StrategyStandard, calls[1].Strategy)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failures, 1)
	require.ErrorIs(t, failures[0], autoassign.ErrInProgress)
}

func TestEmptySimulation(t *testing.T) {
	srv, m, _, _, failures := setup(t, true)
	srv.SetSimulation(nil)

	require.ErrorIs(t, m.RunSimulation(context.Background()), autoassign.ErrNoResults)
	require.Len(t, *failures, 1)
	require.Equal(t, autoassign.PhaseSimulate, m.Phase())
}
