// Package autoassign drives the two phase room auto-assignment flow: simulate
// every strategy on the backend, then apply the one the admin picks.
package autoassign

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"wedding-invitations/internal/models"
)

type Phase string

const (
	PhaseSimulate Phase = "simulate"
	PhaseResults  Phase = "results"
)

var (
	ErrNoResults       = errors.New("simulation returned no strategies")
	ErrUnknownStrategy = errors.New("strategy not among the simulated results")
	ErrInProgress      = errors.New("an assignment is already in progress")
)

// Assigner triggers the backend auto-assignment
type Assigner interface {
	TriggerAutoAssign(ctx context.Context, resetPrevious bool, strategy string) (*models.AutoAssignResponse, error)
}

// Confirmer asks the admin a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Modal holds the simulation results between the two phases
type Modal struct {
	assigner  Assigner
	confirmer Confirmer
	onSuccess func(models.StrategyResult)
	onError   func(error)
	log       zerolog.Logger

	mu      sync.Mutex
	phase   Phase
	results []models.StrategyResult
	busy    bool
}

// NewModal creates a modal; onSuccess and onError may be nil
func NewModal(assigner Assigner, confirmer Confirmer, onSuccess func(models.StrategyResult), onError func(error), log zerolog.Logger) *Modal {
	return &Modal{
		assigner:  assigner,
		confirmer: confirmer,
		onSuccess: onSuccess,
		onError:   onError,
		log:       log.With().Str("component", "AutoAssign").Logger(),
		phase:     PhaseSimulate,
	}
}

func (m *Modal) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Results returns the simulated strategies in backend order
func (m *Modal) Results() []models.StrategyResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.StrategyResult(nil), m.results...)
}

// Best is the first simulated strategy; the backend ranks them
func (m *Modal) Best() (models.StrategyResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.results) == 0 {
		return models.StrategyResult{}, false
	}
	return m.results[0], true
}

// RunSimulation asks the backend to evaluate every strategy without saving
func (m *Modal) RunSimulation(ctx context.Context) error {
	resp, err := m.assigner.TriggerAutoAssign(ctx, true, models.StrategySimulation)
	if err != nil {
		m.fail(err)
		return err
	}
	if len(resp.Results) == 0 {
		m.fail(ErrNoResults)
		return ErrNoResults
	}

	m.mu.Lock()
	m.results = append([]models.StrategyResult(nil), resp.Results...)
	m.phase = PhaseResults
	m.mu.Unlock()

	m.log.Info().Int("strategies", len(resp.Results)).Str("best", resp.Results[0].StrategyCode).Msg("Simulation completed")
	return nil
}

// ApplyStrategy confirms with the admin and then applies code. A declined
// confirmation returns (false, nil) without calling the backend. Only one
// apply runs at a time; a concurrent call fails with ErrInProgress.
func (m *Modal) ApplyStrategy(ctx context.Context, code string) (bool, error) {
	name, err := m.claim(code)
	if err != nil {
		m.fail(err)
		return false, err
	}
	defer func() {
		m.mu.Lock()
		m.busy = false
		m.mu.Unlock()
	}()

	ok, err := m.confirmer.Confirm(ctx, fmt.Sprintf("Apply the %q strategy? Current room assignments will be replaced.", name))
	if err != nil {
		err = fmt.Errorf("failed to confirm strategy: %w", err)
		m.fail(err)
		return false, err
	}
	if !ok {
		m.log.Debug().Str("strategy", code).Msg("Strategy not confirmed")
		return false, nil
	}

	resp, err := m.assigner.TriggerAutoAssign(ctx, true, code)
	if err != nil {
		m.fail(err)
		return true, err
	}

	result := models.StrategyResult{StrategyCode: code, StrategyName: name}
	if resp.Result != nil {
		result = *resp.Result
	}
	m.log.Info().
		Str("strategy", code).
		Int("assigned", result.AssignedGuests).
		Int("unassigned", result.UnassignedGuests).
		Msg("Strategy applied")

	if m.onSuccess != nil {
		m.onSuccess(result)
	}
	m.Close()
	return true, nil
}

// claim marks the modal busy and returns the display name of code
func (m *Modal) claim(code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return "", ErrInProgress
	}
	for _, r := range m.results {
		if r.StrategyCode == code {
			m.busy = true
			return r.StrategyName, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownStrategy, code)
}

// Close drops the results and goes back to the simulate phase
func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = PhaseSimulate
	m.results = nil
}

func (m *Modal) fail(err error) {
	m.log.Error().Err(err).Msg("Auto-assign failed")
	if m.onError != nil {
		m.onError(err)
	}
}
