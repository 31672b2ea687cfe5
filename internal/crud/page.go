// Package crud implements the list / edit / delete flow shared by the
// accommodation, supplier and supplier type admin pages.
package crud

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"wedding-invitations/internal/apperr"
	"wedding-invitations/internal/toast"
)

var ErrFormClosed = errors.New("no form is open")

// Service is the backend surface for one resource
type Service[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (*T, error)
	Update(ctx context.Context, id int64, item T) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// Confirmer asks the admin a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Resource describes how records map to their edit form
type Resource[T, F any] struct {
	Name     string
	ID       func(T) int64
	Label    func(T) string
	ToForm   func(T) F
	FromForm func(F) T
}

// Page keeps the fetched list and the open form. The list is only ever
// replaced by a full refetch.
type Page[T, F any] struct {
	svc       Service[T]
	res       Resource[T, F]
	toasts    *toast.Store
	confirmer Confirmer
	validate  *validator.Validate
	log       zerolog.Logger

	mu      sync.Mutex
	items   []T
	form    *F
	editing int64
}

func NewPage[T, F any](svc Service[T], res Resource[T, F], toasts *toast.Store, confirmer Confirmer, log zerolog.Logger) *Page[T, F] {
	return &Page[T, F]{
		svc:       svc,
		res:       res,
		toasts:    toasts,
		confirmer: confirmer,
		validate:  validator.New(),
		log:       log.With().Str("component", res.Name).Logger(),
	}
}

// Load replaces the list with the backend's
func (p *Page[T, F]) Load(ctx context.Context) error {
	items, err := p.svc.List(ctx)
	if err != nil {
		p.toasts.Error(apperr.UserMessage(err))
		return err
	}

	p.mu.Lock()
	p.items = items
	p.mu.Unlock()

	p.log.Debug().Int("count", len(items)).Msg("List loaded")
	return nil
}

func (p *Page[T, F]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]T(nil), p.items...)
}

// Find returns the loaded record with id
func (p *Page[T, F]) Find(id int64) (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, it := range p.items {
		if p.res.ID(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// OpenCreate opens an empty form
func (p *Page[T, F]) OpenCreate() F {
	var zero T
	form := p.res.ToForm(zero)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = &form
	p.editing = 0
	return form
}

// OpenEdit opens the form seeded from the loaded record with id
func (p *Page[T, F]) OpenEdit(id int64) (F, error) {
	item, ok := p.Find(id)
	if !ok {
		var zero F
		return zero, fmt.Errorf("%s %d not found", p.res.Name, id)
	}
	form := p.res.ToForm(item)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = &form
	p.editing = id
	return form, nil
}

// SetForm replaces the open form's values
func (p *Page[T, F]) SetForm(form F) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.form == nil {
		return ErrFormClosed
	}
	p.form = &form
	return nil
}

// Form returns the open form, if any
func (p *Page[T, F]) Form() (F, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.form == nil {
		var zero F
		return zero, false
	}
	return *p.form, true
}

// Editing returns the id being edited, 0 when creating
func (p *Page[T, F]) Editing() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editing
}

func (p *Page[T, F]) CloseForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = nil
	p.editing = 0
}

// Submit validates the open form and creates or updates the record. The
// form stays open on any failure.
func (p *Page[T, F]) Submit(ctx context.Context) error {
	p.mu.Lock()
	if p.form == nil {
		p.mu.Unlock()
		return ErrFormClosed
	}
	form, id := *p.form, p.editing
	p.mu.Unlock()

	if err := p.validate.Struct(form); err != nil {
		return validationError(err)
	}

	item := p.res.FromForm(form)
	var err error
	if id == 0 {
		_, err = p.svc.Create(ctx, item)
	} else {
		_, err = p.svc.Update(ctx, id, item)
	}
	if err != nil {
		p.log.Error().Err(err).Int64("id", id).Msg("Save failed")
		p.toasts.Error(apperr.UserMessage(err))
		return err
	}

	if id == 0 {
		p.toasts.Info(p.res.Name + " created")
	} else {
		p.toasts.Info(p.res.Name + " updated")
	}
	if err := p.Load(ctx); err != nil {
		return err
	}
	p.CloseForm()
	return nil
}

// Delete removes a record after confirmation. It reports whether the
// record was deleted.
func (p *Page[T, F]) Delete(ctx context.Context, id int64) (bool, error) {
	label := fmt.Sprintf("%s %d", p.res.Name, id)
	if item, ok := p.Find(id); ok && p.res.Label != nil {
		label = p.res.Label(item)
	}

	ok, err := p.confirmer.Confirm(ctx, fmt.Sprintf("Delete %s? This cannot be undone.", label))
	if err != nil || !ok {
		return false, err
	}

	if err := p.svc.Delete(ctx, id); err != nil {
		p.log.Error().Err(err).Int64("id", id).Msg("Delete failed")
		p.toasts.Error(apperr.UserMessage(err))
		return false, err
	}
	p.toasts.Info(p.res.Name + " deleted")
	return true, p.Load(ctx)
}

func validationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return apperr.Validation(err.Error())
	}
	fe := fields[0]
	switch fe.Tag() {
	case "required":
		return apperr.Validation(fe.Field() + " is required")
	case "gte", "min":
		return apperr.Validation(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
	case "max":
		return apperr.Validation(fe.Field() + " is too long")
	default:
		return apperr.Validation(fe.Field() + " is invalid")
	}
}
