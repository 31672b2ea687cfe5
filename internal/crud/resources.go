package crud

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"wedding-invitations/internal/api"
	"wedding-invitations/internal/models"
	"wedding-invitations/internal/toast"
)

type AccommodationForm struct {
	Name    string     `validate:"required,max=200"`
	Address string     `validate:"max=300"`
	Rooms   []RoomForm `validate:"dive"`
}

type RoomForm struct {
	ID               int64
	RoomNumber       string `validate:"required,max=50"`
	CapacityAdults   int    `validate:"gte=0"`
	CapacityChildren int    `validate:"gte=0"`
}

type SupplierForm struct {
	Name    string  `validate:"required,max=200"`
	TypeID  *int64  `validate:"omitempty,gt=0"`
	Cost    float64 `validate:"gte=0"`
	Contact string  `validate:"max=200"`
	Notes   string
}

type SupplierTypeForm struct {
	Name string `validate:"required,max=100"`
}

var accommodationResource = Resource[models.Accommodation, AccommodationForm]{
	Name:  "Accommodation",
	ID:    func(a models.Accommodation) int64 { return a.ID },
	Label: func(a models.Accommodation) string { return a.Name },
	ToForm: func(a models.Accommodation) AccommodationForm {
		f := AccommodationForm{Name: a.Name, Address: a.Address}
		for _, r := range a.Rooms {
			f.Rooms = append(f.Rooms, RoomForm{
				ID:               r.ID,
				RoomNumber:       r.RoomNumber,
				CapacityAdults:   r.CapacityAdults,
				CapacityChildren: r.CapacityChildren,
			})
		}
		return f
	},
	FromForm: func(f AccommodationForm) models.Accommodation {
		a := models.Accommodation{Name: strings.TrimSpace(f.Name), Address: strings.TrimSpace(f.Address)}
		for _, r := range f.Rooms {
			a.Rooms = append(a.Rooms, models.Room{
				ID:               r.ID,
				RoomNumber:       strings.TrimSpace(r.RoomNumber),
				CapacityAdults:   r.CapacityAdults,
				CapacityChildren: r.CapacityChildren,
			})
		}
		return a
	},
}

var supplierResource = Resource[models.Supplier, SupplierForm]{
	Name:  "Supplier",
	ID:    func(s models.Supplier) int64 { return s.ID },
	Label: func(s models.Supplier) string { return s.Name },
	ToForm: func(s models.Supplier) SupplierForm {
		return SupplierForm{Name: s.Name, TypeID: s.TypeID, Cost: s.Cost, Contact: s.Contact, Notes: s.Notes}
	},
	FromForm: func(f SupplierForm) models.Supplier {
		return models.Supplier{
			Name:    strings.TrimSpace(f.Name),
			TypeID:  f.TypeID,
			Cost:    f.Cost,
			Contact: strings.TrimSpace(f.Contact),
			Notes:   f.Notes,
		}
	},
}

var supplierTypeResource = Resource[models.SupplierType, SupplierTypeForm]{
	Name:  "Supplier type",
	ID:    func(st models.SupplierType) int64 { return st.ID },
	Label: func(st models.SupplierType) string { return st.Name },
	ToForm: func(st models.SupplierType) SupplierTypeForm {
		return SupplierTypeForm{Name: st.Name}
	},
	FromForm: func(f SupplierTypeForm) models.SupplierType {
		return models.SupplierType{Name: strings.TrimSpace(f.Name)}
	},
}

type accommodationService struct{ c *api.Client }

func (s accommodationService) List(ctx context.Context) ([]models.Accommodation, error) {
	return s.c.ListAccommodations(ctx)
}

func (s accommodationService) Create(ctx context.Context, a models.Accommodation) (*models.Accommodation, error) {
	return s.c.CreateAccommodation(ctx, a)
}

func (s accommodationService) Update(ctx context.Context, id int64, a models.Accommodation) (*models.Accommodation, error) {
	return s.c.UpdateAccommodation(ctx, id, a)
}

func (s accommodationService) Delete(ctx context.Context, id int64) error {
	return s.c.DeleteAccommodation(ctx, id)
}

type supplierService struct{ c *api.Client }

func (s supplierService) List(ctx context.Context) ([]models.Supplier, error) {
	return s.c.ListSuppliers(ctx)
}

func (s supplierService) Create(ctx context.Context, sup models.Supplier) (*models.Supplier, error) {
	return s.c.CreateSupplier(ctx, sup)
}

func (s supplierService) Update(ctx context.Context, id int64, sup models.Supplier) (*models.Supplier, error) {
	return s.c.UpdateSupplier(ctx, id, sup)
}

func (s supplierService) Delete(ctx context.Context, id int64) error {
	return s.c.DeleteSupplier(ctx, id)
}

type supplierTypeService struct{ c *api.Client }

func (s supplierTypeService) List(ctx context.Context) ([]models.SupplierType, error) {
	return s.c.ListSupplierTypes(ctx)
}

func (s supplierTypeService) Create(ctx context.Context, st models.SupplierType) (*models.SupplierType, error) {
	return s.c.CreateSupplierType(ctx, st)
}

func (s supplierTypeService) Update(ctx context.Context, id int64, st models.SupplierType) (*models.SupplierType, error) {
	return s.c.UpdateSupplierType(ctx, id, st)
}

func (s supplierTypeService) Delete(ctx context.Context, id int64) error {
	return s.c.DeleteSupplierType(ctx, id)
}

func NewAccommodationPage(c *api.Client, toasts *toast.Store, confirmer Confirmer, log zerolog.Logger) *Page[models.Accommodation, AccommodationForm] {
	return NewPage[models.Accommodation, AccommodationForm](accommodationService{c}, accommodationResource, toasts, confirmer, log)
}

func NewSupplierPage(c *api.Client, toasts *toast.Store, confirmer Confirmer, log zerolog.Logger) *Page[models.Supplier, SupplierForm] {
	return NewPage[models.Supplier, SupplierForm](supplierService{c}, supplierResource, toasts, confirmer, log)
}

func NewSupplierTypePage(c *api.Client, toasts *toast.Store, confirmer Confirmer, log zerolog.Logger) *Page[models.SupplierType, SupplierTypeForm] {
	return NewPage[models.SupplierType, SupplierTypeForm](supplierTypeService{c}, supplierTypeResource, toasts, confirmer, log)
}
