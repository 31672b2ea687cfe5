package crud

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"wedding-invitations/internal/api"
	"wedding-invitations/internal/models"
)

// AccommodationsOverview is what the accommodations page renders on load
type AccommodationsOverview struct {
	Accommodations []models.Accommodation
	Unassigned     []models.Invitation
}

// TotalCapacity sums the beds of every accommodation
func (o AccommodationsOverview) TotalCapacity() int {
	total := 0
	for _, a := range o.Accommodations {
		total += a.TotalCapacity()
	}
	return total
}

// TotalFree sums the free beds of every accommodation
func (o AccommodationsOverview) TotalFree() int {
	total := 0
	for _, a := range o.Accommodations {
		total += a.TotalFree()
	}
	return total
}

// UnassignedGuests counts the guests still waiting for a room
func (o AccommodationsOverview) UnassignedGuests() int {
	total := 0
	for _, inv := range o.Unassigned {
		total += len(inv.Guests)
	}
	return total
}

// LoadAccommodationsOverview fetches accommodations and unassigned
// invitations concurrently
func LoadAccommodationsOverview(ctx context.Context, c *api.Client) (*AccommodationsOverview, error) {
	var out AccommodationsOverview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := c.ListAccommodations(ctx)
		out.Accommodations = items
		return err
	})
	g.Go(func() error {
		items, err := c.ListUnassignedInvitations(ctx)
		out.Unassigned = items
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// SupplierGroup is the suppliers of one type
type SupplierGroup struct {
	Type      models.SupplierType
	Suppliers []models.Supplier
	Total     float64
}

// SupplierCatalog is what the suppliers page renders on load
type SupplierCatalog struct {
	Types     []models.SupplierType
	Suppliers []models.Supplier
}

// Grouped buckets suppliers by type, in type name order. Suppliers without a
// known type end up in a trailing group with a zero Type.
func (c SupplierCatalog) Grouped() []SupplierGroup {
	byID := make(map[int64]int, len(c.Types))
	groups := make([]SupplierGroup, 0, len(c.Types)+1)

	types := append([]models.SupplierType(nil), c.Types...)
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	for _, t := range types {
		byID[t.ID] = len(groups)
		groups = append(groups, SupplierGroup{Type: t})
	}

	var other SupplierGroup
	for _, s := range c.Suppliers {
		idx, ok := -1, false
		if s.TypeID != nil {
			idx, ok = byID[*s.TypeID]
		}
		if !ok {
			other.Suppliers = append(other.Suppliers, s)
			other.Total += s.Cost
			continue
		}
		groups[idx].Suppliers = append(groups[idx].Suppliers, s)
		groups[idx].Total += s.Cost
	}
	if len(other.Suppliers) > 0 {
		groups = append(groups, other)
	}
	return groups
}

// TotalCost sums every supplier's cost
func (c SupplierCatalog) TotalCost() float64 {
	total := 0.0
	for _, s := range c.Suppliers {
		total += s.Cost
	}
	return total
}

// LoadSupplierCatalog fetches supplier types and suppliers concurrently
func LoadSupplierCatalog(ctx context.Context, c *api.Client) (*SupplierCatalog, error) {
	var out SupplierCatalog
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := c.ListSupplierTypes(ctx)
		out.Types = items
		return err
	})
	g.Go(func() error {
		items, err := c.ListSuppliers(ctx)
		out.Suppliers = items
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
