package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"wedding-invitations/internal/models"
)

// Accommodations

func (c *Client) ListAccommodations(ctx context.Context) ([]models.Accommodation, error) {
	var out []models.Accommodation
	err := c.do(ctx, http.MethodGet, "/api/admin/accommodations/", nil, nil, &out)
	return out, err
}

func (c *Client) CreateAccommodation(ctx context.Context, a models.Accommodation) (*models.Accommodation, error) {
	var out models.Accommodation
	if err := c.do(ctx, http.MethodPost, "/api/admin/accommodations/", nil, a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAccommodation(ctx context.Context, id int64, a models.Accommodation) (*models.Accommodation, error) {
	var out models.Accommodation
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/accommodations/%d/", id), nil, a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAccommodation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/accommodations/%d/", id), nil, nil, nil)
}

// ListUnassignedInvitations returns invitations that asked for a room and
// still have none
func (c *Client) ListUnassignedInvitations(ctx context.Context) ([]models.Invitation, error) {
	var out []models.Invitation
	err := c.do(ctx, http.MethodGet, "/api/admin/accommodations/unassigned-invitations/", nil, nil, &out)
	return out, err
}

// TriggerAutoAssign runs the backend assignment. With strategy SIMULATION
// nothing is persisted and every strategy is returned ranked.
func (c *Client) TriggerAutoAssign(ctx context.Context, resetPrevious bool, strategy string) (*models.AutoAssignResponse, error) {
	var out models.AutoAssignResponse
	req := models.AutoAssignRequest{ResetPrevious: resetPrevious, Strategy: strategy}
	if err := c.do(ctx, http.MethodPost, "/api/admin/accommodations/auto-assign/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Suppliers

func (c *Client) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var out []models.Supplier
	err := c.do(ctx, http.MethodGet, "/api/admin/suppliers/", nil, nil, &out)
	return out, err
}

func (c *Client) CreateSupplier(ctx context.Context, s models.Supplier) (*models.Supplier, error) {
	var out models.Supplier
	if err := c.do(ctx, http.MethodPost, "/api/admin/suppliers/", nil, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSupplier(ctx context.Context, id int64, s models.Supplier) (*models.Supplier, error) {
	var out models.Supplier
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/suppliers/%d/", id), nil, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSupplier(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/suppliers/%d/", id), nil, nil, nil)
}

func (c *Client) ListSupplierTypes(ctx context.Context) ([]models.SupplierType, error) {
	var out []models.SupplierType
	err := c.do(ctx, http.MethodGet, "/api/admin/supplier-types/", nil, nil, &out)
	return out, err
}

func (c *Client) CreateSupplierType(ctx context.Context, st models.SupplierType) (*models.SupplierType, error) {
	var out models.SupplierType
	if err := c.do(ctx, http.MethodPost, "/api/admin/supplier-types/", nil, st, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSupplierType(ctx context.Context, id int64, st models.SupplierType) (*models.SupplierType, error) {
	var out models.SupplierType
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/supplier-types/%d/", id), nil, st, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSupplierType(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/supplier-types/%d/", id), nil, nil, nil)
}

// Invitations

// ListInvitations returns every invitation, optionally filtered by status
func (c *Client) ListInvitations(ctx context.Context, status models.InvitationStatus) ([]models.Invitation, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {string(status)}}
	}
	var out []models.Invitation
	err := c.do(ctx, http.MethodGet, "/api/admin/invitations/", query, nil, &out)
	return out, err
}

func (c *Client) GetInvitation(ctx context.Context, id int64) (*models.Invitation, error) {
	var out models.Invitation
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/admin/invitations/%d/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateInvitation(ctx context.Context, in models.InvitationInput) (*models.Invitation, error) {
	var out models.Invitation
	if err := c.do(ctx, http.MethodPost, "/api/admin/invitations/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteInvitation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/invitations/%d/", id), nil, nil, nil)
}

// GenerateLink asks the backend for the signed public link of an invitation
func (c *Client) GenerateLink(ctx context.Context, id int64) (*models.InvitationLink, error) {
	var out models.InvitationLink
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/admin/invitations/%d/generate_link/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkAsSent moves a created invitation to sent
func (c *Client) MarkAsSent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/admin/invitations/%d/mark-as-sent/", id), nil, nil, nil)
}
