package api

import (
	"context"
	"net/http"
	"net/url"

	"wedding-invitations/internal/models"
)

// Authenticate performs the code+token handshake. The backend answers with
// the invitation and a session cookie kept in the client's jar.
func (c *Client) Authenticate(ctx context.Context, code, token string) (*models.Invitation, error) {
	query := url.Values{"code": {code}, "token": {token}}
	var out models.Invitation
	if err := c.do(ctx, http.MethodGet, "/api/public/invitation/", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitRSVP posts the guest's answer for the authenticated invitation
func (c *Client) SubmitRSVP(ctx context.Context, req models.RSVPRequest) (*models.RSVPResponse, error) {
	var out models.RSVPResponse
	if err := c.do(ctx, http.MethodPost, "/api/public/rsvp/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LogInteraction(ctx context.Context, in models.Interaction) error {
	return c.do(ctx, http.MethodPost, "/api/public/log-interaction/", nil, in, nil)
}

func (c *Client) LogHeatmap(ctx context.Context, batch models.HeatmapBatch) error {
	return c.do(ctx, http.MethodPost, "/api/public/log-heatmap/", nil, batch, nil)
}

// ListTexts returns the CMS texts editable from the admin panel
func (c *Client) ListTexts(ctx context.Context) ([]models.ConfigurableText, error) {
	var out []models.ConfigurableText
	err := c.do(ctx, http.MethodGet, "/api/public/texts/", nil, nil, &out)
	return out, err
}
