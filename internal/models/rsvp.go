package models

import "time"

// RSVPRequest is the consolidated payload posted when a guest confirms or declines
type RSVPRequest struct {
	Status                 InvitationStatus    `json:"status"`
	PhoneNumber            string              `json:"phone_number"`
	GuestUpdates           map[int]GuestUpdate `json:"guest_updates"`
	ExcludedGuests         []int               `json:"excluded_guests"`
	TravelInfo             TravelInfo          `json:"travel_info"`
	AccommodationRequested *bool               `json:"accommodation_requested,omitempty"`
	TransferRequested      *bool               `json:"transfer_requested,omitempty"`
	SessionID              string              `json:"session_id,omitempty"`
}

// GuestUpdate is a sparse override of a guest; nil fields are left untouched
type GuestUpdate struct {
	FirstName           *string `json:"first_name,omitempty"`
	LastName            *string `json:"last_name,omitempty"`
	DietaryRequirements *string `json:"dietary_requirements,omitempty"`
}

// Empty reports whether the update changes nothing
func (u GuestUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.DietaryRequirements == nil
}

// Apply returns g with the override applied
func (u GuestUpdate) Apply(g Guest) Guest {
	if u.FirstName != nil {
		g.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		g.LastName = *u.LastName
	}
	if u.DietaryRequirements != nil {
		g.DietaryRequirements = *u.DietaryRequirements
	}
	return g
}

// RSVPResponse is returned by the backend after a successful submit
type RSVPResponse struct {
	Status  InvitationStatus `json:"status"`
	Message string           `json:"message,omitempty"`
}

// Interaction is a generic analytics event
type Interaction struct {
	SessionID string         `json:"session_id,omitempty"`
	Event     string         `json:"event_type"`
	Details   map[string]any `json:"details,omitempty"`
}

// HeatmapPoint is a single sampled mouse position
type HeatmapPoint struct {
	X         int       `json:"x"`
	Y         int       `json:"y"`
	ViewportW int       `json:"viewport_w"`
	ViewportH int       `json:"viewport_h"`
	At        time.Time `json:"at"`
}

// HeatmapBatch is what the tracker flushes to the backend
type HeatmapBatch struct {
	SessionID string         `json:"session_id,omitempty"`
	Points    []HeatmapPoint `json:"points"`
}
