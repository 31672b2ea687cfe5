package models

// Invitation represents one household invited to the wedding
type Invitation struct {
	ID                     int64            `json:"id"`
	Code                   string           `json:"code"`
	Name                   string           `json:"name"`
	Status                 InvitationStatus `json:"status"`
	Guests                 []Guest          `json:"guests"`
	PhoneNumber            string           `json:"phone_number"`
	AccommodationOffered   bool             `json:"accommodation_offered"`
	AccommodationRequested bool             `json:"accommodation_requested"`
	TransferOffered        bool             `json:"transfer_offered"`
	TransferRequested      bool             `json:"transfer_requested"`
	TravelInfo             TravelInfo       `json:"travel_info"`
	WhatsApp               string           `json:"whatsapp,omitempty"`
}

// Guest represents a person listed on an invitation
type Guest struct {
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name,omitempty"`
	IsChild             bool   `json:"is_child"`
	DietaryRequirements string `json:"dietary_requirements,omitempty"`
}

// FullName joins first and last name
func (g Guest) FullName() string {
	if g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}

// InvitationStatus represents where an invitation is in its lifecycle
type InvitationStatus string

const (
	StatusCreated   InvitationStatus = "created"
	StatusSent      InvitationStatus = "sent"
	StatusRead      InvitationStatus = "read"
	StatusConfirmed InvitationStatus = "confirmed"
	StatusDeclined  InvitationStatus = "declined"
)

// IsAnswered reports whether the guest already replied
func (s InvitationStatus) IsAnswered() bool {
	return s == StatusConfirmed || s == StatusDeclined
}

// Valid reports whether s is one of the known statuses
func (s InvitationStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusSent, StatusRead, StatusConfirmed, StatusDeclined:
		return true
	}
	return false
}

// TravelInfo holds how the guests plan to reach the venue
type TravelInfo struct {
	TransportType   TransportType `json:"transport_type"`
	Schedule        string        `json:"schedule"`
	CarOption       CarOption     `json:"car_option"`
	CarpoolInterest bool          `json:"carpool_interest"`
}

type TransportType string

const (
	TransportNone  TransportType = ""
	TransportFerry TransportType = "traghetto"
	TransportPlane TransportType = "aereo"
)

type CarOption string

const (
	CarNone   CarOption = "none"
	CarOwn    CarOption = "proprio"
	CarRental CarOption = "noleggio"
)

// InvitationInput is the admin payload to create an invitation
type InvitationInput struct {
	Code                 string  `json:"code"`
	Name                 string  `json:"name"`
	PhoneNumber          string  `json:"phone_number,omitempty"`
	Guests               []Guest `json:"guests"`
	AccommodationOffered bool    `json:"accommodation_offered"`
	TransferOffered      bool    `json:"transfer_offered"`
}

// InvitationLink is the public URL material for an invitation
type InvitationLink struct {
	URL   string `json:"url"`
	Code  string `json:"code"`
	Token string `json:"token"`
}
