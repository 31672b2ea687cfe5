package models

// Accommodation is a lodging with rooms that guests can be assigned to
type Accommodation struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Rooms   []Room `json:"rooms"`
}

// Room is a single bookable unit; occupancy is computed by the backend
type Room struct {
	ID               int64           `json:"id,omitempty"`
	RoomNumber       string          `json:"room_number"`
	CapacityAdults   int             `json:"capacity_adults"`
	CapacityChildren int             `json:"capacity_children"`
	OccupiedCount    int             `json:"occupied_count"`
	AssignedGuests   []AssignedGuest `json:"assigned_guests,omitempty"`
}

// AssignedGuest is a guest placed in a room
type AssignedGuest struct {
	InvitationID int64  `json:"invitation_id"`
	Name         string `json:"name"`
	IsChild      bool   `json:"is_child"`
}

// Capacity returns the total number of beds
func (r Room) Capacity() int {
	return r.CapacityAdults + r.CapacityChildren
}

// Free returns the number of unoccupied beds
func (r Room) Free() int {
	free := r.Capacity() - r.OccupiedCount
	if free < 0 {
		return 0
	}
	return free
}

// TotalCapacity sums the beds of every room
func (a Accommodation) TotalCapacity() int {
	total := 0
	for _, r := range a.Rooms {
		total += r.Capacity()
	}
	return total
}

// TotalFree sums the free beds of every room
func (a Accommodation) TotalFree() int {
	total := 0
	for _, r := range a.Rooms {
		total += r.Free()
	}
	return total
}
