package domain

import "time"

type Room struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Gender    Gender    `json:"gender"`
	Capacity  int       `json:"capacity"`
	IsActive  bool      `json:"is_active"`
	Occupancy int       `json:"occupancy"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Ages of current occupants, populated when the allocation engine
	// needs to score the room against a group.
	OccupantAges []int `json:"-"`
}

func (r Room) AvailableSpace() int {
	space := r.Capacity - r.Occupancy
	if space < 0 {
		return 0
	}

	return space
}

// RoomAllocation joins one registration to one room. A registration can
// occupy at most one room at a time.
type RoomAllocation struct {
	ID             uint      `json:"id"`
	RoomID         uint      `json:"room_id"`
	RegistrationID uint      `json:"registration_id"`
	CreatedAt      time.Time `json:"created_at"`
}
