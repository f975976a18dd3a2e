package domain

import "time"

type Platoon struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Label       string    `json:"label,omitempty"`
	LeaderName  string    `json:"leader_name,omitempty"`
	LeaderPhone string    `json:"leader_phone,omitempty"`
	Capacity    int       `json:"capacity"`
	Occupancy   int       `json:"occupancy"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Platoon) AvailableSpace() int {
	space := p.Capacity - p.Occupancy
	if space < 0 {
		return 0
	}

	return space
}

// PlatoonParticipant joins one registration to one platoon, mirroring
// RoomAllocation but without any compatibility constraint.
type PlatoonParticipant struct {
	ID             uint      `json:"id"`
	PlatoonID      uint      `json:"platoon_id"`
	RegistrationID uint      `json:"registration_id"`
	CreatedAt      time.Time `json:"created_at"`
}
