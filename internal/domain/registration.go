package domain

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// AttendanceAction tells a scanner what the next sensible action is for a
// presented code.
type AttendanceAction string

const (
	ActionVerifyReady     AttendanceAction = "verify_ready"
	ActionUnverifyReady   AttendanceAction = "unverify_ready"
	ActionUnverifyBlocked AttendanceAction = "unverify_blocked"
)

type Registration struct {
	ID                   uint       `json:"id"`
	FullName             string     `json:"full_name"`
	Gender               Gender     `json:"gender"`
	DateOfBirth          time.Time  `json:"date_of_birth"`
	Phone                string     `json:"phone,omitempty"`
	IsVerified           bool       `json:"is_verified"`
	VerifiedAt           *time.Time `json:"verified_at,omitempty"`
	VerificationMethod   string     `json:"verification_method,omitempty"`
	VerificationDevice   string     `json:"verification_device,omitempty"`
	VerificationOperator string     `json:"verification_operator,omitempty"`
	QRCode               string     `json:"-"`
	RoomID               *uint      `json:"room_id,omitempty"`
	RoomName             string     `json:"room_name,omitempty"`
	PlatoonID            *uint      `json:"platoon_id,omitempty"`
	PlatoonName          string     `json:"platoon_name,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Age in whole years at the given moment.
func (r Registration) Age(now time.Time) int {
	age := now.Year() - r.DateOfBirth.Year()
	if now.YearDay() < r.DateOfBirth.YearDay() {
		age--
	}
	if age < 0 {
		age = 0
	}

	return age
}

// Allocatable reports whether the registration may be placed in a
// gender-segregated container at all.
func (r Registration) Allocatable() bool {
	return r.Gender == GenderMale || r.Gender == GenderFemale
}
