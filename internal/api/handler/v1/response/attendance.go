package response

import "github.com/vietanh2810/campmeet-api/internal/domain"

type CheckResponse struct {
	Action       domain.AttendanceAction `json:"action"`
	Registration domain.Registration     `json:"registration"`
	Room         *domain.Room            `json:"room,omitempty"`
	Platoon      *domain.Platoon         `json:"platoon,omitempty"`
}

type VerifyResponse struct {
	Message      string              `json:"message"`
	Registration domain.Registration `json:"registration"`
}

type QRCodeResponse struct {
	RegistrationID uint   `json:"registration_id"`
	Token          string `json:"token"`
}
