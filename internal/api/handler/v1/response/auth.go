package response

import "github.com/vietanh2810/campmeet-api/internal/domain"

type SignupResponse struct {
	User domain.User `json:"user"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}
