package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateRoomRequest struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Capacity int    `json:"capacity"`
}

func (req *CreateRoomRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Gender, validation.Required, validation.In("male", "female")),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1), validation.Max(1000)),
	)
}

type UpdateRoomRequest struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Capacity int    `json:"capacity"`
	IsActive *bool  `json:"is_active"`
}

func (req *UpdateRoomRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Gender, validation.Required, validation.In("male", "female")),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1), validation.Max(1000)),
	)
}
