package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreatePlatoonRequest struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	LeaderName  string `json:"leader_name"`
	LeaderPhone string `json:"leader_phone"`
	Capacity    int    `json:"capacity"`
}

func (req *CreatePlatoonRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Label, validation.Length(0, 100)),
		validation.Field(&req.LeaderName, validation.Length(0, 100)),
		validation.Field(&req.LeaderPhone, validation.Length(0, 20)),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1), validation.Max(1000)),
	)
}

type UpdatePlatoonRequest struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	LeaderName  string `json:"leader_name"`
	LeaderPhone string `json:"leader_phone"`
	Capacity    int    `json:"capacity"`
}

func (req *UpdatePlatoonRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Label, validation.Length(0, 100)),
		validation.Field(&req.LeaderName, validation.Length(0, 100)),
		validation.Field(&req.LeaderPhone, validation.Length(0, 20)),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1), validation.Max(1000)),
	)
}
