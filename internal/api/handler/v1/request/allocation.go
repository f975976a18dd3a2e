package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type AllocateRoomsRequest struct {
	RegistrationIDs []uint `json:"registration_ids"`
	RoomIDs         []uint `json:"room_ids"`
}

func (req *AllocateRoomsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RegistrationIDs, validation.Required, validation.Length(1, 0)),
		validation.Field(&req.RoomIDs, validation.Required, validation.Length(1, 0)),
	)
}

type AllocatePlatoonsRequest struct {
	RegistrationIDs []uint `json:"registration_ids"`
	PlatoonIDs      []uint `json:"platoon_ids"`
}

func (req *AllocatePlatoonsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RegistrationIDs, validation.Required, validation.Length(1, 0)),
		validation.Field(&req.PlatoonIDs, validation.Required, validation.Length(1, 0)),
	)
}
