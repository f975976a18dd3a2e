package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

const dateOfBirthLayout = "02/01/2006"

var errDateOfBirthInFuture = errors.New("date of birth cannot be in the future")

type CreateRegistrationRequest struct {
	FullName    string `json:"full_name"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	Phone       string `json:"phone"`
}

func (req *CreateRegistrationRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.FullName, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Gender, validation.Required, validation.In("male", "female")),
		validation.Field(&req.DateOfBirth, validation.Required, validation.Date(dateOfBirthLayout)),
		validation.Field(&req.Phone, validation.Length(0, 20)),
	)
	if err != nil {
		return err
	}

	dob, err := req.ParsedDateOfBirth()
	if err != nil {
		return err
	}
	if dob.After(time.Now()) {
		return errDateOfBirthInFuture
	}

	return nil
}

func (req *CreateRegistrationRequest) ParsedDateOfBirth() (time.Time, error) {
	return time.Parse(dateOfBirthLayout, req.DateOfBirth)
}
