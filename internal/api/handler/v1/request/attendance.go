package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CheckRequest struct {
	Token       string `json:"token"`
	ScannerName string `json:"scanner_name"`
}

func (req *CheckRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Token, validation.Required),
		validation.Field(&req.ScannerName, validation.Length(0, 100)),
	)
}

type VerifyRequest struct {
	Token    string `json:"token"`
	Method   string `json:"method"`
	Device   string `json:"device"`
	Operator string `json:"operator"`
}

func (req *VerifyRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Token, validation.Required),
		validation.Field(&req.Method, validation.In("qr_scan", "manual")),
		validation.Field(&req.Device, validation.Length(0, 100)),
		validation.Field(&req.Operator, validation.Length(0, 100)),
	)
}

type UnverifyRequest struct {
	Token string `json:"token"`
}

func (req *UnverifyRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Token, validation.Required),
	)
}
