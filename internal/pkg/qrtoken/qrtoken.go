// Package qrtoken encodes and decodes the scannable codes handed to
// attendees. A token is a signed JWT binding a registration ID to the code
// value currently stored on that registration; after a successful
// verification the stored value is regenerated, which invalidates every
// previously issued token for that registration.
package qrtoken

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers malformed payloads and failed integrity checks.
var ErrInvalidToken = errors.New("invalid attendance token")

type Payload struct {
	RegistrationID uint   `json:"rid"`
	Code           string `json:"code"`
	jwt.RegisteredClaims
}

// NewCode mints a fresh opaque code value to store on a registration.
func NewCode() string {
	return uuid.NewString()
}

// Encode signs a scannable token for the registration's current code value.
func Encode(signingKey string, registrationID uint, code string) (string, error) {
	payload := Payload{
		RegistrationID: registrationID,
		Code:           code,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString([]byte(signingKey))
	if err != nil {
		return "", fmt.Errorf("token.SignedString -> %w", err)
	}

	return signed, nil
}

// Decode verifies the signature and returns the embedded payload. The
// caller still has to compare Payload.Code against the registration's
// stored value to reject consumed codes.
func Decode(signingKey, tokenString string) (Payload, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Payload{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return []byte(signingKey), nil
	})
	if err != nil {
		return Payload{}, ErrInvalidToken
	}

	payload, ok := token.Claims.(*Payload)
	if !ok || !token.Valid || payload.RegistrationID == 0 || payload.Code == "" {
		return Payload{}, ErrInvalidToken
	}

	return *payload, nil
}
