package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() CreateRegistrationRequest {
	return CreateRegistrationRequest{
		FullName:    "Dana Levi",
		Gender:      "female",
		DateOfBirth: "15/06/2012",
		Phone:       "+33612345678",
	}
}

func TestCreateRegistrationRequestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := validRegistration()
		assert.NoError(t, req.Validate())
	})

	t.Run("unknown gender", func(t *testing.T) {
		req := validRegistration()
		req.Gender = "unspecified"
		assert.Error(t, req.Validate())
	})

	t.Run("bad date format", func(t *testing.T) {
		req := validRegistration()
		req.DateOfBirth = "2012-06-15"
		assert.Error(t, req.Validate())
	})

	t.Run("future date of birth", func(t *testing.T) {
		req := validRegistration()
		req.DateOfBirth = time.Now().AddDate(1, 0, 0).Format(dateOfBirthLayout)
		assert.ErrorIs(t, req.Validate(), errDateOfBirthInFuture)
	})

	t.Run("missing name", func(t *testing.T) {
		req := validRegistration()
		req.FullName = ""
		assert.Error(t, req.Validate())
	})
}

func TestParsedDateOfBirth(t *testing.T) {
	req := validRegistration()

	dob, err := req.ParsedDateOfBirth()
	require.NoError(t, err)
	assert.Equal(t, 2012, dob.Year())
	assert.Equal(t, time.June, dob.Month())
	assert.Equal(t, 15, dob.Day())
}
