package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationAge(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		dob  time.Time
		want int
	}{
		{"birthday passed this year", time.Date(2010, 3, 1, 0, 0, 0, 0, time.UTC), 16},
		{"birthday later this year", time.Date(2010, 9, 1, 0, 0, 0, 0, time.UTC), 15},
		{"birthday today", time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC), 16},
		{"future date clamps to zero", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := Registration{DateOfBirth: tt.dob}
			assert.Equal(t, tt.want, reg.Age(now))
		})
	}
}

func TestRegistrationAllocatable(t *testing.T) {
	assert.True(t, Registration{Gender: GenderMale}.Allocatable())
	assert.True(t, Registration{Gender: GenderFemale}.Allocatable())
	assert.False(t, Registration{Gender: "other"}.Allocatable())
	assert.False(t, Registration{}.Allocatable())
}
