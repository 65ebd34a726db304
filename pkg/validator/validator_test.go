package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadInput struct {
	Date         string `validate:"required,isodate"`
	TotalMinutes int    `validate:"min=0,max=1440"`
}

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, v.RegisterValidation("isodate", validateISODate))
	return v
}

func TestISODate(t *testing.T) {
	v := newValidate(t)

	tests := []struct {
		date  string
		valid bool
	}{
		{"2026-10-18", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"18-10-2026", false},
		{"2026-10-18T10:00:00Z", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			err := v.Struct(uploadInput{Date: tt.date, TotalMinutes: 10})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFormatValidationError(t *testing.T) {
	v := newValidate(t)

	err := v.Struct(uploadInput{Date: "", TotalMinutes: 2000})
	require.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "Date is required")
	assert.Contains(t, msg, "Total minutes must be at most 1440")
}
