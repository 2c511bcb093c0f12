package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/bookreflect/backend/apperr"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=ADDED READING"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(signup{Email: "a@b.co", Password: "secret"}))

	err := v.Validate(signup{Email: "nope", Password: "123", Status: "LOST"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	appErr := apperr.From(err)
	assert.Equal(t, map[string]string{
		"email":    "must be a valid email address",
		"password": "must be at least 6 characters",
		"status":   "must be one of: ADDED READING",
	}, appErr.Details)

	err = v.Validate(signup{})
	assert.Equal(t, map[string]string{
		"email":    "is required",
		"password": "is required",
	}, apperr.From(err).Details)
}
