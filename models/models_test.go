package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBookStatus(t *testing.T) {
	tests := map[string]BookStatus{
		"ADDED":       StatusAdded,
		"reading":     StatusReading,
		" COMPLETED ": StatusCompleted,
		"":            StatusNone,
		"ARCHIVED":    StatusNone,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseBookStatus(in), in)
	}
}

func TestUserProfile(t *testing.T) {
	p := (&User{}).Profile()
	assert.Equal(t, NoName, p.Name)
	assert.Equal(t, NoEmail, p.Email)
	assert.Nil(t, p.AvatarURL)

	p = (&User{Name: "Ada", Email: "ada@example.com", AvatarURL: "/api/media/avatars/a.png"}).Profile()
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, "ada@example.com", p.Email)
	if assert.NotNil(t, p.AvatarURL) {
		assert.Equal(t, "/api/media/avatars/a.png", *p.AvatarURL)
	}
}
