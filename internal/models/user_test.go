package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile_StripsHash(t *testing.T) {
	u := User{
		ID:           7,
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		MobileNumber: "+15550001",
		AvatarURL:    "https://cdn.example.com/jane.png",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now(),
	}

	p := u.Profile()
	assert.Equal(t, Profile{
		ID:           7,
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		MobileNumber: "+15550001",
		AvatarURL:    "https://cdn.example.com/jane.png",
	}, p)

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "$2a$10$hash")
}

func TestProfileFullName(t *testing.T) {
	assert.Equal(t, "Jane Doe", Profile{FirstName: "Jane", LastName: "Doe"}.FullName())
	assert.Equal(t, "Jane", Profile{FirstName: "Jane"}.FullName())
	assert.Equal(t, "Doe", Profile{LastName: "Doe"}.FullName())
}
