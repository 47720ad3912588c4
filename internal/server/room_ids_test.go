package server_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cardbattle-server/internal/server"
)

func TestGenerateRoomIDFormat(t *testing.T) {
	assert := assert.New(t)
	inUse := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id := server.GenerateRoomID(inUse)

		assert.Equal(6, len(id))

		for _, ch := range id {
			assert.True((ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9'))
		}
	}
}

func TestGenerateRoomIDUniqueness(t *testing.T) {
	inUse := make(map[string]bool)
	generated := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := server.GenerateRoomID(inUse)

		assert.False(t, generated[id], "Id %s was generated twice", id)

		generated[id] = true
		inUse[id] = true
	}

	assert.Equal(t, 1000, len(generated))
}

func TestGenerateRoomIDAvoidsLiveIDs(t *testing.T) {
	inUse := map[string]bool{
		"AAAAAA": true,
		"ZZZZZZ": true,
		"TEST01": true,
	}

	for i := 0; i < 100; i++ {
		id := server.GenerateRoomID(inUse)

		assert.NotEqual(t, "AAAAAA", id)
		assert.NotEqual(t, "ZZZZZZ", id)
		assert.NotEqual(t, "TEST01", id)
	}
}

func TestValidateRoomIDValidIDs(t *testing.T) {
	validIDs := []string{"ABCDEF", "A1B2C3", "000000", "ZZZZZZ", "9XYZ01"}

	for _, id := range validIDs {
		err := server.ValidateRoomID(id)
		assert.NoError(t, err, "Id %s should be valid", id)
	}
}

func TestValidateRoomIDInvalidLength(t *testing.T) {
	invalidIDs := []string{"", "A", "ABC", "ABCDE", "ABCDEFG"}

	for _, id := range invalidIDs {
		err := server.ValidateRoomID(id)
		assert.Error(t, err, "Id %s should be invalid (wrong length)", id)
		assert.Contains(t, err.Error(), "exactly 6 characters")
	}
}

func TestValidateRoomIDInvalidCharacters(t *testing.T) {
	invalidIDs := []string{
		"ABC-EF", // special chars
		"AB CDE", // space
		"ABC!EF", // special chars
		"ＡＢＣＤＥＦ", // full-width characters
	}

	for _, id := range invalidIDs {
		err := server.ValidateRoomID(id)
		assert.Error(t, err, "Id %s should be invalid (bad characters)", id)
	}
}

func TestNormalizeRoomID(t *testing.T) {
	assert.Equal(t, "ABC123", server.NormalizeRoomID("abc123"))
	assert.Equal(t, "ABC123", server.NormalizeRoomID("ABC123"))
}
