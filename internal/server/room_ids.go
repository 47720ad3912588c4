package server

import (
	"errors"
	"math/rand"
	"strings"
)

const roomIDLength = 6

const roomIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateRoomID draws a 6-character uppercase base-36 id, retrying until it
// misses every id in use. The id space is large enough that the retry loop
// converges immediately in practice.
func GenerateRoomID(inUse map[string]bool) string {
	for {
		id := make([]byte, roomIDLength)
		for i := range id {
			id[i] = roomIDAlphabet[rand.Intn(len(roomIDAlphabet))]
		}
		roomID := string(id)

		if !inUse[roomID] {
			return roomID
		}
	}
}

func ValidateRoomID(id string) error {
	if len(id) != roomIDLength {
		return errors.New("Room id must be exactly 6 characters")
	}

	id = strings.ToUpper(id)
	for _, ch := range id {
		if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
			return errors.New("Room id must contain only letters and digits")
		}
	}

	return nil
}

func NormalizeRoomID(id string) string {
	return strings.ToUpper(id)
}
