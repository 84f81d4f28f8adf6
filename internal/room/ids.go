package room

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	codeLength = 6
	codeChars  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// KeyPrefix is prepended to a room code to form its store key.
	KeyPrefix = "room_"
)

// Key returns the store key of a room.
func Key(roomID string) string {
	return KeyPrefix + roomID
}

// NewCode generates a short uppercase alphanumeric room code.
func NewCode() string {
	var sb strings.Builder
	max := big.NewInt(int64(len(codeChars)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			n = big.NewInt(int64(time.Now().UnixNano() % int64(len(codeChars))))
		}
		sb.WriteByte(codeChars[n.Int64()])
	}
	return sb.String()
}

// NormalizeCode trims and upper-cases a code typed by a player.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code has the shape produced by NewCode.
func ValidCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(codeChars, rune(code[i])) {
			return false
		}
	}
	return true
}

// NewParticipantID returns an identifier for one client session.
func NewParticipantID() string {
	return fmt.Sprintf("player_%d_%s", time.Now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
}
