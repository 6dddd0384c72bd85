package commitment

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/vreid/janken/internal/pkg/game"
)

// MinSaltLen is the minimum accepted salt length in characters. Callers
// validate move and salt shape before invoking Verify; the codec itself
// never fails silently.
const MinSaltLen = 16

const saltEntropyBytes = 16

// Commit binds a hidden move to a published hash. The salt is fresh
// cryptographically random entropy, hex-encoded, and must never be reused
// across matches.
func Commit(move game.Move) (string, string, error) {
	buf := make([]byte, saltEntropyBytes)

	_, err := rand.Read(buf)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}

	salt := hex.EncodeToString(buf)

	return Hash(move, salt), salt, nil
}

// Hash computes the commitment digest: lowercase hex SHA-256 of the UTF-8
// concatenation move || salt, no separator.
func Hash(move game.Move, salt string) string {
	h := sha256.New()
	h.Write([]byte(move))
	h.Write([]byte(salt))

	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the digest for (move, salt) and compares it with the
// published hash.
func Verify(move game.Move, salt string, hash string) bool {
	computed := Hash(move, salt)

	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
