package usecase

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// DefaultScopePrefix prefixes every client scope in shared storage.
const DefaultScopePrefix = "lms:client:"

// ScopeFor derives the storage scope of a client. The client id itself never
// becomes a storage key, so a storage dump does not reveal live cookie values.
func ScopeFor(prefix, clientID string) string {
	if prefix == "" {
		prefix = DefaultScopePrefix
	}
	sum := blake2b.Sum256([]byte(clientID))
	return prefix + hex.EncodeToString(sum[:])
}
