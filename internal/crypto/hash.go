package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const HashSize = blake2b.Size256

var ErrInvalidHash = errors.New("invalid hash")

// Hash is a blake2b-256 digest used to identify a reference source text.
type Hash [HashSize]byte

func HashData(data []byte) Hash {
	return blake2b.Sum256(data)
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ParseHash decodes a hex digest, with or without a 0x prefix.
func ParseHash(s string) (Hash, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("%w %q: %w", ErrInvalidHash, s, err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("%w %q: expected %d bytes, got %d", ErrInvalidHash, s, HashSize, len(b))
	}
	return Hash(b), nil
}
