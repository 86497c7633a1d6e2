// Package crypto provides the key pairs, signatures and account addresses used
// to authorize oracle invocations.
package crypto

import (
	"fmt"
	"strings"
)

// KeyType represents the signature scheme of a key pair.
type KeyType int

const (
	// KeyTypeUnknown indicates an unknown or invalid key type.
	KeyTypeUnknown KeyType = iota
	// KeyTypeSecp256k1 indicates a secp256k1 (ECDSA) key.
	KeyTypeSecp256k1
	// KeyTypeEd25519 indicates an Ed25519 key.
	KeyTypeEd25519
)

const (
	ed25519Prefix   byte = 0xED
	secp256k1Prefix byte = 0x00

	// PublicKeySize is the size of a prefixed Ed25519 or compressed secp256k1 public key.
	PublicKeySize = 33
)

// String returns the string representation of the key type.
func (kt KeyType) String() string {
	switch kt {
	case KeyTypeSecp256k1:
		return "secp256k1"
	case KeyTypeEd25519:
		return "ed25519"
	default:
		return "unknown"
	}
}

// ParseKeyType maps "ed25519" or "secp256k1" to a KeyType.
func ParseKeyType(s string) (KeyType, error) {
	switch strings.ToLower(s) {
	case "ed25519":
		return KeyTypeEd25519, nil
	case "secp256k1":
		return KeyTypeSecp256k1, nil
	default:
		return KeyTypeUnknown, fmt.Errorf("%w: %q", ErrUnsupportedKeyType, s)
	}
}

// PublicKeyType determines the key type from a public key's raw bytes.
//
// Public key formats:
//   - Ed25519: 33 bytes, first byte is 0xED
//   - secp256k1: 33 bytes, first byte is 0x02 or 0x03 (compressed format)
func PublicKeyType(pubKey []byte) KeyType {
	if len(pubKey) != PublicKeySize {
		return KeyTypeUnknown
	}

	switch pubKey[0] {
	case ed25519Prefix:
		return KeyTypeEd25519
	case 0x02, 0x03:
		return KeyTypeSecp256k1
	default:
		return KeyTypeUnknown
	}
}
