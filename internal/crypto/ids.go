package crypto

import (
	"crypto/sha256"
	"crypto/sha512"

	addresscodec "github.com/Peersyst/xrpl-go/address-codec"
	"github.com/decred/dcrd/crypto/ripemd160"
)

// AccountIDSize is the size of an account ID in bytes.
const AccountIDSize = 20

// CalcAccountID computes RIPEMD160(SHA256(publicKey)). The whole public key,
// prefix included, is hashed regardless of the key type.
func CalcAccountID(publicKey []byte) [AccountIDSize]byte {
	sha256Hash := sha256.Sum256(publicKey)

	ripemd160Hasher := ripemd160.New()
	ripemd160Hasher.Write(sha256Hash[:])

	var result [AccountIDSize]byte
	copy(result[:], ripemd160Hasher.Sum(nil))
	return result
}

// AddressFromPublicKey returns the classic address of a public key.
func AddressFromPublicKey(publicKey []byte) (string, error) {
	if PublicKeyType(publicKey) == KeyTypeUnknown {
		return "", ErrInvalidPublicKey
	}
	id := CalcAccountID(publicKey)
	return addresscodec.EncodeAccountIDToClassicAddress(id[:])
}

// IsValidAddress reports whether s is a well-formed classic address.
func IsValidAddress(s string) bool {
	return addresscodec.IsValidClassicAddress(s)
}

// Sha512Half returns the first 32 bytes of a sha512 hash of msg.
func Sha512Half(msg []byte) [32]byte {
	h := sha512.Sum512(msg)
	var result [32]byte
	copy(result[:], h[:32])
	return result
}
