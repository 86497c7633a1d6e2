package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// KeyPair signs invocation payloads.
type KeyPair struct {
	keyType KeyType
	// ed25519 seed or secp256k1 scalar, 32 bytes
	secret []byte
	public []byte
}

// GenerateKeyPair derives a key pair from seed, or from random bytes when seed is nil.
func GenerateKeyPair(keyType KeyType, seed []byte) (*KeyPair, error) {
	if seed == nil {
		seed = make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			return nil, fmt.Errorf("failed to generate random seed: %w", err)
		}
	}
	material := Sha512Half(seed)
	return newKeyPair(keyType, material[:])
}

// KeyPairFromPrivateHex parses a private key as printed by PrivateHex:
// "ED" + 32-byte seed for Ed25519, "00" + 32-byte scalar for secp256k1.
func KeyPairFromPrivateHex(s string) (*KeyPair, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 33 {
		return nil, ErrInvalidPrivateKey
	}
	switch raw[0] {
	case ed25519Prefix:
		return newKeyPair(KeyTypeEd25519, raw[1:])
	case secp256k1Prefix:
		return newKeyPair(KeyTypeSecp256k1, raw[1:])
	default:
		return nil, ErrInvalidPrivateKey
	}
}

func newKeyPair(keyType KeyType, secret []byte) (*KeyPair, error) {
	kp := &KeyPair{keyType: keyType, secret: append([]byte(nil), secret...)}
	switch keyType {
	case KeyTypeEd25519:
		pub := ed25519.NewKeyFromSeed(secret).Public().(ed25519.PublicKey)
		kp.public = append([]byte{ed25519Prefix}, pub...)
	case KeyTypeSecp256k1:
		priv, pub := btcec.PrivKeyFromBytes(secret)
		if priv.Key.IsZero() {
			return nil, ErrInvalidPrivateKey
		}
		kp.public = pub.SerializeCompressed()
	default:
		return nil, ErrUnsupportedKeyType
	}
	return kp, nil
}

// Type returns the signature scheme.
func (k *KeyPair) Type() KeyType {
	return k.keyType
}

// PublicKey returns the 33-byte public key.
func (k *KeyPair) PublicKey() []byte {
	return append([]byte(nil), k.public...)
}

// PublicHex returns the public key as upper-case hex.
func (k *KeyPair) PublicHex() string {
	return strings.ToUpper(hex.EncodeToString(k.public))
}

// PrivateHex returns the prefixed private key as upper-case hex.
func (k *KeyPair) PrivateHex() string {
	prefix := secp256k1Prefix
	if k.keyType == KeyTypeEd25519 {
		prefix = ed25519Prefix
	}
	return strings.ToUpper(hex.EncodeToString(append([]byte{prefix}, k.secret...)))
}

// Address returns the classic address controlled by the key pair.
func (k *KeyPair) Address() (string, error) {
	return AddressFromPublicKey(k.public)
}

// Sign signs message. Ed25519 signs the message itself; secp256k1 signs its
// SHA-512 half with a DER encoded signature.
func (k *KeyPair) Sign(message []byte) []byte {
	if k.keyType == KeyTypeEd25519 {
		return ed25519.Sign(ed25519.NewKeyFromSeed(k.secret), message)
	}
	priv, _ := btcec.PrivKeyFromBytes(k.secret)
	hash := Sha512Half(message)
	return btcecdsa.Sign(priv, hash[:]).Serialize()
}

// Verify checks signature over message against a 33-byte public key.
func Verify(publicKey, message, signature []byte) error {
	switch PublicKeyType(publicKey) {
	case KeyTypeEd25519:
		if !ed25519.Verify(ed25519.PublicKey(publicKey[1:]), message, signature) {
			return ErrInvalidSignature
		}
		return nil
	case KeyTypeSecp256k1:
		pub, err := secp256k1.ParsePubKey(publicKey)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		sig, err := ecdsa.ParseDERSignature(signature)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		hash := Sha512Half(message)
		if !sig.Verify(hash[:], pub) {
			return ErrInvalidSignature
		}
		return nil
	default:
		return ErrInvalidPublicKey
	}
}
