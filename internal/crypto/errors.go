package crypto

import "errors"

var (
	// ErrUnsupportedKeyType is returned when an unsupported key type is requested.
	ErrUnsupportedKeyType = errors.New("unsupported key type")
	// ErrInvalidPrivateKey is returned for a malformed private key.
	ErrInvalidPrivateKey = errors.New("invalid private key format")
	// ErrInvalidPublicKey is returned for a malformed public key.
	ErrInvalidPublicKey = errors.New("invalid public key format")
	// ErrInvalidSignature is returned when a signature does not verify.
	ErrInvalidSignature = errors.New("invalid signature")
)
