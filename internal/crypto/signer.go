package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Signer is a hex encoded public key and its signature over a payload, as
// carried in request params.
type Signer struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// NewSigner signs payload with kp.
func NewSigner(kp *KeyPair, payload []byte) Signer {
	return Signer{
		PublicKey: kp.PublicHex(),
		Signature: strings.ToUpper(hex.EncodeToString(kp.Sign(payload))),
	}
}

// Verify checks the signature over payload and returns the signer's address.
func (s Signer) Verify(payload []byte) (string, error) {
	pub, err := hex.DecodeString(s.PublicKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	sig, err := hex.DecodeString(s.Signature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if err := Verify(pub, payload, sig); err != nil {
		return "", err
	}
	return AddressFromPublicKey(pub)
}
