package rpc_types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/usereml/lightecho-stellar-oracle/internal/crypto"
)

const (
	// SignersField is the params key carrying signatures. It is excluded from the signed payload.
	SignersField = "signers"
	// SequenceField carries the signer's next sequence; each one is accepted once.
	SequenceField = "sequence"
	// ExpirationField optionally bounds the ledger time the signatures are valid for.
	ExpirationField = "expiration"
)

// SigningPayload returns the bytes a caller signs for method with params:
// the method name, a newline and the params object re-encoded with sorted keys
// and without the signers field. Empty params sign as {}.
func SigningPayload(method string, params json.RawMessage) ([]byte, error) {
	obj := map[string]interface{}{}
	if len(bytes.TrimSpace(params)) > 0 && !bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(params))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("params must be a JSON object: %w", err)
		}
	}
	delete(obj, SignersField)

	canonical, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, 0, len(method)+1+len(canonical))
	payload = append(payload, method...)
	payload = append(payload, '\n')
	return append(payload, canonical...), nil
}

// Auth is the authorization part of a request. Sequence and Expiration
// are ordinary params, so they are covered by the signatures.
type Auth struct {
	Signers    []crypto.Signer `json:"signers"`
	Sequence   uint64          `json:"sequence"`
	Expiration uint64          `json:"expiration"`
}

// ExtractAuth reads the optional signers, sequence and expiration from params
func ExtractAuth(params json.RawMessage) (Auth, error) {
	var auth Auth
	if len(bytes.TrimSpace(params)) == 0 {
		return auth, nil
	}
	if err := json.Unmarshal(params, &auth); err != nil {
		return Auth{}, fmt.Errorf("invalid authorization fields: %w", err)
	}
	return auth, nil
}

// Sign adds a signature by every key to params, replacing any signers already present
func Sign(method string, params map[string]interface{}, keys ...*crypto.KeyPair) error {
	delete(params, SignersField)
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	payload, err := SigningPayload(method, raw)
	if err != nil {
		return err
	}
	signers := make([]crypto.Signer, 0, len(keys))
	for _, kp := range keys {
		signers = append(signers, crypto.NewSigner(kp, payload))
	}
	if len(signers) > 0 {
		params[SignersField] = signers
	}
	return nil
}
