package rpc_types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usereml/lightecho-stellar-oracle/internal/crypto"
	"github.com/usereml/lightecho-stellar-oracle/internal/host"
	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
)

func TestSigningPayload(t *testing.T) {
	tests := []struct {
		name   string
		params string
		want   string
	}{
		{"empty", ``, "ping\n{}"},
		{"null", `null`, "ping\n{}"},
		{"sorted keys", `{"b":1,"a":"x"}`, "ping\n{\"a\":\"x\",\"b\":1}"},
		{"signers dropped", `{"a":1,"signers":[{"public_key":"AB","signature":"CD"}]}`, "ping\n{\"a\":1}"},
		{"large numbers kept", `{"price":170141183460469231731687303715884105727}`, "ping\n{\"price\":170141183460469231731687303715884105727}"},
		{"nested sorted", `{"p":[{"z":1,"y":2}]}`, "ping\n{\"p\":[{\"y\":2,\"z\":1}]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SigningPayload("ping", json.RawMessage(tt.params))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	_, err := SigningPayload("ping", json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

func TestSignRoundTrip(t *testing.T) {
	kp, err := crypto.GenerateKeyPair(crypto.KeyTypeEd25519, []byte("signer"))
	require.NoError(t, err)
	addr, err := kp.Address()
	require.NoError(t, err)

	params := map[string]interface{}{"asset": "symbol:BTC", "price": "10", "source": 2, SequenceField: 4, ExpirationField: 900}
	require.NoError(t, Sign("add_price", params, kp))

	raw, err := json.Marshal(params)
	require.NoError(t, err)
	auth, err := ExtractAuth(raw)
	require.NoError(t, err)
	require.Len(t, auth.Signers, 1)
	assert.Equal(t, uint64(4), auth.Sequence)
	assert.Equal(t, uint64(900), auth.Expiration)
	signers := auth.Signers

	payload, err := SigningPayload("add_price", raw)
	require.NoError(t, err)
	got, err := signers[0].Verify(payload)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	// the method name is part of the payload
	other, err := SigningPayload("remove_prices", raw)
	require.NoError(t, err)
	_, err = signers[0].Verify(other)
	assert.Error(t, err)

	// the sequence is signed, so it cannot be bumped to replay the request
	params[SequenceField] = 5
	bumped, err := json.Marshal(params)
	require.NoError(t, err)
	bumpedPayload, err := SigningPayload("add_price", bumped)
	require.NoError(t, err)
	_, err = signers[0].Verify(bumpedPayload)
	assert.Error(t, err)

	_, err = ExtractAuth(json.RawMessage(`{"sequence":"one"}`))
	assert.Error(t, err)

	// signing again replaces the previous signers
	require.NoError(t, Sign("add_price", params))
	assert.NotContains(t, params, SignersField)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("base: %w", oracle.ErrUninitialized), "uninitialized"},
		{fmt.Errorf("x: %w", oracle.ErrUnauthorized), "unauthorized"},
		{fmt.Errorf("%w: signer 0", host.ErrBadSignature), "unauthorized"},
		{fmt.Errorf("initialize: %w: %w", oracle.ErrAlreadyInitialized, oracle.ErrUnauthorized), "unauthorized"},
		{fmt.Errorf("%w: bad asset", oracle.ErrInvalidArgument), "invalidParams"},
		{fmt.Errorf("%w: 1 < 2", oracle.ErrNonMonotonicTimestamp), "nonMonotonic"},
		{errors.New("disk on fire"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FromError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ErrorString)
			assert.Equal(t, tt.err.Error(), got.Message)
		})
	}
	assert.Nil(t, FromError(nil))
}
