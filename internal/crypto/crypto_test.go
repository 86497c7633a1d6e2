package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFromPublicKey(t *testing.T) {
	// genesis account of the XRP ledger ("masterpassphrase")
	pub, err := hex.DecodeString("0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020")
	require.NoError(t, err)

	addr, err := AddressFromPublicKey(pub)
	require.NoError(t, err)
	assert.Equal(t, "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", addr)
	assert.True(t, IsValidAddress(addr))
	assert.False(t, IsValidAddress("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTi"))

	_, err = AddressFromPublicKey(pub[:20])
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestPublicKeyType(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
		want KeyType
	}{
		{"ed25519", append([]byte{0xED}, make([]byte, 32)...), KeyTypeEd25519},
		{"secp256k1 even", append([]byte{0x02}, make([]byte, 32)...), KeyTypeSecp256k1},
		{"secp256k1 odd", append([]byte{0x03}, make([]byte, 32)...), KeyTypeSecp256k1},
		{"bad prefix", append([]byte{0x04}, make([]byte, 32)...), KeyTypeUnknown},
		{"short", []byte{0xED}, KeyTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicKeyType(tt.key))
		})
	}
}

func TestKeyPairs(t *testing.T) {
	for _, kt := range []KeyType{KeyTypeEd25519, KeyTypeSecp256k1} {
		t.Run(kt.String(), func(t *testing.T) {
			kp, err := GenerateKeyPair(kt, []byte("deterministic seed"))
			require.NoError(t, err)
			assert.Equal(t, kt, kp.Type())
			assert.Equal(t, kt, PublicKeyType(kp.PublicKey()))

			again, err := GenerateKeyPair(kt, []byte("deterministic seed"))
			require.NoError(t, err)
			assert.Equal(t, kp.PublicHex(), again.PublicHex())

			restored, err := KeyPairFromPrivateHex(kp.PrivateHex())
			require.NoError(t, err)
			assert.Equal(t, kp.PublicHex(), restored.PublicHex())

			addr, err := kp.Address()
			require.NoError(t, err)
			assert.True(t, IsValidAddress(addr))

			msg := []byte("add_price\n{}")
			sig := kp.Sign(msg)
			assert.NoError(t, Verify(kp.PublicKey(), msg, sig))
			assert.ErrorIs(t, Verify(kp.PublicKey(), []byte("other"), sig), ErrInvalidSignature)

			signer := NewSigner(kp, msg)
			got, err := signer.Verify(msg)
			require.NoError(t, err)
			assert.Equal(t, addr, got)
		})
	}

	t.Run("random seed", func(t *testing.T) {
		a, err := GenerateKeyPair(KeyTypeEd25519, nil)
		require.NoError(t, err)
		b, err := GenerateKeyPair(KeyTypeEd25519, nil)
		require.NoError(t, err)
		assert.NotEqual(t, a.PublicHex(), b.PublicHex())
	})

	t.Run("bad private key", func(t *testing.T) {
		_, err := KeyPairFromPrivateHex("ZZ")
		assert.ErrorIs(t, err, ErrInvalidPrivateKey)
		_, err = KeyPairFromPrivateHex("01" + hex.EncodeToString(make([]byte, 32)))
		assert.ErrorIs(t, err, ErrInvalidPrivateKey)
	})

	t.Run("unknown key type", func(t *testing.T) {
		_, err := ParseKeyType("rsa")
		assert.ErrorIs(t, err, ErrUnsupportedKeyType)
	})
}

func TestSignerRejectsForeignKey(t *testing.T) {
	alice, err := GenerateKeyPair(KeyTypeEd25519, []byte("alice"))
	require.NoError(t, err)
	bob, err := GenerateKeyPair(KeyTypeSecp256k1, []byte("bob"))
	require.NoError(t, err)

	payload := []byte("payload")
	forged := Signer{PublicKey: bob.PublicHex(), Signature: NewSigner(alice, payload).Signature}
	_, err = forged.Verify(payload)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
