package host

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/usereml/lightecho-stellar-oracle/internal/crypto"
	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
)

var (
	// ErrBadSignature is returned when a supplied signer does not verify.
	ErrBadSignature = errors.New("bad signature")

	// ErrBadSequence is returned when an authorization carries no sequence,
	// or one other than the signer's next sequence.
	ErrBadSequence = errors.New("bad sequence")

	// ErrSignatureExpired is returned when the ledger time is past the invocation's expiration.
	ErrSignatureExpired = errors.New("signature expired")
)

// SignatureAuthorizer authorizes the addresses whose keys signed the invocation payload.
type SignatureAuthorizer struct {
	principals map[oracle.Address]struct{}
	guard      *sequenceGuard
}

// NewSignatureAuthorizer verifies every signer over payload. One bad signer fails the whole set.
func NewSignatureAuthorizer(payload []byte, signers []crypto.Signer) (*SignatureAuthorizer, error) {
	a := &SignatureAuthorizer{principals: make(map[oracle.Address]struct{}, len(signers))}
	for i, s := range signers {
		addr, err := s.Verify(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: signer %d: %v", ErrBadSignature, i, err)
		}
		a.principals[oracle.Address(addr)] = struct{}{}
	}
	return a, nil
}

// bind makes every successful RequireAuth consume the principal's next
// sequence in storage, so the signed payload is accepted at most once.
func (a *SignatureAuthorizer) bind(ctx context.Context, storage oracle.Storage, inv Invocation, now uint64) {
	a.guard = &sequenceGuard{
		ctx:        ctx,
		storage:    storage,
		sequence:   inv.Sequence,
		expiration: inv.Expiration,
		now:        now,
		consumed:   make(map[oracle.Address]bool),
	}
}

func (a *SignatureAuthorizer) RequireAuth(principal oracle.Address) error {
	if _, ok := a.principals[principal]; !ok {
		return fmt.Errorf("%w: %s did not sign", oracle.ErrUnauthorized, principal)
	}
	if a.guard == nil {
		return nil
	}
	return a.guard.consume(principal)
}

// Principals returns the authorized addresses in order.
func (a *SignatureAuthorizer) Principals() []oracle.Address {
	out := make([]oracle.Address, 0, len(a.principals))
	for p := range a.principals {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type sequenceGuard struct {
	ctx        context.Context
	storage    oracle.Storage
	sequence   uint64
	expiration uint64
	now        uint64
	consumed   map[oracle.Address]bool
}

func (g *sequenceGuard) consume(principal oracle.Address) error {
	if g.consumed[principal] {
		return nil
	}
	if g.sequence == 0 {
		return fmt.Errorf("%w: %w: missing sequence", oracle.ErrUnauthorized, ErrBadSequence)
	}
	if g.expiration != 0 && g.now > g.expiration {
		return fmt.Errorf("%w: %w: ledger time %d is past %d", oracle.ErrUnauthorized, ErrSignatureExpired, g.now, g.expiration)
	}

	seqs, err := loadSequences(g.ctx, g.storage)
	if err != nil {
		return err
	}
	if next := seqs[principal] + 1; g.sequence != next {
		return fmt.Errorf("%w: %w: %s expects sequence %d, got %d", oracle.ErrUnauthorized, ErrBadSequence, principal, next, g.sequence)
	}
	seqs[principal] = g.sequence
	data, err := oracle.EncodeSequences(seqs)
	if err != nil {
		return err
	}
	if err := g.storage.Set(g.ctx, oracle.KeySequences, data); err != nil {
		return err
	}
	g.consumed[principal] = true
	return nil
}

// loadSequences reads the last used sequence of every signer; absent means none used.
func loadSequences(ctx context.Context, storage oracle.Storage) (map[oracle.Address]uint64, error) {
	data, ok, err := storage.Get(ctx, oracle.KeySequences)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[oracle.Address]uint64{}, nil
	}
	return oracle.DecodeSequences(data)
}
