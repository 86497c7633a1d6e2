// Package host is the execution environment of the oracle contract: it gives
// every invocation transactional storage over a database.DB, a clock and a
// signature based authorizer, and runs invocations one at a time.
package host

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/usereml/lightecho-stellar-oracle/internal/crypto"
	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
)

// DefaultNamespace prefixes the slot keys when no namespace is configured.
const DefaultNamespace = "oracle"

// Observer receives one call per finished invocation.
type Observer interface {
	ObserveInvocation(method, outcome string, elapsed time.Duration)
}

// Invocation describes a single contract call.
type Invocation struct {
	Method string
	// Payload is the byte string the signers signed
	Payload []byte
	Signers []crypto.Signer
	// Sequence must be the next sequence of every principal the call
	// authorizes. Expiration, when set, is the last ledger time the
	// signatures are good for.
	Sequence   uint64
	Expiration uint64
}

// Host serializes invocations against one contract instance.
type Host struct {
	mu       sync.Mutex
	db       database.DB
	contract *oracle.Oracle
	ns       string
	clock    oracle.Clock
	log      logrus.FieldLogger
	observer Observer
}

// Option configures a Host.
type Option func(*Host)

func WithNamespace(ns string) Option {
	return func(h *Host) {
		if ns != "" {
			h.ns = ns
		}
	}
}

func WithClock(c oracle.Clock) Option {
	return func(h *Host) { h.clock = c }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Host) { h.log = l }
}

func WithObserver(o Observer) Option {
	return func(h *Host) { h.observer = o }
}

func New(db database.DB, contract *oracle.Oracle, opts ...Option) *Host {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	h := &Host{
		db:       db,
		contract: contract,
		ns:       DefaultNamespace,
		clock:    SystemClock{},
		log:      discard,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Contract returns the hosted contract.
func (h *Host) Contract() *oracle.Oracle {
	return h.contract
}

// Namespace returns the key prefix of the contract slots.
func (h *Host) Namespace() string {
	return h.ns
}

// Invoke runs fn with a fresh Env. Writes made through the Env are committed
// in one batch when fn succeeds and dropped when it fails.
func (h *Host) Invoke(ctx context.Context, inv Invocation, fn func(env *oracle.Env) (interface{}, error)) (result interface{}, err error) {
	start := time.Now()
	log := h.log.WithField("method", inv.Method)
	defer func() {
		elapsed := time.Since(start)
		outcome := Outcome(err)
		if h.observer != nil {
			h.observer.ObserveInvocation(inv.Method, outcome, elapsed)
		}
		entry := log.WithFields(logrus.Fields{"outcome": outcome, "elapsed": elapsed})
		if err != nil {
			entry.WithError(err).Debug("invocation failed")
		} else {
			entry.Debug("invocation done")
		}
	}()

	auth, err := NewSignatureAuthorizer(inv.Payload, inv.Signers)
	if err != nil {
		return nil, err
	}
	if principals := auth.Principals(); len(principals) > 0 {
		log = log.WithField("signers", principals)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// the caller may have given up while waiting for the lock
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx := newTxn(h.db, h.ns)
	auth.bind(ctx, tx, inv, h.clock.Now())
	env := &oracle.Env{Ctx: ctx, Storage: tx, Clock: h.clock, Auth: auth}
	result, err = fn(env)
	if err != nil {
		return nil, err
	}
	if err := tx.commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// NextSequence returns the sequence principal must sign its next authorized invocation with.
func (h *Host) NextSequence(ctx context.Context, principal oracle.Address) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	seqs, err := loadSequences(ctx, newTxn(h.db, h.ns))
	if err != nil {
		return 0, err
	}
	return seqs[principal] + 1, nil
}

// Outcome labels an invocation result for logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, oracle.ErrUnauthorized), errors.Is(err, ErrBadSignature):
		return "unauthorized"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, oracle.ErrUninitialized):
		return "uninitialized"
	case errors.Is(err, oracle.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, oracle.ErrNonMonotonicTimestamp):
		return "non_monotonic"
	default:
		return "error"
	}
}
