package oracle

import "context"

//go:generate mockgen -source=env.go -destination=mock_env_test.go -package=oracle

// Storage is the durable keyed storage of one contract instance.
// Get reports ok=false for a slot that was never written.
type Storage interface {
	Get(ctx context.Context, key DataKey) ([]byte, bool, error)
	Set(ctx context.Context, key DataKey, value []byte) error
}

// Clock returns the current ledger time in seconds.
type Clock interface {
	Now() uint64
}

// Authorizer decides whether principal authorized the current invocation.
type Authorizer interface {
	RequireAuth(principal Address) error
}

// Env carries the collaborators of a single invocation.
type Env struct {
	Ctx     context.Context
	Storage Storage
	Clock   Clock
	Auth    Authorizer
}

func (e *Env) ctx() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}
