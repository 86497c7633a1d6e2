package rpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc/rpc_types"
)

func TestClient(t *testing.T) {
	ts := newTestServer(t, oracle.DefaultOptions())
	ts.initialize(t)
	ctx := context.Background()

	anon := NewClient(ts.http.URL)
	_, err := anon.Call(ctx, "add_price", map[string]interface{}{"asset": "symbol:BTC", "price": "5"})
	var rpcErr *rpc_types.RpcError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, "unauthorized", rpcErr.ErrorString)
	assert.Equal(t, rpc_types.RpcUNAUTHORIZED, rpcErr.Code)

	admin := NewClient(ts.http.URL, ts.admin)
	_, err = admin.Call(ctx, "add_price", map[string]interface{}{"asset": "symbol:BTC", "price": "5"})
	require.NoError(t, err)

	result, err := anon.Call(ctx, "lastprice", map[string]interface{}{"asset": "symbol:BTC"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"price": "5", "timestamp": float64(100)}, result["price"])

	seq, err := admin.NextSequence(ctx, ts.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)

	// a stale explicit sequence is refused
	_, err = admin.Call(ctx, "add_price", map[string]interface{}{"asset": "symbol:BTC", "price": "6", "sequence": 1})
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, "unauthorized", rpcErr.ErrorString)
}
