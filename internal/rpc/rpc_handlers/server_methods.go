package rpc_handlers

import (
	"encoding/json"
	"time"

	"github.com/usereml/lightecho-stellar-oracle/internal/host"
	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc/rpc_types"
)

// PingMethod handles the ping RPC method
type PingMethod struct{}

func (m *PingMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	// Empty response indicates successful ping
	return map[string]interface{}{}, nil
}

// ServerInfoMethod handles the server_info RPC method
type ServerInfoMethod struct {
	Host    *host.Host
	Version string
	Backend string
	Started time.Time
}

func (m *ServerInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	info := map[string]interface{}{
		"build_version": m.Version,
		"backend":       m.Backend,
		"uptime":        int64(time.Since(m.Started).Seconds()),
		"time":          time.Now().UTC().Format(time.RFC3339),
	}
	if m.Host != nil {
		opts := m.Host.Contract().Options()
		info["namespace"] = m.Host.Namespace()
		info["prune_rule"] = opts.PruneRule.String()
		info["timestamp_policy"] = opts.TimestampPolicy.String()
		info["compress_threshold"] = opts.CompressThreshold
	}
	return map[string]interface{}{"info": info}, nil
}

// AccountSequenceMethod returns the sequence an address must sign its next
// authorized request with
type AccountSequenceMethod struct {
	Host *host.Host
}

func (m *AccountSequenceMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Address oracle.Address `json:"address"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Address == "" {
		return nil, rpc_types.RpcErrorMissingField("address")
	}
	if err := request.Address.Validate(); err != nil {
		return nil, rpc_types.FromError(err)
	}
	if m.Host == nil {
		return nil, rpc_types.RpcErrorInternal("Oracle host not available")
	}

	seq, err := m.Host.NextSequence(ctx.Context, request.Address)
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return map[string]interface{}{"address": request.Address, "sequence": seq}, nil
}
