package rpc_handlers

import (
	"encoding/json"

	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc/rpc_types"
)

// Query methods never need signers. The *_by_source variants take a source
// and the plain variants pin it to the default source.

// AssetsMethod handles the assets RPC method
type AssetsMethod struct{ Contract }

func (m *AssetsMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		assets, err := o.Assets(env)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"assets": assets}, nil
	})
}

// SourcesMethod handles the sources RPC method
type SourcesMethod struct{ Contract }

func (m *SourcesMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		sources, err := o.Sources(env)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"sources": sources}, nil
	})
}

type assetRequest struct {
	Source *uint32       `json:"source,omitempty"`
	Asset  *oracle.Asset `json:"asset"`
}

func (r *assetRequest) check(bySource bool) *rpc_types.RpcError {
	if bySource && r.Source == nil {
		return rpc_types.RpcErrorMissingField("source")
	}
	if !bySource && r.Source != nil {
		return rpc_types.RpcErrorInvalidParams("Field 'source' is only accepted by the *_by_source methods.")
	}
	if r.Asset == nil {
		return rpc_types.RpcErrorMissingField("asset")
	}
	return nil
}

// PricesMethod handles the prices and prices_by_source RPC methods
type PricesMethod struct {
	Contract
	BySource bool
}

func (m *PricesMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		assetRequest
		Start *uint64 `json:"start"`
		End   *uint64 `json:"end"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := request.check(m.BySource); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Start == nil {
		return nil, rpc_types.RpcErrorMissingField("start")
	}
	if request.End == nil {
		return nil, rpc_types.RpcErrorMissingField("end")
	}

	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		prices, err := o.PricesBySource(env, sourceOrDefault(request.Source), *request.Asset, *request.Start, *request.End)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"prices": prices}, nil
	})
}

// LastPricesMethod handles the lastprices and lastprices_by_source RPC methods
type LastPricesMethod struct {
	Contract
	BySource bool
}

func (m *LastPricesMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		assetRequest
		N *uint32 `json:"n"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := request.check(m.BySource); rpcErr != nil {
		return nil, rpcErr
	}
	if request.N == nil {
		return nil, rpc_types.RpcErrorMissingField("n")
	}

	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		prices, err := o.LastPricesBySource(env, sourceOrDefault(request.Source), *request.Asset, *request.N)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"prices": prices}, nil
	})
}

// LastPriceMethod handles the lastprice and lastprice_by_source RPC methods
type LastPriceMethod struct {
	Contract
	BySource bool
}

func (m *LastPriceMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request assetRequest
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := request.check(m.BySource); rpcErr != nil {
		return nil, rpcErr
	}

	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		price, found, err := o.LastPriceBySource(env, sourceOrDefault(request.Source), *request.Asset)
		if err != nil {
			return nil, err
		}
		return optional("price", price, found), nil
	})
}

// PriceMethod handles the price and price_by_source RPC methods
type PriceMethod struct {
	Contract
	BySource bool
}

func (m *PriceMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		assetRequest
		Timestamp *uint64 `json:"timestamp"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := request.check(m.BySource); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Timestamp == nil {
		return nil, rpc_types.RpcErrorMissingField("timestamp")
	}

	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		price, found, err := o.PriceBySource(env, sourceOrDefault(request.Source), *request.Asset, *request.Timestamp)
		if err != nil {
			return nil, err
		}
		return optional("price", price, found), nil
	})
}

// LastPricesBySourceAndAssetsMethod handles the lastprices_by_source_and_assets RPC method
type LastPricesBySourceAndAssetsMethod struct{ Contract }

func (m *LastPricesBySourceAndAssetsMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Source *uint32        `json:"source"`
		Assets []oracle.Asset `json:"assets"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Source == nil {
		return nil, rpc_types.RpcErrorMissingField("source")
	}

	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		prices, err := o.LastPricesBySourceAndAssets(env, *request.Source, request.Assets)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"prices": prices}, nil
	})
}
