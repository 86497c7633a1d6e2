package rpc_handlers

import (
	"encoding/json"
	"fmt"

	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc/rpc_types"
)

// Mutation methods must be signed by the admin.

// AddPriceMethod handles the add_price RPC method.
// The observation is stamped with the host clock.
type AddPriceMethod struct{ Contract }

func (m *AddPriceMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Source *uint32       `json:"source,omitempty"`
		Asset  *oracle.Asset `json:"asset"`
		PriceFields
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Asset == nil {
		return nil, rpc_types.RpcErrorMissingField("asset")
	}

	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		price, err := request.resolve(o, env)
		if err != nil {
			return nil, err
		}
		source := sourceOrDefault(request.Source)
		if err := o.AddPrice(env, source, *request.Asset, price); err != nil {
			return nil, err
		}
		latest, _, err := o.LastPriceBySource(env, source, *request.Asset)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"price": latest}, nil
	})
}

type priceEntry struct {
	Source    *uint32       `json:"source,omitempty"`
	Asset     *oracle.Asset `json:"asset"`
	Timestamp *uint64       `json:"timestamp,omitempty"`
	PriceFields
}

// AddPricesMethod handles the add_prices RPC method.
// All entries are appended in one invocation or none are.
type AddPricesMethod struct{ Contract }

func (m *AddPricesMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Prices []priceEntry `json:"prices"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	for i, e := range request.Prices {
		if e.Asset == nil {
			return nil, rpc_types.RpcErrorInvalidParams(fmt.Sprintf("Missing field 'asset' in prices[%d].", i))
		}
	}

	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		entries := make([]oracle.PriceEntry, 0, len(request.Prices))
		for i, e := range request.Prices {
			price, err := e.resolve(o, env)
			if err != nil {
				return nil, fmt.Errorf("prices[%d]: %w", i, err)
			}
			entries = append(entries, oracle.PriceEntry{
				Source:    sourceOrDefault(e.Source),
				Asset:     *e.Asset,
				Price:     price,
				Timestamp: e.Timestamp,
			})
		}
		if err := o.AddPrices(env, entries); err != nil {
			return nil, err
		}
		return map[string]interface{}{"added": len(entries)}, nil
	})
}

// RemovePricesMethod handles the remove_prices RPC method.
// Empty sources or assets select everything; start and end are optional.
type RemovePricesMethod struct{ Contract }

func (m *RemovePricesMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Sources []uint32       `json:"sources"`
		Assets  []oracle.Asset `json:"assets"`
		Start   *uint64        `json:"start,omitempty"`
		End     *uint64        `json:"end,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}

	filter := oracle.PruneFilter{
		Sources: request.Sources,
		Assets:  request.Assets,
		Start:   request.Start,
		End:     request.End,
	}
	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		if err := o.RemovePrices(env, filter); err != nil {
			return nil, err
		}
		return map[string]interface{}{"prune_rule": o.Options().PruneRule.String()}, nil
	})
}
