package rpc_handlers

import (
	"encoding/json"
	"fmt"

	"github.com/usereml/lightecho-stellar-oracle/internal/host"
	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc/rpc_types"
)

// Contract is embedded by every method that invokes the hosted oracle
type Contract struct {
	Host *host.Host
}

// invoke runs fn as one host invocation carrying the request's signers
func (c *Contract) invoke(ctx *rpc_types.RpcContext, fn func(o *oracle.Oracle, env *oracle.Env) (interface{}, error)) (interface{}, *rpc_types.RpcError) {
	if c.Host == nil {
		return nil, rpc_types.RpcErrorInternal("Oracle host not available")
	}
	o := c.Host.Contract()
	inv := host.Invocation{
		Method:     ctx.Method,
		Payload:    ctx.Payload,
		Signers:    ctx.Auth.Signers,
		Sequence:   ctx.Auth.Sequence,
		Expiration: ctx.Auth.Expiration,
	}
	result, err := c.Host.Invoke(ctx.Context, inv, func(env *oracle.Env) (interface{}, error) {
		return fn(o, env)
	})
	if err != nil {
		return nil, rpc_types.FromError(err)
	}
	return result, nil
}

// parseParams unmarshals params into request; absent params leave it zero
func parseParams(params json.RawMessage, request interface{}) *rpc_types.RpcError {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, request); err != nil {
		return rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

// PriceFields is a price given as integer units or as a decimal scaled by the configured decimals
type PriceFields struct {
	Price        *oracle.Int128 `json:"price,omitempty"`
	PriceDecimal string         `json:"price_decimal,omitempty"`
}

func (p PriceFields) resolve(o *oracle.Oracle, env *oracle.Env) (oracle.Int128, error) {
	switch {
	case p.Price != nil && p.PriceDecimal != "":
		return oracle.Int128{}, invalidArgument("give either price or price_decimal, not both")
	case p.Price != nil:
		return *p.Price, nil
	case p.PriceDecimal != "":
		decimals, err := o.Decimals(env)
		if err != nil {
			return oracle.Int128{}, err
		}
		return oracle.ParsePrice(p.PriceDecimal, decimals)
	default:
		return oracle.Int128{}, invalidArgument("missing field 'price'")
	}
}

func invalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", oracle.ErrInvalidArgument, msg)
}

// optional renders a lookup that may find nothing
func optional(key string, v oracle.PriceData, found bool) map[string]interface{} {
	if !found {
		return map[string]interface{}{key: nil, "found": false}
	}
	return map[string]interface{}{key: v, "found": true}
}

func sourceOrDefault(source *uint32) uint32 {
	if source == nil {
		return oracle.DefaultSource
	}
	return *source
}
