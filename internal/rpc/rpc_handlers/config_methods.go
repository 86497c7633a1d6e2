package rpc_handlers

import (
	"encoding/json"

	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc/rpc_types"
)

// InitializeMethod handles the initialize RPC method.
// Once an admin is on record the request must be signed by that admin.
type InitializeMethod struct{ Contract }

func (m *InitializeMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Admin      oracle.Address `json:"admin"`
		Base       *oracle.Asset  `json:"base"`
		Decimals   *uint32        `json:"decimals"`
		Resolution *uint32        `json:"resolution"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	switch {
	case request.Admin == "":
		return nil, rpc_types.RpcErrorMissingField("admin")
	case request.Base == nil:
		return nil, rpc_types.RpcErrorMissingField("base")
	case request.Decimals == nil:
		return nil, rpc_types.RpcErrorMissingField("decimals")
	case request.Resolution == nil:
		return nil, rpc_types.RpcErrorMissingField("resolution")
	}

	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		err := o.Initialize(env, request.Admin, *request.Base, *request.Decimals, *request.Resolution)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"admin":      request.Admin,
			"base":       request.Base,
			"decimals":   *request.Decimals,
			"resolution": *request.Resolution,
		}, nil
	})
}

// BaseMethod handles the base RPC method
type BaseMethod struct{ Contract }

func (m *BaseMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		base, err := o.Base(env)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"base": base}, nil
	})
}

// AdminMethod handles the admin and read_admin RPC methods
type AdminMethod struct{ Contract }

func (m *AdminMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		admin, err := o.Admin(env)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"admin": admin}, nil
	})
}

// DecimalsMethod handles the decimals RPC method
type DecimalsMethod struct{ Contract }

func (m *DecimalsMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		decimals, err := o.Decimals(env)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"decimals": decimals}, nil
	})
}

// ResolutionMethod handles the resolution RPC method
type ResolutionMethod struct{ Contract }

func (m *ResolutionMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		resolution, err := o.Resolution(env)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"resolution": resolution}, nil
	})
}

// WriteAdminMethod handles the write_admin RPC method
type WriteAdminMethod struct{ Contract }

func (m *WriteAdminMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Admin oracle.Address `json:"admin"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Admin == "" {
		return nil, rpc_types.RpcErrorMissingField("admin")
	}

	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		if err := o.WriteAdmin(env, request.Admin); err != nil {
			return nil, err
		}
		return map[string]interface{}{"admin": request.Admin}, nil
	})
}

// WriteResolutionMethod handles the write_resolution RPC method
type WriteResolutionMethod struct{ Contract }

func (m *WriteResolutionMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Resolution *uint32 `json:"resolution"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Resolution == nil {
		return nil, rpc_types.RpcErrorMissingField("resolution")
	}

	return m.invoke(ctx, func(o *oracle.Oracle, env *oracle.Env) (interface{}, error) {
		if err := o.WriteResolution(env, *request.Resolution); err != nil {
			return nil, err
		}
		return map[string]interface{}{"resolution": *request.Resolution}, nil
	})
}
