package rpc_types

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/sirupsen/logrus"
)

// RPC Context contains request-specific information
type RpcContext struct {
	Context   context.Context
	Method    string
	RequestID string
	ClientIP  string
	Transport string

	// Payload is the canonical byte string the signers signed
	Payload []byte
	Auth    Auth

	Log logrus.FieldLogger
}

// Method handler interface - all RPC methods implement this
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
}

// MethodFunc adapts a plain function to MethodHandler
type MethodFunc func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)

func (f MethodFunc) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return f(ctx, params)
}

// Method registry for dynamic method registration
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered method names in order
func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// XrplRequest represents a JSON-RPC request
// Format: {"method": "method_name", "params": [{...}]}
type XrplRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// WebSocketResponse represents a WebSocket API response
type WebSocketResponse struct {
	Status       string      `json:"status"`
	Type         string      `json:"type"`
	Result       interface{} `json:"result,omitempty"`
	ID           interface{} `json:"id,omitempty"`
	Error        string      `json:"error,omitempty"`
	ErrorCode    int         `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}
