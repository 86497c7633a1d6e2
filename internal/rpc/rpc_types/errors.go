package rpc_types

import (
	"errors"
	"fmt"

	"github.com/usereml/lightecho-stellar-oracle/internal/host"
	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
)

// RpcError represents an RPC error with code and message
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message,omitempty"`
}

func (e RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// Error codes. The universal ones follow JSON-RPC 2.0.
const (
	RpcUNKNOWN          = -1
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	RpcMISSING_COMMAND = 2
	RpcTOO_LARGE       = 3

	// Contract errors
	RpcUNINITIALIZED = 100
	RpcUNAUTHORIZED  = 101
	RpcNON_MONOTONIC = 102
)

// Standard error constructors
func NewRpcError(code int, errorString, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: errorString,
		Message:     message,
	}
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "Unknown method: "+method)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

func RpcErrorJsonInvalid(message string) *RpcError {
	return NewRpcError(RpcPARSE_ERROR, "jsonInvalid", message)
}

func RpcErrorTooLarge(limit int64) *RpcError {
	return NewRpcError(RpcTOO_LARGE, "tooLarge", fmt.Sprintf("Request body exceeds %d bytes", limit))
}

func RpcErrorMissingCommand(message string) *RpcError {
	return NewRpcError(RpcMISSING_COMMAND, "missingCommand", message)
}

// RpcErrorMissingField returns an error for a missing required field
func RpcErrorMissingField(field string) *RpcError {
	return RpcErrorInvalidParams("Missing field '" + field + "'.")
}

// FromError maps a contract or host error to its RPC form
func FromError(err error) *RpcError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, oracle.ErrUninitialized):
		return NewRpcError(RpcUNINITIALIZED, "uninitialized", err.Error())
	case errors.Is(err, oracle.ErrUnauthorized), errors.Is(err, host.ErrBadSignature):
		return NewRpcError(RpcUNAUTHORIZED, "unauthorized", err.Error())
	case errors.Is(err, oracle.ErrInvalidArgument), errors.Is(err, oracle.ErrAlreadyInitialized):
		return RpcErrorInvalidParams(err.Error())
	case errors.Is(err, oracle.ErrNonMonotonicTimestamp):
		return NewRpcError(RpcNON_MONOTONIC, "nonMonotonic", err.Error())
	default:
		return RpcErrorInternal(err.Error())
	}
}
