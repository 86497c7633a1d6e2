package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/usereml/lightecho-stellar-oracle/internal/host"
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc/rpc_types"
)

// maxBodySize bounds a single JSON-RPC request body
const maxBodySize = 1 << 20

// RequestObserver receives one call per finished request
type RequestObserver interface {
	ObserveRequest(transport, status string)
}

// Info is reported by server_info
type Info struct {
	Version string
	Backend string
}

// Server handles HTTP JSON-RPC requests using XRPL format
type Server struct {
	registry *rpc_types.MethodRegistry
	host     *host.Host
	timeout  time.Duration
	info     Info
	started  time.Time
	log      logrus.FieldLogger
	observer RequestObserver
}

// Option configures a Server
type Option func(*Server)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) { s.log = l }
}

func WithObserver(o RequestObserver) Option {
	return func(s *Server) { s.observer = o }
}

func WithInfo(info Info) Option {
	return func(s *Server) { s.info = info }
}

// NewServer creates a new RPC server over h with the given timeout
func NewServer(h *host.Host, timeout time.Duration, opts ...Option) *Server {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	server := &Server{
		registry: rpc_types.NewMethodRegistry(),
		host:     h,
		timeout:  timeout,
		started:  time.Now(),
		log:      discard,
	}
	for _, opt := range opts {
		opt(server)
	}

	// Register all RPC methods
	server.registerAllMethods()

	return server
}

// Methods lists the registered method names
func (s *Server) Methods() []string {
	return s.registry.List()
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	// Handle preflight requests
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest processes GET requests for parameterless methods like server_info
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		// Default to server_info for GET requests without command
		method = "server_info"
	}

	result, rpcErr := s.execute(r.Context(), "http", getClientIP(r), method, nil)
	s.writeXrplResponse(w, map[string]interface{}{"command": method}, result, rpcErr)
}

// handlePostRequest processes POST requests with an XRPL JSON-RPC payload
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeXrplResponse(w, nil, nil, rpc_types.RpcErrorTooLarge(tooLarge.Limit))
			return
		}
		s.writeXrplResponse(w, nil, nil, rpc_types.RpcErrorInternal("Failed to read request body"))
		return
	}

	var request rpc_types.XrplRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeXrplResponse(w, nil, nil, rpc_types.RpcErrorJsonInvalid("Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeXrplResponse(w, nil, nil, rpc_types.RpcErrorMissingCommand("Missing method field"))
		return
	}

	// XRPL uses params as an array with one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	result, rpcErr := s.execute(r.Context(), "http", getClientIP(r), request.Method, params)

	// Echo the request on errors, without the signatures
	var requestObj interface{}
	if rpcErr != nil {
		reqMap := map[string]interface{}{}
		if params != nil {
			_ = json.Unmarshal(params, &reqMap)
		}
		delete(reqMap, rpc_types.SignersField)
		reqMap["command"] = request.Method
		requestObj = reqMap
	}
	s.writeXrplResponse(w, requestObj, result, rpcErr)
}

// execute runs one method for either transport
func (s *Server) execute(parent context.Context, transport, clientIP, method string, params json.RawMessage) (result interface{}, rpcErr *rpc_types.RpcError) {
	start := time.Now()
	requestID := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{
		"method":     method,
		"request_id": requestID,
		"transport":  transport,
	})
	defer func() {
		status := "success"
		entry := log.WithField("elapsed", time.Since(start))
		if rpcErr != nil {
			status = rpcErr.ErrorString
			entry = entry.WithField("error", rpcErr.ErrorString)
		}
		if s.observer != nil {
			s.observer.ObserveRequest(transport, status)
		}
		entry.Info("rpc request")
	}()

	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, rpc_types.RpcErrorMethodNotFound(method)
	}

	payload, err := rpc_types.SigningPayload(method, params)
	if err != nil {
		return nil, rpc_types.RpcErrorInvalidParams(err.Error())
	}
	auth, err := rpc_types.ExtractAuth(params)
	if err != nil {
		return nil, rpc_types.RpcErrorInvalidParams(err.Error())
	}

	ctx := parent
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, s.timeout)
		defer cancel()
	}

	rpcCtx := &rpc_types.RpcContext{
		Context:   ctx,
		Method:    method,
		RequestID: requestID,
		ClientIP:  clientIP,
		Transport: transport,
		Payload:   payload,
		Auth:      auth,
		Log:       log,
	}
	return handler.Handle(rpcCtx, params)
}

// writeXrplResponse writes an XRPL format JSON-RPC response:
// result.status is "success" or "error"
func (s *Server) writeXrplResponse(w http.ResponseWriter, request interface{}, result interface{}, rpcErr *rpc_types.RpcError) {
	response := map[string]interface{}{"result": resultObject(request, result, rpcErr)}

	responseData, err := json.Marshal(response)
	if err != nil {
		s.log.WithError(err).Error("Failed to marshal response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(responseData)
}

func resultObject(request interface{}, result interface{}, rpcErr *rpc_types.RpcError) map[string]interface{} {
	if rpcErr != nil {
		// XRPL includes error, error_code, error_message inside result
		resultObj := map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if request != nil {
			resultObj["request"] = request
		}
		return resultObj
	}
	if resultMap, ok := result.(map[string]interface{}); ok {
		resultMap["status"] = "success"
		return resultMap
	}
	return map[string]interface{}{
		"status": "success",
		"data":   result,
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
