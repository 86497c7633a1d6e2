package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/usereml/lightecho-stellar-oracle/internal/rpc/rpc_types"
)

const (
	wsMaxMessageSize = 512 * 1024
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 54 * time.Second
	wsWriteWait      = 10 * time.Second
	wsSendBuffer     = 256
)

// ConnectionObserver tracks open WebSocket clients
type ConnectionObserver interface {
	ConnectionOpened()
	ConnectionClosed()
}

// WebSocketServer serves the same methods as Server over WebSocket.
// Messages carry the command and params at the top level:
// {"command": "lastprice", "id": 1, "asset": "symbol:BTC"}
type WebSocketServer struct {
	server           *Server
	upgrader         websocket.Upgrader
	connections      map[string]*WebSocketConnection
	connectionsMutex sync.RWMutex
	observer         ConnectionObserver
}

// WebSocketConnection represents a single WebSocket connection
type WebSocketConnection struct {
	ID          string
	conn        *websocket.Conn
	sendChannel chan []byte
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
}

// NewWebSocketServer creates a WebSocket server dispatching to s
func NewWebSocketServer(s *Server, observer ConnectionObserver) *WebSocketServer {
	return &WebSocketServer{
		server: s,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		connections: make(map[string]*WebSocketConnection),
		observer:    observer,
	}
}

// ServeHTTP handles WebSocket upgrade requests and blocks until the client leaves
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.server.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	wsConn := &WebSocketConnection{
		ID:          uuid.NewString(),
		conn:        conn,
		sendChannel: make(chan []byte, wsSendBuffer),
		ctx:         ctx,
		cancel:      cancel,
	}

	ws.connectionsMutex.Lock()
	ws.connections[wsConn.ID] = wsConn
	ws.connectionsMutex.Unlock()
	if ws.observer != nil {
		ws.observer.ConnectionOpened()
	}

	go ws.handleSend(wsConn)
	ws.handleConnection(wsConn, getClientIP(r))
}

// ConnectionCount returns the number of open connections
func (ws *WebSocketServer) ConnectionCount() int {
	ws.connectionsMutex.RLock()
	defer ws.connectionsMutex.RUnlock()
	return len(ws.connections)
}

// Close disconnects every client
func (ws *WebSocketServer) Close() {
	ws.connectionsMutex.RLock()
	conns := make([]*WebSocketConnection, 0, len(ws.connections))
	for _, c := range ws.connections {
		conns = append(conns, c)
	}
	ws.connectionsMutex.RUnlock()

	for _, c := range conns {
		ws.closeConnection(c)
	}
}

// handleConnection reads messages until the connection fails or closes
func (ws *WebSocketServer) handleConnection(wsConn *WebSocketConnection, clientIP string) {
	defer ws.closeConnection(wsConn)

	wsConn.conn.SetReadLimit(wsMaxMessageSize)
	wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	wsConn.conn.SetPongHandler(func(string) error {
		return wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, message, err := wsConn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				ws.server.log.WithError(err).Debug("WebSocket read failed")
			}
			return
		}
		ws.handleMessage(wsConn, clientIP, message)
	}
}

// handleSend writes queued messages and keeps the connection alive with pings
func (ws *WebSocketServer) handleSend(wsConn *WebSocketConnection) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-wsConn.ctx.Done():
			return
		case <-ticker.C:
			wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ws.closeConnection(wsConn)
				return
			}
		case message := <-wsConn.sendChannel:
			wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				ws.server.log.WithError(err).Debug("WebSocket send failed")
				ws.closeConnection(wsConn)
				return
			}
		}
	}
}

// handleMessage processes a single message from WebSocket
func (ws *WebSocketServer) handleMessage(wsConn *WebSocketConnection, clientIP string, message []byte) {
	var cmdMap map[string]json.RawMessage
	if err := json.Unmarshal(message, &cmdMap); err != nil {
		ws.sendError(wsConn, rpc_types.RpcErrorJsonInvalid("Invalid JSON: "+err.Error()), nil)
		return
	}

	var id interface{}
	if raw, exists := cmdMap["id"]; exists {
		_ = json.Unmarshal(raw, &id)
	}

	var command string
	if raw, exists := cmdMap["command"]; exists {
		_ = json.Unmarshal(raw, &command)
	}
	if command == "" {
		ws.sendError(wsConn, rpc_types.RpcErrorMissingCommand("Missing command field"), id)
		return
	}

	// The remaining fields are the params
	delete(cmdMap, "command")
	delete(cmdMap, "id")
	var params json.RawMessage
	if len(cmdMap) > 0 {
		params, _ = json.Marshal(cmdMap)
	}

	result, rpcErr := ws.server.execute(wsConn.ctx, "websocket", clientIP, command, params)
	if rpcErr != nil {
		ws.sendError(wsConn, rpcErr, id)
		return
	}
	ws.sendResponse(wsConn, rpc_types.WebSocketResponse{
		Type:   "response",
		ID:     id,
		Status: "success",
		Result: result,
	})
}

// sendResponse queues a WebSocket response
func (ws *WebSocketServer) sendResponse(wsConn *WebSocketConnection, response rpc_types.WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		ws.server.log.WithError(err).Error("Failed to marshal WebSocket response")
		return
	}

	select {
	case wsConn.sendChannel <- data:
	case <-wsConn.ctx.Done():
	default:
		ws.server.log.WithField("connection", wsConn.ID).Warn("WebSocket send channel full, closing connection")
		ws.closeConnection(wsConn)
	}
}

// sendError sends an error response with flat error fields (XRPL format)
func (ws *WebSocketServer) sendError(wsConn *WebSocketConnection, rpcErr *rpc_types.RpcError, id interface{}) {
	ws.sendResponse(wsConn, rpc_types.WebSocketResponse{
		Type:         "response",
		ID:           id,
		Status:       "error",
		Error:        rpcErr.ErrorString,
		ErrorCode:    rpcErr.Code,
		ErrorMessage: rpcErr.Message,
	})
}

// closeConnection unregisters and closes a connection once
func (ws *WebSocketServer) closeConnection(wsConn *WebSocketConnection) {
	wsConn.closeOnce.Do(func() {
		wsConn.cancel()
		wsConn.conn.Close()

		ws.connectionsMutex.Lock()
		delete(ws.connections, wsConn.ID)
		ws.connectionsMutex.Unlock()
		if ws.observer != nil {
			ws.observer.ConnectionClosed()
		}
	})
}
