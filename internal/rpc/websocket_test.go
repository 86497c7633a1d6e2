package rpc

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc/rpc_types"
)

type gaugeObserver struct {
	mu   sync.Mutex
	open int
}

func (g *gaugeObserver) ConnectionOpened() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open++
}

func (g *gaugeObserver) ConnectionClosed() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open--
}

func (g *gaugeObserver) current() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

func dialWebSocket(t *testing.T, ts *testServer, observer ConnectionObserver) (*websocket.Conn, *WebSocketServer) {
	t.Helper()
	wsServer := NewWebSocketServer(ts.rpc, observer)
	srv := httptest.NewServer(wsServer)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, wsServer
}

func exchange(t *testing.T, conn *websocket.Conn, msg map[string]interface{}) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.WriteJSON(msg))
	var response map[string]interface{}
	require.NoError(t, conn.ReadJSON(&response))
	return response
}

func TestWebSocketCommands(t *testing.T) {
	ts := newTestServer(t, oracle.DefaultOptions())
	ts.initialize(t)
	observer := &gaugeObserver{}
	conn, wsServer := dialWebSocket(t, ts, observer)

	response := exchange(t, conn, map[string]interface{}{"command": "ping", "id": 1})
	assert.Equal(t, "success", response["status"])
	assert.Equal(t, "response", response["type"])
	assert.Equal(t, float64(1), response["id"])

	// params sit next to the command and are signed without command and id
	params := map[string]interface{}{"asset": "symbol:XLM", "price": "42", "sequence": ts.nextSequence(t, ts.addr)}
	require.NoError(t, rpc_types.Sign("add_price", params, ts.admin))
	params["command"] = "add_price"
	params["id"] = "add"
	response = exchange(t, conn, params)
	assert.Equal(t, "success", response["status"], response)
	assert.Equal(t, "add", response["id"])

	response = exchange(t, conn, map[string]interface{}{"command": "lastprice", "id": 2, "asset": "symbol:XLM"})
	require.Equal(t, "success", response["status"], response)
	result := response["result"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"price": "42", "timestamp": float64(100)}, result["price"])

	response = exchange(t, conn, map[string]interface{}{"command": "add_price", "id": 3, "asset": "symbol:XLM", "price": "1"})
	assert.Equal(t, "error", response["status"])
	assert.Equal(t, "unauthorized", response["error"])
	assert.Equal(t, float64(rpc_types.RpcUNAUTHORIZED), response["error_code"])

	response = exchange(t, conn, map[string]interface{}{"id": 4})
	assert.Equal(t, "missingCommand", response["error"])

	assert.Equal(t, 1, wsServer.ConnectionCount())
	assert.Equal(t, 1, observer.current())

	wsServer.Close()
	assert.Equal(t, 0, wsServer.ConnectionCount())
	assert.Equal(t, 0, observer.current())
	assert.Equal(t, 1, ts.observer.count("websocket:unauthorized"))
}
