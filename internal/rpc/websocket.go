package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/LeJamon/goEscrowd/internal/core/tx"
)

// StreamTransactions carries every engine result
const StreamTransactions = "transactions"

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 54 * time.Second
	wsMaxMessageSize = 512 * 1024
	wsSendBuffer     = 256
)

// ClientGauge tracks connected websocket clients
type ClientGauge interface {
	WSClientConnected()
	WSClientDisconnected()
}

// WebSocketServer serves /ws: RPC commands plus the transaction stream
type WebSocketServer struct {
	upgrader   websocket.Upgrader
	registry   *MethodRegistry
	services   *ServiceContainer
	timeout    time.Duration
	maxClients int
	gauge      ClientGauge

	connectionsMutex sync.RWMutex
	connections      map[string]*WebSocketConnection
}

// WebSocketConnection represents a single WebSocket connection
type WebSocketConnection struct {
	ID   string
	conn *websocket.Conn

	sendChannel chan []byte
	ctx         context.Context
	cancel      context.CancelFunc

	mutex   sync.RWMutex
	streams map[string]bool
}

// WebSocketCommand is a request received over the socket
type WebSocketCommand struct {
	ID      interface{}     `json:"id,omitempty"`
	Command string          `json:"command"`
	Params  json.RawMessage `json:"-"`
}

// WebSocketResponse is the reply to a WebSocketCommand
type WebSocketResponse struct {
	Type   string      `json:"type"`
	ID     interface{} `json:"id,omitempty"`
	Status string      `json:"status"`
	Result interface{} `json:"result,omitempty"`
	Error  *RpcError   `json:"error,omitempty"`
}

// NewWebSocketServer creates a websocket server dispatching to the methods
// of registry. maxClients of 0 means no limit; gauge may be nil.
func NewWebSocketServer(registry *MethodRegistry, services *ServiceContainer, timeout time.Duration, maxClients int, gauge ClientGauge) *WebSocketServer {
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		registry:    registry,
		services:    services,
		timeout:     timeout,
		maxClients:  maxClients,
		gauge:       gauge,
		connections: make(map[string]*WebSocketConnection),
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ws.maxClients > 0 && ws.ConnectionCount() >= ws.maxClients {
		http.Error(w, "too many websocket clients", http.StatusServiceUnavailable)
		return
	}

	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	// The connection outlives the upgrade request
	ctx, cancel := context.WithCancel(context.Background())
	wsConn := &WebSocketConnection{
		ID:          uuid.NewString(),
		conn:        conn,
		sendChannel: make(chan []byte, wsSendBuffer),
		ctx:         ctx,
		cancel:      cancel,
		streams:     make(map[string]bool),
	}

	ws.connectionsMutex.Lock()
	ws.connections[wsConn.ID] = wsConn
	ws.connectionsMutex.Unlock()
	if ws.gauge != nil {
		ws.gauge.WSClientConnected()
	}
	log.WithFields(log.Fields{"conn": wsConn.ID, "client": r.RemoteAddr}).Debug("websocket connected")

	go ws.handleSend(wsConn)
	go ws.handleConnection(wsConn)
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
		c.cancel()
	}
}

// handleConnection reads commands until the peer goes away
func (ws *WebSocketServer) handleConnection(wsConn *WebSocketConnection) {
	defer ws.closeConnection(wsConn)

	wsConn.conn.SetReadLimit(wsMaxMessageSize)
	wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	wsConn.conn.SetPongHandler(func(string) error {
		wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, message, err := wsConn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).WithField("conn", wsConn.ID).Debug("websocket read failed")
			}
			return
		}
		ws.handleMessage(wsConn, message)
	}
}

// handleSend writes queued messages and keeps the connection alive
func (ws *WebSocketServer) handleSend(wsConn *WebSocketConnection) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.conn.Close()
	}()

	for {
		select {
		case <-wsConn.ctx.Done():
			wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			wsConn.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case message := <-wsConn.sendChannel:
			wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.WithError(err).WithField("conn", wsConn.ID).Debug("websocket send failed")
				wsConn.cancel()
				return
			}
		case <-ticker.C:
			wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				wsConn.cancel()
				return
			}
		}
	}
}

func (ws *WebSocketServer) closeConnection(wsConn *WebSocketConnection) {
	wsConn.cancel()

	ws.connectionsMutex.Lock()
	_, existed := ws.connections[wsConn.ID]
	delete(ws.connections, wsConn.ID)
	ws.connectionsMutex.Unlock()

	if existed && ws.gauge != nil {
		ws.gauge.WSClientDisconnected()
	}
	log.WithField("conn", wsConn.ID).Debug("websocket disconnected")
}

// handleMessage processes a single message from WebSocket
func (ws *WebSocketServer) handleMessage(wsConn *WebSocketConnection, message []byte) {
	// command and params sit at the top level
	var cmdMap map[string]interface{}
	if err := json.Unmarshal(message, &cmdMap); err != nil {
		ws.sendError(wsConn, nil, RpcErrorInvalidParams("Invalid JSON: "+err.Error()))
		return
	}

	command, ok := cmdMap["command"].(string)
	if !ok || command == "" {
		ws.sendError(wsConn, cmdMap["id"], NewRpcError(RpcMISSING_COMMAND, "missingCommand", "missingCommand", "Missing command field"))
		return
	}
	cmd := WebSocketCommand{ID: cmdMap["id"], Command: command}
	delete(cmdMap, "command")
	delete(cmdMap, "id")
	params, rpcErr := commandParams(cmdMap)
	if rpcErr != nil {
		ws.sendError(wsConn, cmd.ID, rpcErr)
		return
	}
	cmd.Params = params

	switch cmd.Command {
	case "subscribe":
		ws.handleSubscribe(wsConn, cmd, true)
	case "unsubscribe":
		ws.handleSubscribe(wsConn, cmd, false)
	default:
		ws.handleRPCMethod(wsConn, cmd)
	}
}

// commandParams re-encodes the fields left beside command and id as the
// method's params. No remaining fields means no params.
func commandParams(fields map[string]interface{}) (json.RawMessage, *RpcError) {
	if len(fields) == 0 {
		return nil, nil
	}
	params, err := json.Marshal(fields)
	if err != nil {
		return nil, RpcErrorInvalidParams("Invalid params: " + err.Error())
	}
	return params, nil
}

// handleSubscribe processes subscribe and unsubscribe commands
func (ws *WebSocketServer) handleSubscribe(wsConn *WebSocketConnection, cmd WebSocketCommand, subscribe bool) {
	var request struct {
		Streams []string `json:"streams"`
	}
	if rpcErr := parseParams(cmd.Params, &request); rpcErr != nil {
		ws.sendError(wsConn, cmd.ID, rpcErr)
		return
	}
	if len(request.Streams) == 0 {
		ws.sendError(wsConn, cmd.ID, RpcErrorInvalidParams("Missing required parameter: streams"))
		return
	}
	for _, stream := range request.Streams {
		if stream != StreamTransactions {
			ws.sendError(wsConn, cmd.ID, NewRpcError(RpcINVALID_PARAMS, "malformedStream", "malformedStream", "Unknown stream: "+stream))
			return
		}
	}

	wsConn.mutex.Lock()
	for _, stream := range request.Streams {
		if subscribe {
			wsConn.streams[stream] = true
		} else {
			delete(wsConn.streams, stream)
		}
	}
	wsConn.mutex.Unlock()

	ws.sendResponse(wsConn, WebSocketResponse{
		Type:   "response",
		ID:     cmd.ID,
		Status: "success",
		Result: map[string]interface{}{},
	})
}

// handleRPCMethod processes regular RPC method calls over WebSocket
func (ws *WebSocketServer) handleRPCMethod(wsConn *WebSocketConnection, cmd WebSocketCommand) {
	handler, exists := ws.registry.Get(cmd.Command)
	if !exists {
		ws.sendError(wsConn, cmd.ID, RpcErrorMethodNotFound(cmd.Command))
		return
	}

	ctx, cancel := context.WithTimeout(wsConn.ctx, ws.timeout)
	defer cancel()

	result, rpcErr := handler.Handle(&RpcContext{
		Context:  ctx,
		ClientIP: wsConn.conn.RemoteAddr().String(),
		Services: ws.services,
	}, cmd.Params)
	if rpcErr != nil {
		ws.sendError(wsConn, cmd.ID, rpcErr)
		return
	}
	ws.sendResponse(wsConn, WebSocketResponse{
		Type:   "response",
		ID:     cmd.ID,
		Status: "success",
		Result: result,
	})
}

func (ws *WebSocketServer) sendError(wsConn *WebSocketConnection, id interface{}, rpcErr *RpcError) {
	ws.sendResponse(wsConn, WebSocketResponse{
		Type:   "response",
		ID:     id,
		Status: "error",
		Error:  rpcErr,
	})
}

func (ws *WebSocketServer) sendResponse(wsConn *WebSocketConnection, response WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		log.WithError(err).Error("failed to marshal websocket response")
		return
	}
	ws.enqueue(wsConn, data)
}

// enqueue never blocks. A client that cannot keep up is disconnected.
func (ws *WebSocketServer) enqueue(wsConn *WebSocketConnection, data []byte) {
	select {
	case <-wsConn.ctx.Done():
	case wsConn.sendChannel <- data:
	default:
		log.WithField("conn", wsConn.ID).Warn("websocket client too slow, disconnecting")
		wsConn.cancel()
	}
}

// OnResult implements tx.Listener by publishing to the transactions stream
func (ws *WebSocketServer) OnResult(transaction tx.Transaction, result tx.ApplyResult) {
	ws.connectionsMutex.RLock()
	subscribers := make([]*WebSocketConnection, 0, len(ws.connections))
	for _, c := range ws.connections {
		c.mutex.RLock()
		if c.streams[StreamTransactions] {
			subscribers = append(subscribers, c)
		}
		c.mutex.RUnlock()
	}
	ws.connectionsMutex.RUnlock()
	if len(subscribers) == 0 {
		return
	}

	event := map[string]interface{}{
		"type":                  "transaction",
		"transaction":           transaction,
		"meta":                  result.Metadata,
		"engine_result":         result.Result.String(),
		"engine_result_code":    int(result.Result),
		"engine_result_message": result.Message,
		"hash":                  tx.HashString(result.Hash),
		"validated":             result.Applied,
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Error("failed to marshal transaction event")
		return
	}
	for _, c := range subscribers {
		ws.enqueue(c, data)
	}
}
