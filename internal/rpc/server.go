package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// maxRequestBody bounds a JSON-RPC request
const maxRequestBody = 1 << 20

// Server handles HTTP JSON-RPC requests
type Server struct {
	registry *MethodRegistry
	services *ServiceContainer
	timeout  time.Duration
}

// NewServer creates a new RPC server with the given timeout
func NewServer(services *ServiceContainer, timeout time.Duration) *Server {
	server := &Server{
		registry: NewMethodRegistry(),
		services: services,
		timeout:  timeout,
	}
	server.registerAllMethods()
	return server
}

// Registry returns the method registry, shared with the websocket server
func (s *Server) Registry() *MethodRegistry {
	return s.registry
}

// Request is a JSON-RPC request envelope
// Format: {"method": "method_name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest processes GET requests, defaulting to server_info
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}
	result, rpcErr := s.executeMethod(r.Context(), method, nil, getClientIP(r))
	s.writeResponse(w, nil, result, rpcErr)
}

// handlePostRequest processes POST requests carrying a JSON-RPC payload
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, nil, "internal", "Failed to read request body")
		return
	}

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeError(w, nil, "jsonInvalid", "Invalid JSON: "+err.Error())
		return
	}
	if request.Method == "" {
		s.writeError(w, nil, "missingCommand", "Missing method field")
		return
	}

	// params is an array holding one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	result, rpcErr := s.executeMethod(r.Context(), request.Method, params, getClientIP(r))

	var requestObj interface{}
	if rpcErr != nil {
		reqMap := map[string]interface{}{}
		if params != nil {
			_ = json.Unmarshal(params, &reqMap)
		}
		reqMap["command"] = request.Method
		requestObj = reqMap
	}
	s.writeResponse(w, requestObj, result, rpcErr)
}

// executeMethod executes an RPC method with the given parameters
func (s *Server) executeMethod(ctx context.Context, method string, params json.RawMessage, clientIP string) (interface{}, *RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, RpcErrorMethodNotFound(method)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	requestID := uuid.NewString()
	logger := log.WithFields(log.Fields{"method": method, "request_id": requestID, "client": clientIP})
	logger.Debug("rpc request")

	result, rpcErr := handler.Handle(&RpcContext{
		Context:  ctx,
		ClientIP: clientIP,
		Services: s.services,
	}, params)
	if rpcErr != nil {
		logger.WithField("error", rpcErr.ErrorString).Debug("rpc request failed")
	}
	return result, rpcErr
}

// writeResponse writes a JSON-RPC response with
// result.status set to "success" or "error"
func (s *Server) writeResponse(w http.ResponseWriter, request interface{}, result interface{}, rpcErr *RpcError) {
	response := map[string]interface{}{"result": buildResult(request, result, rpcErr)}

	responseData, err := json.Marshal(response)
	if err != nil {
		log.WithError(err).Error("failed to marshal response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(responseData)
}

func buildResult(request interface{}, result interface{}, rpcErr *RpcError) map[string]interface{} {
	if rpcErr != nil {
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

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, request interface{}, errorCode string, message string) {
	s.writeResponse(w, request, nil, &RpcError{ErrorString: errorCode, Message: message})
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
