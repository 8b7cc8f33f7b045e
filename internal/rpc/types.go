package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/state"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/storage/relationaldb"
)

// RpcContext carries per-request state to method handlers
type RpcContext struct {
	Context  context.Context
	ClientIP string
	Services *ServiceContainer
}

// MethodHandler is implemented by every RPC method
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
}

// MethodFunc adapts a function to MethodHandler
type MethodFunc func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)

func (f MethodFunc) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return f(ctx, params)
}

// MethodRegistry maps method names to handlers
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

// CacheReporter is implemented by stores that expose read cache statistics
type CacheReporter interface {
	CacheStats() state.CacheStats
}

// ServiceContainer holds references to the services RPC handlers use
type ServiceContainer struct {
	Engine *tx.Engine

	// Journal is nil when journaling is disabled
	Journal relationaldb.Journal

	// Cache is optional
	Cache CacheReporter

	Version    string
	NodeDBType string
	StartTime  time.Time
}
