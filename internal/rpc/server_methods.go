package rpc

import (
	"encoding/json"
	"time"
)

// serverInfo handles the server_info method
func serverInfo(ctx *RpcContext, _ json.RawMessage) (interface{}, *RpcError) {
	svc := ctx.Services
	info := map[string]interface{}{
		"build_version": svc.Version,
		"node_db":       svc.NodeDBType,
		"journal":       svc.Journal != nil,
		"time":          time.Now().UTC().Format(time.RFC3339),
		"uptime":        int64(time.Since(svc.StartTime).Seconds()),
		"server_state":  "full",
	}
	if svc.Cache != nil {
		stats := svc.Cache.CacheStats()
		info["state_cache"] = map[string]interface{}{
			"size":   stats.Size,
			"hits":   stats.Hits,
			"misses": stats.Misses,
		}
	}
	return map[string]interface{}{"info": info}, nil
}

// ping handles the ping method
func ping(*RpcContext, json.RawMessage) (interface{}, *RpcError) {
	return map[string]interface{}{}, nil
}
