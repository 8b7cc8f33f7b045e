// Package di wires the escrowd services together.
package di

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrServiceNotFound is returned for a name with neither an instance nor a builder
	ErrServiceNotFound = errors.New("service not found")

	// ErrDependencyCycle is returned when a builder asks, directly or not, for itself
	ErrDependencyCycle = errors.New("dependency cycle")
)

// Container is the dependency injection container.
// It manages service registration and resolution.
type Container struct {
	mu       sync.RWMutex
	services map[string]interface{}
	builders map[string]Builder
	building map[string]bool
}

// Builder is a function that creates a service instance. It may resolve
// its own dependencies from c.
type Builder func(c *Container) (interface{}, error)

// New creates a new dependency injection container.
func New() *Container {
	return &Container{
		services: make(map[string]interface{}),
		builders: make(map[string]Builder),
		building: make(map[string]bool),
	}
}

// Register registers a service instance.
func (c *Container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// RegisterBuilder registers a builder function for lazy instantiation.
func (c *Container) RegisterBuilder(name string, builder Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builders[name] = builder
}

// Get retrieves a service by name, building it on first use. Builders run
// without the lock held so they can resolve other services.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.Lock()
	if service, exists := c.services[name]; exists {
		c.mu.Unlock()
		return service, nil
	}
	builder, hasBuilder := c.builders[name]
	if !hasBuilder {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	if c.building[name] {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, name)
	}
	c.building[name] = true
	c.mu.Unlock()

	service, err := builder(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.building, name)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}
	c.services[name] = service
	return service, nil
}

// MustGet retrieves a service or panics if not found.
func (c *Container) MustGet(name string) interface{} {
	service, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return service
}

// Has checks if a service is registered.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.services[name]
	if exists {
		return true
	}
	_, exists = c.builders[name]
	return exists
}

// Built reports whether a service has been instantiated.
func (c *Container) Built(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.services[name]
	return exists
}

// ServiceNames returns all registered service names, sorted.
func (c *Container) ServiceNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make(map[string]bool)
	for name := range c.services {
		names[name] = true
	}
	for name := range c.builders {
		names[name] = true
	}

	result := make([]string, 0, len(names))
	for name := range names {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Clear removes all services and builders.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services = make(map[string]interface{})
	c.builders = make(map[string]Builder)
	c.building = make(map[string]bool)
}

// Service names constants for type-safe access.
const (
	ServiceConfig    = "config"
	ServiceStateDB   = "state.db"
	ServiceStore     = "state.store"
	ServiceEngine    = "tx.engine"
	ServiceJournal   = "journal"
	ServiceRecorder  = "journal.recorder"
	ServiceMetrics   = "metrics"
	ServiceRPCServer = "rpc.server"
	ServiceWSServer  = "rpc.websocket"
)
