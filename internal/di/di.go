// Package di provides a minimal service container for module wiring.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	// Get returns the service registered under key, or nil.
	Get(key string) any
	// MustGet returns the service registered under key, panics if missing.
	MustGet(key string) any
}

// Container is the full read/write container handed to modules during
// registration.
type Container interface {
	ServiceRegistry
	// Register stores a service under key. Re-registering a key panics:
	// wiring bugs should fail at startup, not at first use.
	Register(key string, svc any)
}

type container struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{services: make(map[string]any)}
}

func (c *container) Register(key string, svc any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.services[key]; exists {
		panic(fmt.Sprintf("di: service %q already registered", key))
	}
	c.services[key] = svc
}

func (c *container) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.services[key]
}

func (c *container) MustGet(key string) any {
	svc := c.Get(key)
	if svc == nil {
		panic(fmt.Sprintf("di: service %q not registered", key))
	}
	return svc
}
