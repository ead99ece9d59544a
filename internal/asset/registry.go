package asset

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe registry of known assets. It is populated from
// static configuration at startup; tokens are immutable once registered.
type Registry struct {
	byID     map[AssetID]*Asset
	bySymbol map[string]*Asset
	mu       sync.RWMutex
}

// NewRegistry creates a new empty asset registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[AssetID]*Asset),
		bySymbol: make(map[string]*Asset),
	}
}

// Register adds an asset to the registry.
// Panics if an asset with the same ID or symbol is already registered:
// duplicate token config is a startup error.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.byID[id]; exists {
		panic(fmt.Sprintf("asset: %s already registered", id))
	}
	if _, exists := r.bySymbol[a.Symbol()]; exists {
		panic(fmt.Sprintf("asset: symbol %s already registered", a.Symbol()))
	}

	r.byID[id] = a
	r.bySymbol[a.Symbol()] = a
}

// Get retrieves an asset by its ID.
func (r *Registry) Get(id AssetID) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	return a, ok
}

// GetBySymbol retrieves an asset by symbol.
func (r *Registry) GetBySymbol(symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.bySymbol[symbol]
	return a, ok
}

// MustGetBySymbol retrieves an asset by symbol, panics if not found.
func (r *Registry) MustGetBySymbol(symbol string) *Asset {
	a, ok := r.GetBySymbol(symbol)
	if !ok {
		panic(fmt.Sprintf("asset: symbol %s not found in registry", symbol))
	}
	return a
}

// All returns a snapshot of every registered asset.
func (r *Registry) All() []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := make([]*Asset, 0, len(r.byID))
	for _, a := range r.byID {
		assets = append(assets, a)
	}
	return assets
}

// USD is the off-chain reference currency used for liquidity and profit
// estimates.
var USD = NewAssetWithName(NewFiatAssetID("USD"), "USD", "US Dollar", 2)
