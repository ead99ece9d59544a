// Package asset provides a type-safe model for on-chain assets.
// The core uses big.Int for exact on-chain representation.
// decimal.Decimal is only used at boundaries (UI, parsing, display).
package asset

import "fmt"

// AssetID uniquely identifies an asset by chain and contract address.
// For native assets (XLM, ETH) the address is empty. This is the TRUE
// identity - not the symbol.
type AssetID struct {
	chain   string // e.g. "stellar", "ethereum"
	address string // chain-specific contract identity, empty = native
}

// NewNativeAssetID creates an AssetID for a chain's native asset.
func NewNativeAssetID(chain string) AssetID {
	if chain == "" {
		panic("asset: empty chain for native asset")
	}
	return AssetID{chain: chain}
}

// NewTokenAssetID creates an AssetID for a contract-issued token.
func NewTokenAssetID(chain, address string) AssetID {
	if chain == "" {
		panic("asset: empty chain for token asset")
	}
	if address == "" {
		panic("asset: token address cannot be empty - use NewNativeAssetID for native assets")
	}
	return AssetID{chain: chain, address: address}
}

// NewFiatAssetID creates an AssetID for fiat reference currencies (USD).
// Fiat assets are off-chain; the symbol doubles as address.
func NewFiatAssetID(symbol string) AssetID {
	return AssetID{chain: "fiat", address: symbol}
}

// Chain returns the chain identifier ("fiat" for off-chain).
func (id AssetID) Chain() string {
	return id.chain
}

// Address returns the chain-specific contract identity (empty for native).
func (id AssetID) Address() string {
	return id.address
}

// IsNative returns true if this is a chain's native asset.
func (id AssetID) IsNative() bool {
	return id.chain != "fiat" && id.address == ""
}

// IsFiat returns true if this is an off-chain fiat reference.
func (id AssetID) IsFiat() bool {
	return id.chain == "fiat"
}

// String returns a human-readable representation.
func (id AssetID) String() string {
	if id.IsNative() {
		return fmt.Sprintf("%s/native", id.chain)
	}
	return fmt.Sprintf("%s/%s", id.chain, id.address)
}

// Equals compares two AssetIDs for equality.
func (id AssetID) Equals(other AssetID) bool {
	return id.chain == other.chain && id.address == other.address
}
