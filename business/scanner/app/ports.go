// Package app contains application services and port definitions for the scanner context.
package app

import (
	"context"

	"github.com/quantfi/flasharb/business/scanner/domain"
)

// VenueClient fetches pool state from one liquidity venue.
type VenueClient interface {
	// Venue returns the venue name this client serves.
	Venue() string

	// FetchPoolState retrieves the current reserves for a pool.
	FetchPoolState(ctx context.Context, pool domain.Pool) (domain.PoolState, error)

	// Close releases the underlying connection.
	Close() error
}
