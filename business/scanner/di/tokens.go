// Package di contains dependency injection tokens for the scanner context.
package di

import (
	"github.com/quantfi/flasharb/business/scanner/app"
	"github.com/quantfi/flasharb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ScannerService = di.NewToken[*app.Scanner]("scanner.Scanner")
)

// Private dependency tokens - internal to scanner module
var (
	VenueClients = di.NewToken[[]app.VenueClient]("scanner:venueClients")
)

// Helper functions for type-safe access
func GetScannerService(c di.ServiceRegistry) *app.Scanner {
	return di.GetToken(c, ScannerService)
}

func GetVenueClients(c di.ServiceRegistry) []app.VenueClient {
	return di.GetToken(c, VenueClients)
}
