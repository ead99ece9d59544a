// Package scanner implements the price acquisition bounded context.
package scanner

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/quantfi/flasharb/business/scanner/app"
	scannerDI "github.com/quantfi/flasharb/business/scanner/di"
	"github.com/quantfi/flasharb/business/scanner/domain"
	"github.com/quantfi/flasharb/business/scanner/infra/evm"
	"github.com/quantfi/flasharb/business/scanner/infra/indexer"
	"github.com/quantfi/flasharb/internal/asset"
	"github.com/quantfi/flasharb/internal/config"
	"github.com/quantfi/flasharb/internal/di"
	"github.com/quantfi/flasharb/internal/logger"
	"github.com/quantfi/flasharb/internal/monolith"
)

// Module implements the scanner bounded context.
type Module struct{}

// RegisterServices registers all scanner services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register venue clients - private dependency
	di.RegisterToken(c, scannerDI.VenueClients, func(sr di.ServiceRegistry) []app.VenueClient {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		clients := make([]app.VenueClient, 0, len(cfg.Venues))
		for _, venue := range cfg.Venues {
			switch venue.Kind {
			case config.VenueKindEVM:
				client, err := evm.NewClient(evm.Config{
					Venue:             venue.Name,
					RPCURL:            venue.RPCURL,
					RequestsPerMinute: venue.RequestsPerMinute,
				}, log)
				if err != nil {
					panic("failed to create evm venue client: " + err.Error())
				}
				clients = append(clients, client)
			case config.VenueKindIndexer:
				client, err := indexer.NewClient(indexer.Config{
					Venue: venue.Name,
					WSURL: venue.WSURL,
				}, log)
				if err != nil {
					panic("failed to create indexer venue client: " + err.Error())
				}
				clients = append(clients, client)
			}
		}
		return clients
	})

	// Register Scanner (public - exposed to other modules)
	di.RegisterToken(c, scannerDI.ScannerService, func(sr di.ServiceRegistry) *app.Scanner {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		scanner, err := app.NewScanner(
			scannerDI.GetVenueClients(sr),
			buildPools(cfg, registry),
			buildRefPrices(cfg),
			log,
		)
		if err != nil {
			panic("failed to create scanner: " + err.Error())
		}
		return scanner
	})

	return nil
}

// Startup connects streaming venue clients. RPC-backed venues need no
// warm-up, they are queried per scan.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	poolsByVenue := make(map[string][]string)
	for _, pool := range cfg.Pools {
		if pool.Enabled {
			poolsByVenue[pool.Venue] = append(poolsByVenue[pool.Venue], pool.Address)
		}
	}

	for _, client := range scannerDI.GetVenueClients(mono.Services()) {
		streamer, ok := client.(*indexer.Client)
		if !ok {
			continue
		}
		if err := streamer.Start(ctx, poolsByVenue[client.Venue()]); err != nil {
			// Feed reconnects in the background, a cold start is not fatal
			log.Warn(ctx, "indexer feed connect failed, will retry",
				"venue", client.Venue(), "error", err)
		}
	}

	log.Info(ctx, "scanner module started", "venues", len(cfg.Venues), "pools", len(cfg.Pools))
	return nil
}

// buildPools resolves config pools against the asset registry.
func buildPools(cfg *config.Config, registry *asset.Registry) []domain.Pool {
	pools := make([]domain.Pool, 0, len(cfg.Pools))
	for _, pc := range cfg.Pools {
		if !pc.Enabled {
			continue
		}
		pools = append(pools, domain.Pool{
			Venue:   pc.Venue,
			Address: pc.Address,
			TokenA:  registry.MustGetBySymbol(pc.TokenA),
			TokenB:  registry.MustGetBySymbol(pc.TokenB),
			FeeBps:  pc.FeeBps,
		})
	}
	return pools
}

// buildRefPrices collects configured USD reference prices by symbol.
func buildRefPrices(cfg *config.Config) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(cfg.Tokens))
	for _, token := range cfg.Tokens {
		if token.RefPriceUSD > 0 {
			prices[token.Symbol] = decimal.NewFromFloat(token.RefPriceUSD)
		}
	}
	return prices
}
