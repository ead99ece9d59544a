package storage

import (
	"context"
	"fmt"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/quantfi/flasharb/business/execution/domain"
)

func testResult(route, attempt string, success bool) *domain.Result {
	return &domain.Result{
		RouteID:       route,
		AttemptID:     attempt,
		Success:       success,
		SettlementRef: "tx-" + attempt,
		Profit:        big.NewInt(9100),
		ProfitUSD:     decimal.RequireFromString("0.91"),
		Attempts:      1,
		Duration:      125 * time.Millisecond,
		CompletedAt:   time.Now().UTC(),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "results.db"), 100)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	want := testResult("CPOOL0001:CPOOL0002", "a1", true)
	require.NoError(t, store.Record(ctx, want))

	results, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	require.Equal(t, want.RouteID, got.RouteID)
	require.Equal(t, want.AttemptID, got.AttemptID)
	require.True(t, got.Success)
	require.Equal(t, "tx-a1", got.SettlementRef)
	require.Equal(t, 0, want.Profit.Cmp(got.Profit))
	require.True(t, want.ProfitUSD.Equal(got.ProfitUSD))
	require.Equal(t, want.Duration, got.Duration)
	require.WithinDuration(t, want.CompletedAt, got.CompletedAt, time.Millisecond)
}

func TestStore_FailedResultKeepsError(t *testing.T) {
	store, err := New("", 100)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	failed := testResult("CPOOL0001:CPOOL0002", "a2", false)
	failed.SettlementRef = ""
	failed.Err = "relay unavailable"
	failed.Attempts = 2
	require.NoError(t, store.Record(ctx, failed))

	results, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.False(t, results[0].Success)
	require.Equal(t, "relay unavailable", results[0].Err)
	require.Equal(t, 2, results[0].Attempts)
}

func TestStore_PrunesToRetentionLimit(t *testing.T) {
	store, err := New("", 3)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, testResult("A:B", fmt.Sprintf("a%d", i), true)))
	}

	results, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	// Newest first, oldest two pruned
	require.Equal(t, "a4", results[0].AttemptID)
	require.Equal(t, "a2", results[2].AttemptID)
}
