package domain

import (
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	arbitrageDomain "github.com/quantfi/flasharb/business/arbitrage/domain"
)

// Result is the outcome of one execution attempt sequence for a route.
type Result struct {
	RouteID       string
	AttemptID     string
	Success       bool
	SettlementRef string
	Profit        *big.Int
	ProfitUSD     decimal.Decimal
	CostUSD       decimal.Decimal // flash loan fee, paid only when settled
	Attempts      int
	Duration      time.Duration
	Err           string
	CompletedAt   time.Time
}

// History is a bounded, most-recent-first log of execution results. It
// also folds every result into per-route counters feeding the risk model.
type History struct {
	mu        sync.RWMutex
	entries   []*Result
	limit     int
	routes    map[string]*routeRecord
	total     int
	success   int
	profitUSD decimal.Decimal
	costUSD   decimal.Decimal
	elapsed   time.Duration
}

type routeRecord struct {
	attempts            int
	successes           int
	consecutiveFailures int
}

// NewHistory creates a history retaining the most recent limit results.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 100
	}
	return &History{
		entries: make([]*Result, 0, limit),
		limit:   limit,
		routes:  make(map[string]*routeRecord),
	}
}

// Append records a result, evicting the oldest entry once full.
func (h *History) Append(result *Result) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, result)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}

	record, ok := h.routes[result.RouteID]
	if !ok {
		record = &routeRecord{}
		h.routes[result.RouteID] = record
	}
	record.attempts++
	h.total++
	h.elapsed += result.Duration
	if result.Success {
		record.successes++
		record.consecutiveFailures = 0
		h.success++
		// A reverted settlement is atomic, profit and loan fee only
		// materialize on success
		h.profitUSD = h.profitUSD.Add(result.ProfitUSD)
		h.costUSD = h.costUSD.Add(result.CostUSD)
	} else {
		record.consecutiveFailures++
	}
}

// Recent returns up to n results, newest first.
func (h *History) Recent(n int) []*Result {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]*Result, 0, n)
	for i := len(h.entries) - 1; i >= len(h.entries)-n; i-- {
		out = append(out, h.entries[i])
	}
	return out
}

// StatsFor returns the accumulated counters for a route. The zero value
// is returned for routes never executed.
func (h *History) StatsFor(routeID string) arbitrageDomain.RouteStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	record, ok := h.routes[routeID]
	if !ok {
		return arbitrageDomain.RouteStats{}
	}
	return arbitrageDomain.RouteStats{
		Attempts:            record.attempts,
		Successes:           record.successes,
		ConsecutiveFailures: record.consecutiveFailures,
	}
}

// Summary is an aggregate view over all recorded executions.
type Summary struct {
	Total       int
	Successes   int
	Failures    int
	SuccessRate float64
	ProfitUSD   decimal.Decimal // cumulative, settled executions only
	CostUSD     decimal.Decimal // cumulative flash loan fees paid
	AvgLatency  time.Duration
}

// Summarize returns the aggregate execution counters.
func (h *History) Summarize() Summary {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := Summary{
		Total:     h.total,
		Successes: h.success,
		Failures:  h.total - h.success,
		ProfitUSD: h.profitUSD,
		CostUSD:   h.costUSD,
	}
	if h.total > 0 {
		s.SuccessRate = float64(h.success) / float64(h.total)
		s.AvgLatency = h.elapsed / time.Duration(h.total)
	}
	return s
}
