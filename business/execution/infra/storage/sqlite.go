// Package storage persists execution results in an embedded sqlite database.
package storage

import (
	"context"
	"database/sql"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/quantfi/flasharb/business/execution/domain"
	"github.com/quantfi/flasharb/internal/apperror"
)

const schema = `
CREATE TABLE IF NOT EXISTS execution_results (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	route_id      TEXT NOT NULL,
	attempt_id    TEXT NOT NULL,
	success       INTEGER NOT NULL,
	settlement_ref TEXT,
	profit        TEXT,
	profit_usd    TEXT,
	attempts      INTEGER NOT NULL,
	duration_ms   INTEGER NOT NULL,
	error         TEXT,
	completed_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_execution_results_route ON execution_results (route_id);
`

// Store is a durable log of execution results, pruned to the most recent
// keep rows. An empty path keeps the log in memory.
type Store struct {
	db   *sql.DB
	keep int
}

// New opens the result store and creates the schema.
func New(path string, keep int) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	if keep <= 0 {
		keep = 1000
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperror.New(apperror.CodeInternalError,
			apperror.WithCause(err),
			apperror.WithContext("open result store "+path))
	}
	// modernc sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperror.New(apperror.CodeInternalError,
			apperror.WithCause(err),
			apperror.WithContext("create result store schema"))
	}

	return &Store{db: db, keep: keep}, nil
}

// Record appends a result and prunes rows past the retention limit.
func (s *Store) Record(ctx context.Context, result *domain.Result) error {
	profit := ""
	if result.Profit != nil {
		profit = result.Profit.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO execution_results
			(route_id, attempt_id, success, settlement_ref, profit, profit_usd, attempts, duration_ms, error, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RouteID,
		result.AttemptID,
		boolToInt(result.Success),
		result.SettlementRef,
		profit,
		result.ProfitUSD.String(),
		result.Attempts,
		result.Duration.Milliseconds(),
		result.Err,
		result.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return apperror.New(apperror.CodeInternalError,
			apperror.WithCause(err),
			apperror.WithContext("insert execution result"))
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM execution_results
		WHERE id NOT IN (SELECT id FROM execution_results ORDER BY id DESC LIMIT ?)`,
		s.keep,
	)
	if err != nil {
		return apperror.New(apperror.CodeInternalError,
			apperror.WithCause(err),
			apperror.WithContext("prune execution results"))
	}
	return nil
}

// Recent returns up to limit results, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*domain.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT route_id, attempt_id, success, settlement_ref, profit, profit_usd, attempts, duration_ms, error, completed_at
		FROM execution_results
		ORDER BY id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, apperror.New(apperror.CodeInternalError,
			apperror.WithCause(err),
			apperror.WithContext("query execution results"))
	}
	defer rows.Close()

	var results []*domain.Result
	for rows.Next() {
		var (
			result      domain.Result
			success     int
			profit      string
			profitUSD   string
			durationMS  int64
			completedAt string
		)
		if err := rows.Scan(
			&result.RouteID,
			&result.AttemptID,
			&success,
			&result.SettlementRef,
			&profit,
			&profitUSD,
			&result.Attempts,
			&durationMS,
			&result.Err,
			&completedAt,
		); err != nil {
			return nil, apperror.New(apperror.CodeInternalError,
				apperror.WithCause(err),
				apperror.WithContext("scan execution result"))
		}

		result.Success = success != 0
		result.Duration = time.Duration(durationMS) * time.Millisecond
		if profit != "" {
			if v, ok := new(big.Int).SetString(profit, 10); ok {
				result.Profit = v
			}
		}
		if v, err := decimal.NewFromString(profitUSD); err == nil {
			result.ProfitUSD = v
		}
		if ts, err := time.Parse(time.RFC3339Nano, completedAt); err == nil {
			result.CompletedAt = ts
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
