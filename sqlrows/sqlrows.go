// Package sqlrows runs SQL queries and maps each result row to an entity.
//
// It is the query side of a report: rows come out of [Run] as typed values
// that can be handed straight to rectab.Render.
package sqlrows

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Sentinel errors for programmatic error handling.
var (
	ErrQuery  = errors.New("query failed")
	ErrParams = errors.New("unexpected query parameters")
	ErrConfig = errors.New("invalid connection config")
)

// Scanner reads the columns of the current row. *sql.Rows satisfies it.
type Scanner interface {
	Scan(dest ...any) error
}

// RowMapper converts the current row into an entity.
type RowMapper[T any] func(Scanner) (T, error)

// Querier executes a query. *sql.DB, *sql.Conn and *sql.Tx satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Option configures [Run].
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger that receives a debug entry per query.
// Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Run executes query with args and maps every result row, in order, with
// mapper. Args are bound by the driver; the query text is never rewritten.
// A query run without args must pass [NoParams]. Rows are closed before Run
// returns.
func Run[T any](ctx context.Context, q Querier, query string, mapper RowMapper[T], args []any, opts ...Option) ([]T, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if len(args) == 0 {
		if err := NoParams(query); err != nil {
			return nil, err
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := mapper(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrQuery, len(out)+1, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	o.logger.Debug("query executed",
		zap.Int("params", len(args)),
		zap.Int("rows", len(out)),
	)
	return out, nil
}

// NoParams reports an error if query contains "?" placeholders. [Run] applies
// it to queries given no args.
func NoParams(query string) error {
	if strings.Contains(query, "?") {
		return fmt.Errorf("%w: %q must not contain ? placeholders", ErrParams, query)
	}
	return nil
}
