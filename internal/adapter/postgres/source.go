// Package postgres reads the NRI county table from PostgreSQL as an
// alternative to the CSV extract.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // registers the "postgres" driver

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/dataset"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
)

// Source reads every row of one table.
type Source struct {
	db    *sqlx.DB
	table string
}

// Open connects to the database and pings it. A failure is a
// *domain.DataError.
func Open(ctx context.Context, dsn, table string) (*Source, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, &domain.DataError{Source: "postgres:" + table, Err: fmt.Errorf("connect: %w", err)}
	}
	return NewSource(db, table), nil
}

// NewSource wraps an existing connection pool.
func NewSource(db *sqlx.DB, table string) *Source {
	return &Source{db: db, table: table}
}

// Name identifies the source in logs and DataErrors.
func (s *Source) Name() string {
	return "postgres:" + s.table
}

// Load reads the table and decodes it like the CSV extract. Every failure
// is a *domain.DataError.
func (s *Source) Load(ctx context.Context) (*dataset.Dataset, error) {
	t, err := s.ReadTable(ctx)
	if err != nil {
		return nil, &domain.DataError{Source: s.Name(), Err: err}
	}
	return dataset.Decode(s.Name(), t)
}

// ReadTable returns the table's columns and rows as text cells.
func (s *Source) ReadTable(ctx context.Context) (dataset.Table, error) {
	ident, err := quoteTable(s.table)
	if err != nil {
		return dataset.Table{}, err
	}

	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM "+ident)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return dataset.Table{}, fmt.Errorf("read columns: %w", err)
	}

	t := dataset.Table{Columns: cols}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return dataset.Table{}, fmt.Errorf("scan row %d: %w", len(t.Rows)+1, err)
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = cellString(v)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return dataset.Table{}, fmt.Errorf("iterate rows: %w", err)
	}
	return t, nil
}

func (s *Source) Close() error {
	return s.db.Close()
}

// quoteTable quotes a table name, optionally schema-qualified.
func quoteTable(name string) (string, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	for i, p := range parts {
		if p == "" {
			return "", errors.New("table name is empty")
		}
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, "."), nil
}

// cellString renders a scanned value the way it would appear in the CSV
// extract. NULL becomes an empty cell.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
