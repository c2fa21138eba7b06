//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgres runs a throwaway PostgreSQL server for the lifetime of the
// test and returns its DSN.
func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("nri"),
		tcpostgres.WithUsername("forecast"),
		tcpostgres.WithPassword("forecast"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "resolve postgres dsn")
	return dsn
}

// seedTable creates table with the given column types and inserts rows.
// A nil cell is stored as NULL.
func seedTable(ctx context.Context, t *testing.T, dsn, table string, columns, types []string, rows [][]any) {
	t.Helper()

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	require.NoError(t, err, "connect for seeding")
	defer db.Close()

	defs := make([]string, len(columns))
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
		defs[i] = quoted[i] + " " + types[i]
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", pq.QuoteIdentifier(table), strings.Join(defs, ", ")))
	require.NoError(t, err, "create table %s", table)

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(params, ", "))
	for i, row := range rows {
		_, err := db.ExecContext(ctx, insert, row...)
		require.NoError(t, err, "insert row %d", i+1)
	}
}
