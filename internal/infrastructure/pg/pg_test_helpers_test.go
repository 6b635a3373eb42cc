package pg_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"marketdata-collector/internal/infrastructure/pg"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// One migrated container serves the whole package; tests get empty data
// tables but share the seeded symbol registry.
var shared struct {
	once      sync.Once
	container *postgres.PostgresContainer
	db        *pg.DB
	err       error
}

func TestMain(m *testing.M) {
	code := m.Run()
	if shared.db != nil {
		shared.db.Close()
	}
	if shared.container != nil {
		_ = shared.container.Terminate(context.Background())
	}
	os.Exit(code)
}

func startPostgres() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	shared.container, shared.err = postgres.RunContainer(ctx,
		postgres.WithDatabase("marketdata"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
	)
	if shared.err != nil {
		return
	}
	dsn, err := shared.container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		shared.err = err
		return
	}
	if shared.db, shared.err = pg.Connect(ctx, dsn); shared.err != nil {
		return
	}
	shared.err = pg.RunMigrations(ctx, shared.db)
}

func withPostgres(t *testing.T) *pg.DB {
	t.Helper()
	if os.Getenv("TESTCONTAINERS") == "" {
		t.Skip("set TESTCONTAINERS=1 to run containerized PG tests")
	}
	shared.once.Do(startPostgres)
	require.NoError(t, shared.err)

	_, err := shared.db.Pool.Exec(context.Background(), `TRUNCATE market_data, macro_indicators`)
	require.NoError(t, err)
	return shared.db
}

func symbolID(t *testing.T, db *pg.DB, symbol string) int64 {
	t.Helper()
	ids, err := pg.NewSymbolRepo(db).LoadSymbols(context.Background())
	require.NoError(t, err)
	id, ok := ids[symbol]
	require.True(t, ok, "seeded symbol %s", symbol)
	return id
}
