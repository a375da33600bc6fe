package repositories_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ledger/src/config"
	"ledger/src/database"

	"github.com/jackc/pgx/v5/pgxpool"
)

var testDB *pgxpool.Pool

// SetupTestDB connects to the test database described by
// settings/appsettings.TESTING.yaml. Tests that need Postgres are skipped
// when it is not reachable.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testDB != nil {
		return testDB
	}

	cfg, err := loadTestConfig()
	if err != nil {
		t.Skipf("skipping database tests: %v", err)
	}

	dsn, err := database.BuildDSN(cfg)
	if err != nil {
		t.Skipf("skipping database tests: %v", err)
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("Failed to parse database config: %v", err)
	}
	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		t.Skipf("skipping database tests, cannot connect: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skipping database tests, cannot ping: %v", err)
	}

	TruncateTables(t, pool)
	testDB = pool
	return pool
}

func loadTestConfig() (*config.Config, error) {
	serviceRoot, err := getServiceRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to get service root path: %w", err)
	}
	return config.LoadConfig(filepath.Join(serviceRoot, "settings"), "TESTING")
}

// getServiceRoot walks up from the working directory until go.mod is found.
func getServiceRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd, nil
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		wd = parent
	}
}

// TruncateTables clears all ledger tables between tests.
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	tables := []string{"sync_logs", "transactions", "holdings"}
	for _, table := range tables {
		if _, err := pool.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Fatalf("Failed to truncate table %s: %v", table, err)
		}
	}
}
