package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebasr/target-manager/internal/config"
)

func TestNew_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "targets.db"),
	}

	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	// Migrations are idempotent
	require.NoError(t, db.Migrate(ctx))
	assert.NoError(t, db.HealthCheck(ctx))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM targets").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestMigrate_EnforcesDomainChecks(t *testing.T) {
	db, err := New(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "targets.db"),
	})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))

	_, err = db.ExecContext(ctx,
		`INSERT INTO targets (id, latitude, longitude, altitude, frequency, speed, bearing, ip_address, created_at)
		 VALUES ('x', 91, 0, 0, 1, 0, 0, '1.1.1.1', 1)`)
	assert.Error(t, err)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&config.DatabaseConfig{Driver: config.DriverMemory})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no SQL backend")
}
