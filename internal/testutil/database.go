// Package testutil provides testing utilities for database integration tests.
//
// Database Setup:
//
//	db := testutil.SetupSQLiteDB(t)
//
// Each test gets its own database file under t.TempDir(), so there is no
// cross-test state and no cleanup beyond closing the connection.
//
// Test Fixtures (for foreign key constraints):
//
//	userID := testutil.CreateTestUser(t, db, "fixture@example.com")
//
// Migration Path:
//
// Migrations are automatically discovered by walking up from the current
// working directory until a "migrations/sqlite" directory is found.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// SetupSQLiteDB creates a fresh SQLite database in a temp directory and runs
// all migrations. The connection is closed automatically when the test ends.
func SetupSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err, "failed to open sqlite database")
	t.Cleanup(func() {
		require.NoError(t, db.Close(), "failed to close database connection")
	})

	// SQLite allows a single writer; a larger pool just produces lock errors.
	db.SetMaxOpenConns(1)

	require.NoError(t, db.Ping(), "failed to ping sqlite database")

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err, "failed to enable foreign keys")

	runSQLiteMigrations(t, db)

	return db
}

// SetupSQLiteDBFile creates a fresh migrated SQLite database file under
// t.TempDir() and returns its path. Useful for tests that need the database
// opened by other code (for example through the DI container) rather than
// receiving an open connection.
func SetupSQLiteDBFile(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err, "failed to open sqlite database")

	db.SetMaxOpenConns(1)
	require.NoError(t, db.Ping(), "failed to ping sqlite database")

	runSQLiteMigrations(t, db)
	require.NoError(t, db.Close(), "failed to close migration connection")

	return dbPath
}

// CreateTestUser inserts a user row and returns its ID, for tests that need
// to satisfy the predictions foreign key.
func CreateTestUser(t *testing.T, db *sql.DB, email string) uuid.UUID {
	t.Helper()

	userID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	_, err := db.Exec(
		`INSERT INTO users (id, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		userID, email, "test-password-hash", now, now,
	)
	require.NoError(t, err, "failed to insert test user")

	return userID
}

// runSQLiteMigrations applies all pending migrations for the test database.
func runSQLiteMigrations(t *testing.T, db *sql.DB) {
	t.Helper()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	require.NoError(t, err, "failed to create sqlite driver")

	migrationsPath, err := getMigrationsPath()
	require.NoError(t, err, "failed to find sqlite migrations path")

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	require.NoError(t, err, "failed to create migrate instance")

	// The migrate instance is intentionally not closed: it was built around an
	// existing connection owned by the caller, and closing it would close that
	// connection too.
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, fmt.Sprintf("failed to run migrations from %s", migrationsPath))
	}
}

// getMigrationsPath resolves the absolute path to the SQLite migration files.
// Walks up the directory tree from the current working directory.
func getMigrationsPath() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		migrationsPath := filepath.Join(dir, "migrations", "sqlite")
		if _, err := os.Stat(migrationsPath); err == nil {
			return migrationsPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found (started from %s)", dir)
		}
		dir = parent
	}
}
