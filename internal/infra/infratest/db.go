// Package infratest provides a migrated in-memory database for tests.
package infratest

import (
	"context"
	"testing"

	"bazarpos/internal/infra"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory SQLite database with the full schema.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db := OpenTestDB(t)
	require.NoError(t, infra.Migrate(context.Background(), db))
	return db
}

// OpenTestDB opens the database without migrating, for tests that need to lay
// down an older schema first.
func OpenTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := infra.NewDatabase(infra.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
