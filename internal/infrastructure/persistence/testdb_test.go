package persistence

import (
	"testing"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testTenant  shared.TenantID = "+14155552671"
	otherTenant shared.TenantID = "+919876543210"
)

// setupTestDB opens an in-memory sqlite database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, NewDatabaseFromGorm(db).AutoMigrate())
	return db
}
