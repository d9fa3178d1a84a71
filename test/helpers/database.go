package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/excavator-go/internal/infrastructure/database"
)

// NewTestDB opens a migrated in-memory SQLite database closed at test end.
// Each call gets its own database, isolated from SharedTestDB.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewTestConnection()
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
