package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testDB opens a fresh in-memory sqlite database with the production schema.
// The pool is pinned to one connection so the memory database is not lost
// between statements.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))

	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()

	user, err := CreateUser(gdb, CreateUserInput{
		Username: username,
		Password: "secret123",
	})
	require.NoError(t, err)

	return user
}

func asPrincipal(user *models.User) Principal {
	return Principal{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
}

func seedActivity(t *testing.T, gdb *gorm.DB, ownerID uint, title string) *models.Activity {
	t.Helper()

	activity, err := CreateActivity(gdb, ownerID, CreateActivityInput{Title: title})
	require.NoError(t, err)

	return activity
}

func shareActivity(t *testing.T, gdb *gorm.DB, activityID, userID uint) {
	t.Helper()

	grant := models.ActivityAccess{ActivityID: activityID, UserID: userID}
	require.NoError(t, gdb.Create(&grant).Error)
}

func countRows(t *testing.T, gdb *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	require.NoError(t, gdb.Model(model).Where(query, args...).Count(&count).Error)

	return count
}
