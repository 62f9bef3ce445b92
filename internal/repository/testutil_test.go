package repository

import (
	"fmt"
	"testing"

	"campusbook/internal/database"
	"campusbook/internal/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a named in-memory SQLite database shared across the pool's
// connections for the lifetime of one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Slot{},
		&domain.Appointment{},
		&domain.Message{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Name:         email,
		Active:       true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
