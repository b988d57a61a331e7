package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	// unique database name per test for isolation
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return New(db)
}

var userSeq int

func seedUser(t *testing.T, s *Store) *models.User {
	t.Helper()
	userSeq++
	u := &models.User{
		Username:     fmt.Sprintf("user%d", userSeq),
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		PasswordHash: "x",
		IsVerified:   true,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedGroup(t *testing.T, s *Store, owner *models.User, name string) *models.Group {
	t.Helper()
	g := &models.Group{Name: name}
	require.NoError(t, s.CreateGroup(context.Background(), g, owner))
	return g
}

func seedMovieMonday(t *testing.T, s *Store, g *models.Group, picker *models.User, date time.Time) *models.MovieMonday {
	t.Helper()
	mm := &models.MovieMonday{Date: date, GroupID: g.ID, PickerUserID: picker.ID}
	require.NoError(t, s.CreateMovieMonday(context.Background(), mm))
	return mm
}
