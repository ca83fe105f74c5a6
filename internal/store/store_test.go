package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evgkirov/bboard/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return New(db)
}

func seedRubric(t *testing.T, s *Store) *models.Rubric {
	t.Helper()
	return seedNamedRubric(t, s, "For home", "Lighting")
}

func seedNamedRubric(t *testing.T, s *Store, superName, subName string) *models.Rubric {
	t.Helper()
	super := &models.Rubric{Name: superName}
	require.NoError(t, s.Rubrics.db.Create(super).Error)
	sub := &models.Rubric{Name: subName, ParentID: &super.ID}
	require.NoError(t, s.Rubrics.db.Create(sub).Error)
	return sub
}

func seedUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	user, err := s.Users.Register(username, username+"@example.com", "hash")
	require.NoError(t, err)
	_, err = s.Users.Activate(username)
	require.NoError(t, err)
	return user
}

func seedListing(t *testing.T, s *Store, user *models.User, rubric *models.Rubric, title string, createdAt time.Time) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		RubricID:  rubric.ID,
		Title:     title,
		Content:   "content of " + title,
		Price:     10,
		Contacts:  "call me",
		AuthorID:  user.ID,
		IsActive:  true,
		CreatedAt: createdAt,
	}
	_, err := s.Listings.Create(listing)
	require.NoError(t, err)
	return listing
}
