package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostComment(t *testing.T) {
	s := newTestStore(t)
	rubric := seedRubric(t, s)
	user := seedUser(t, s, "dima")
	listing := seedListing(t, s, user, rubric, "Lamp", time.Now())

	comment, err := s.Comments.Post(listing.ID, "Anna", "still available?")
	require.NoError(t, err)
	assert.True(t, comment.IsActive, "comments are visible immediately")

	_, err = s.Comments.Post(listing.ID, "", "no name")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "author")

	_, err = s.Comments.Post(listing.ID, "Anna", "  ")
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "content")

	_, err = s.Comments.Post(9999, "Anna", "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListActiveCommentsOrdered(t *testing.T) {
	s := newTestStore(t)
	rubric := seedRubric(t, s)
	user := seedUser(t, s, "dima")
	listing := seedListing(t, s, user, rubric, "Lamp", time.Now())

	first, err := s.Comments.Post(listing.ID, "Anna", "first")
	require.NoError(t, err)
	second, err := s.Comments.Post(listing.ID, "Boris", "second")
	require.NoError(t, err)

	// deactivated comments are hidden from the listing page
	third, err := s.Comments.Post(listing.ID, "Vera", "spam")
	require.NoError(t, err)
	require.NoError(t, s.Comments.db.Model(third).Update("is_active", false).Error)

	comments, err := s.Comments.ListActive(listing.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID, "oldest first")
	assert.Equal(t, second.ID, comments[1].ID)
}
