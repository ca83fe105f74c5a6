package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evgkirov/bboard/models"
)

func TestUpsertRating(t *testing.T) {
	s := newTestStore(t)
	rubric := seedRubric(t, s)
	owner := seedUser(t, s, "owner")
	voter := seedUser(t, s, "voter")
	listing := seedListing(t, s, owner, rubric, "Lamp", time.Now())

	created, err := s.Ratings.Upsert(listing.ID, voter.ID, 4)
	require.NoError(t, err)
	assert.True(t, created)

	// re-vote updates in place, no second row
	created, err = s.Ratings.Upsert(listing.ID, voter.ID, 2)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, s.Ratings.db.Model(&models.Rating{}).
		Where("listing_id = ? AND user_id = ?", listing.ID, voter.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count, "exactly one row per (listing, user)")

	rating, err := s.Ratings.Get(listing.ID, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rating.Score, "last submitted score wins")

	// a different user gets their own row
	other := seedUser(t, s, "other")
	created, err = s.Ratings.Upsert(listing.ID, other.ID, 5)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestUpsertRatingValidation(t *testing.T) {
	s := newTestStore(t)
	rubric := seedRubric(t, s)
	owner := seedUser(t, s, "owner")
	listing := seedListing(t, s, owner, rubric, "Lamp", time.Now())

	for _, score := range []int{0, -1, 6, 100} {
		_, err := s.Ratings.Upsert(listing.ID, owner.ID, score)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve, "score %d", score)
	}

	_, err := s.Ratings.Upsert(9999, owner.ID, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Ratings.Get(listing.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound, "rejected votes leave no row")
}
