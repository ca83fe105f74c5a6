package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evgkirov/bboard/models"
)

func TestRegisterCreatesInactiveUser(t *testing.T) {
	s := newTestStore(t)

	user, err := s.Users.Register("dima", "dima@example.com", "hash")
	require.NoError(t, err)
	assert.False(t, user.IsActivated)
	assert.False(t, user.IsActive)
	assert.True(t, user.SendMessages)

	_, err = s.Users.Register("dima", "other@example.com", "hash")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = s.Users.Register("", "x@example.com", "hash")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestActivate(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Users.Register("dima", "dima@example.com", "hash")
	require.NoError(t, err)

	already, err := s.Users.Activate("dima")
	require.NoError(t, err)
	assert.False(t, already)

	user, err := s.Users.GetByUsername("dima")
	require.NoError(t, err)
	assert.True(t, user.IsActivated)
	assert.True(t, user.IsActive)

	already, err = s.Users.Activate("dima")
	require.NoError(t, err)
	assert.True(t, already, "second activation is informational, not an error")

	_, err = s.Users.Activate("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Users.Register("dima", "dima@example.com", "goodhash")
	require.NoError(t, err)

	match := func(hash string) bool { return hash == "goodhash" }

	// not activated yet
	_, err = s.Users.Authenticate("dima", match)
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = s.Users.Activate("dima")
	require.NoError(t, err)

	user, err := s.Users.Authenticate("dima", match)
	require.NoError(t, err)
	assert.Equal(t, "dima", user.Username)

	_, err = s.Users.Authenticate("dima", func(string) bool { return false })
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = s.Users.Authenticate("nobody", match)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	rubric := seedRubric(t, s)
	owner := seedUser(t, s, "owner")
	voter := seedUser(t, s, "voter")

	first := seedListing(t, s, owner, rubric, "First", time.Now())
	second := seedListing(t, s, owner, rubric, "Second", time.Now())
	require.NoError(t, s.Listings.AddImage(first.ID, "images/a.jpg"))
	require.NoError(t, s.Listings.AddImage(first.ID, "images/b.jpg"))
	_, err := s.Comments.Post(first.ID, "guest", "nice lamp")
	require.NoError(t, err)
	_, err = s.Ratings.Upsert(second.ID, voter.ID, 5)
	require.NoError(t, err)

	keys, err := s.Users.Delete(owner.ID)
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	_, err = s.Users.Get(owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	db := s.Listings.db
	for _, model := range []any{&models.Listing{}, &models.ListingImage{}, &models.Comment{}, &models.Rating{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "no residual rows after user delete")
	}
}

func TestUpdateProfileAndPassword(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "dima")

	require.NoError(t, s.Users.UpdateProfile(user.ID, "new@example.com", false))
	got, err := s.Users.Get(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
	assert.False(t, got.SendMessages)

	err = s.Users.UpdateProfile(user.ID, "", false)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	require.NoError(t, s.Users.SetPasswordHash(user.ID, "newhash"))
	got, err = s.Users.Get(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)

	assert.ErrorIs(t, s.Users.UpdateProfile(9999, "x@example.com", true), ErrNotFound)
}
