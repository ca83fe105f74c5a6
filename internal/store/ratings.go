package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evgkirov/bboard/models"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert records the user's score for a listing: first vote inserts,
// re-vote overwrites in place. The write is a single INSERT ... ON
// CONFLICT riding the (listing_id, user_id) unique index, so two
// concurrent votes for the same pair can never produce two rows. The
// returned bool reports whether a new row was created; it is read before
// the write and is feedback only.
func (r *RatingRepository) Upsert(listingID, userID uint, score int) (created bool, err error) {
	if score < 1 || score > 5 {
		return false, newValidationError("score", "must be between 1 and 5")
	}
	var count int64
	if err := r.db.Model(&models.Listing{}).Where("id = ?", listingID).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, ErrNotFound
	}

	var existing models.Rating
	err = r.db.Where("listing_id = ? AND user_id = ?", listingID, userID).First(&existing).Error
	switch {
	case err == nil:
		created = false
	case errors.Is(err, gorm.ErrRecordNotFound):
		created = true
	default:
		return false, err
	}

	rating := models.Rating{ListingID: listingID, UserID: userID, Score: score}
	err = r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "listing_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score"}),
	}).Create(&rating).Error
	if err != nil {
		return false, err
	}
	return created, nil
}

// Get returns the user's rating for the listing, if any.
func (r *RatingRepository) Get(listingID, userID uint) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.Where("listing_id = ? AND user_id = ?", listingID, userID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rating, nil
}
