package store

import (
	"strings"

	"gorm.io/gorm"

	"github.com/evgkirov/bboard/models"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Post stores a comment on the listing. Comments are visible immediately;
// there is no moderation step. The handler decides the author name: guests
// supply their own, authenticated users get their username.
func (r *CommentRepository) Post(listingID uint, authorName, content string) (*models.Comment, error) {
	fields := map[string]string{}
	if strings.TrimSpace(authorName) == "" {
		fields["author"] = "must not be empty"
	}
	if strings.TrimSpace(content) == "" {
		fields["content"] = "must not be empty"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	var count int64
	if err := r.db.Model(&models.Listing{}).Where("id = ?", listingID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	comment := &models.Comment{
		ListingID:  listingID,
		AuthorName: authorName,
		Content:    content,
		IsActive:   true,
	}
	if err := r.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// ListActive returns the listing's visible comments, oldest first.
func (r *CommentRepository) ListActive(listingID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("listing_id = ? AND is_active = ?", listingID, true).
		Order("created_at, id").
		Find(&comments).Error
	return comments, err
}
