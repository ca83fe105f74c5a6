package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/evgkirov/bboard/models"
)

const maxTitleLen = 40

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Filter narrows ListActive: both fields are optional.
type Filter struct {
	RubricID uint
	Keyword  string
}

// Page is one page of active listings, newest first.
type Page struct {
	Items      []models.Listing
	Number     int
	TotalPages int
	TotalItems int64
	PageSize   int
}

func (p *Page) HasPrev() bool { return p.Number > 1 }
func (p *Page) HasNext() bool { return p.Number < p.TotalPages }

func validateListing(title string, price float64) error {
	fields := map[string]string{}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "must not be empty"
	} else if len([]rune(title)) > maxTitleLen {
		fields["title"] = "must be at most 40 characters"
	}
	if price < 0 {
		fields["price"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Create validates and inserts a new listing, returning its id.
func (r *ListingRepository) Create(listing *models.Listing) (uint, error) {
	if err := validateListing(listing.Title, listing.Price); err != nil {
		return 0, err
	}
	var rubric models.Rubric
	if err := r.db.Where("id = ? AND parent_id IS NOT NULL", listing.RubricID).First(&rubric).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, newValidationError("rubric", "no such rubric")
		}
		return 0, err
	}
	if err := r.db.Create(listing).Error; err != nil {
		return 0, err
	}
	return listing.ID, nil
}

// Update rewrites the editable fields. Authorization is the caller's job;
// CreatedAt and AuthorID never change.
func (r *ListingRepository) Update(id uint, listing *models.Listing) error {
	if err := validateListing(listing.Title, listing.Price); err != nil {
		return err
	}
	res := r.db.Model(&models.Listing{}).Where("id = ?", id).Updates(map[string]any{
		"rubric_id": listing.RubricID,
		"title":     listing.Title,
		"content":   listing.Content,
		"price":     listing.Price,
		"contacts":  listing.Contacts,
		"image_key": listing.ImageKey,
		"is_active": listing.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Get(id uint) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.Preload("Images").Preload("Rubric").Preload("Author").First(&listing, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// Delete removes the listing's additional images, comments and ratings,
// then the listing itself, in one transaction. It returns the storage keys
// of every removed image so the caller can drop the objects.
func (r *ListingRepository) Delete(id uint) ([]string, error) {
	var keys []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		keys, err = deleteListingTx(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func deleteListingTx(tx *gorm.DB, id uint) ([]string, error) {
	var listing models.Listing
	if err := tx.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var images []models.ListingImage
	if err := tx.Where("listing_id = ?", id).Find(&images).Error; err != nil {
		return nil, err
	}
	var keys []string
	if listing.ImageKey != "" {
		keys = append(keys, listing.ImageKey)
	}
	for _, img := range images {
		keys = append(keys, img.ImageKey)
	}
	if err := tx.Where("listing_id = ?", id).Delete(&models.ListingImage{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("listing_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("listing_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
		return nil, err
	}
	return keys, tx.Delete(&models.Listing{}, id).Error
}

// ListActive returns one page of active listings matching the filter,
// newest first. Keyword matching is a case-insensitive substring match on
// title or content. Out-of-range page numbers clamp to the valid range.
func (r *ListingRepository) ListActive(f Filter, page, pageSize int) (*Page, error) {
	q := r.db.Model(&models.Listing{}).Where("is_active = ?", true)
	if f.RubricID != 0 {
		q = q.Where("rubric_id = ?", f.RubricID)
	}
	if f.Keyword != "" {
		kw := "%" + strings.ToLower(f.Keyword) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", kw, kw)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	var items []models.Listing
	err := q.Preload("Rubric").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return &Page{
		Items:      items,
		Number:     page,
		TotalPages: totalPages,
		TotalItems: total,
		PageSize:   pageSize,
	}, nil
}

// Latest returns the n newest active listings for the index page.
func (r *ListingRepository) Latest(n int) ([]models.Listing, error) {
	var items []models.Listing
	err := r.db.Preload("Rubric").
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&items).Error
	return items, err
}

// ByAuthor returns every listing owned by the user, newest first.
func (r *ListingRepository) ByAuthor(authorID uint) ([]models.Listing, error) {
	var items []models.Listing
	err := r.db.Preload("Rubric").
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	return items, err
}

// AverageRating returns the mean score, or 0 when the listing has none.
func (r *ListingRepository) AverageRating(listingID uint) (float64, error) {
	var avg float64
	err := r.db.Model(&models.Rating{}).
		Where("listing_id = ?", listingID).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avg).Error
	return avg, err
}

func (r *ListingRepository) RatingCount(listingID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Rating{}).Where("listing_id = ?", listingID).Count(&count).Error
	return count, err
}

// AddImage attaches an additional image to the listing.
func (r *ListingRepository) AddImage(listingID uint, imageKey string) error {
	var count int64
	if err := r.db.Model(&models.Listing{}).Where("id = ?", listingID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return r.db.Create(&models.ListingImage{ListingID: listingID, ImageKey: imageKey}).Error
}

// RemoveImage drops one additional image row, returning its storage key.
func (r *ListingRepository) RemoveImage(listingID, imageID uint) (string, error) {
	var img models.ListingImage
	err := r.db.Where("id = ? AND listing_id = ?", imageID, listingID).First(&img).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if err := r.db.Delete(&img).Error; err != nil {
		return "", err
	}
	return img.ImageKey, nil
}
