package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/evgkirov/bboard/models"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAuthFailed is returned for a bad username/password pair.
	ErrAuthFailed = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
)

// ValidationError carries per-field messages for form re-rendering.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Store bundles the repositories over one gorm connection.
type Store struct {
	db       *gorm.DB
	Users    *UserRepository
	Rubrics  *RubricRepository
	Listings *ListingRepository
	Comments *CommentRepository
	Ratings  *RatingRepository
}

func New(db *gorm.DB) *Store {
	listings := NewListingRepository(db)
	return &Store{
		db:       db,
		Users:    NewUserRepository(db, listings),
		Rubrics:  NewRubricRepository(db),
		Listings: listings,
		Comments: NewCommentRepository(db),
		Ratings:  NewRatingRepository(db),
	}
}

// DB exposes the underlying connection for wiring and test seeding.
func (s *Store) DB() *gorm.DB { return s.db }

// Migrate creates the schema for every entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Rubric{},
		&models.Listing{},
		&models.ListingImage{},
		&models.Comment{},
		&models.Rating{},
	)
}
