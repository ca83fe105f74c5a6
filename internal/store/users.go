package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/evgkirov/bboard/models"
)

type UserRepository struct {
	db       *gorm.DB
	listings *ListingRepository
}

func NewUserRepository(db *gorm.DB, listings *ListingRepository) *UserRepository {
	return &UserRepository{db: db, listings: listings}
}

// Register creates an inactive user. The caller hashes the password and
// issues the activation token for the stored username.
func (r *UserRepository) Register(username, email, passwordHash string) (*models.User, error) {
	if username == "" {
		return nil, newValidationError("username", "must not be empty")
	}
	if email == "" {
		return nil, newValidationError("email", "must not be empty")
	}
	var count int64
	if err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		SendMessages: true,
		IsActivated:  false,
		IsActive:     false,
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Activate marks the named user activated and active. The returned bool
// reports whether the user had already been activated, which is
// informational, not an error.
func (r *UserRepository) Activate(username string) (alreadyActivated bool, err error) {
	user, err := r.GetByUsername(username)
	if err != nil {
		return false, err
	}
	if user.IsActivated {
		return true, nil
	}
	err = r.db.Model(user).Updates(map[string]any{
		"is_activated": true,
		"is_active":    true,
	}).Error
	return false, err
}

// Authenticate verifies the password with the supplied compare function
// and rejects accounts that have not been activated.
func (r *UserRepository) Authenticate(username string, compare func(hash string) bool) (*models.User, error) {
	user, err := r.GetByUsername(username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAuthFailed
		}
		return nil, err
	}
	if !compare(user.PasswordHash) || !user.IsActive {
		return nil, ErrAuthFailed
	}
	return user, nil
}

func (r *UserRepository) Get(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the mutable profile fields.
func (r *UserRepository) UpdateProfile(id uint, email string, sendMessages bool) error {
	if email == "" {
		return newValidationError("email", "must not be empty")
	}
	res := r.db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"email":         email,
		"send_messages": sendMessages,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetPasswordHash(id uint, passwordHash string) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user after deleting every listing they own, each with
// its dependents. It returns the storage keys of all images that were
// attached to the deleted listings so the caller can drop the objects.
func (r *UserRepository) Delete(id uint) ([]string, error) {
	var keys []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var listings []models.Listing
		if err := tx.Where("author_id = ?", id).Find(&listings).Error; err != nil {
			return err
		}
		for _, listing := range listings {
			k, err := deleteListingTx(tx, listing.ID)
			if err != nil {
				return err
			}
			keys = append(keys, k...)
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
