package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/evgkirov/bboard/models"
)

// RubricRepository reads the two-level category tree. The tree is mutated
// only through an operator surface, so there are no write methods here.
type RubricRepository struct {
	db *gorm.DB
}

func NewRubricRepository(db *gorm.DB) *RubricRepository {
	return &RubricRepository{db: db}
}

// SuperRubrics lists the top-level rubrics ordered by (order, name).
func (r *RubricRepository) SuperRubrics() ([]models.Rubric, error) {
	var rubrics []models.Rubric
	err := r.db.Where("parent_id IS NULL").
		Order("sort_order, name").
		Find(&rubrics).Error
	return rubrics, err
}

// SubRubrics lists the children of one super-rubric ordered by (order, name).
func (r *RubricRepository) SubRubrics(superID uint) ([]models.Rubric, error) {
	var rubrics []models.Rubric
	err := r.db.Where("parent_id = ?", superID).
		Order("sort_order, name").
		Find(&rubrics).Error
	return rubrics, err
}

// AllSubRubrics lists every sub-rubric with its parent preloaded, ordered
// by the parent's (order, name) then its own, for navigation menus.
func (r *RubricRepository) AllSubRubrics() ([]models.Rubric, error) {
	var rubrics []models.Rubric
	err := r.db.Joins("Parent").
		Where("rubrics.parent_id IS NOT NULL").
		Order(`"Parent".sort_order, "Parent".name, rubrics.sort_order, rubrics.name`).
		Find(&rubrics).Error
	return rubrics, err
}

// SubRubric fetches one sub-rubric; a top-level rubric id is ErrNotFound.
func (r *RubricRepository) SubRubric(id uint) (*models.Rubric, error) {
	var rubric models.Rubric
	err := r.db.Preload("Parent").
		Where("id = ? AND parent_id IS NOT NULL", id).
		First(&rubric).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rubric, nil
}
