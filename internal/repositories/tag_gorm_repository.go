package repositories

import (
	"fmt"

	"clipvault/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTagRepository is a GORM implementation of TagRepository.
type GORMTagRepository struct {
	db *gorm.DB
}

// NewGORMTagRepository creates a new instance of GORMTagRepository.
func NewGORMTagRepository(db *gorm.DB) *GORMTagRepository {
	return &GORMTagRepository{
		db: db,
	}
}

// GetAll retrieves every tag in the system.
func (r *GORMTagRepository) GetAll() ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to get all tags: %w", err)
	}
	return tags, nil
}

// GetByName retrieves a tag by its exact name.
func (r *GORMTagRepository) GetByName(name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.First(&tag, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("tag with name %s not found", name)
		}
		return nil, fmt.Errorf("failed to get tag by name %s: %w", name, err)
	}
	return &tag, nil
}

// GetByIDs retrieves the tags whose IDs appear in ids. Missing IDs are
// simply absent from the result.
func (r *GORMTagRepository) GetByIDs(ids []string) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := r.db.Find(&tags, "id IN ?", ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get tags by IDs: %w", err)
	}
	return tags, nil
}

// Create creates a new tag in the database.
func (r *GORMTagRepository) Create(tag *models.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	if err := r.db.Create(tag).Error; err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// FindOrCreate returns the tag whose name matches case-insensitively,
// creating it with the given casing if none exists. Lookup and insert run
// in one transaction so concurrent resolutions of the same name cannot
// both miss the lookup.
func (r *GORMTagRepository) FindOrCreate(name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&tag, "LOWER(name) = LOWER(?)", name).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		tag = models.Tag{ID: uuid.New().String(), Name: name}
		return tx.Create(&tag).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tag %s: %w", name, err)
	}
	return &tag, nil
}

// DeleteAll removes every tag.
func (r *GORMTagRepository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&models.Tag{}).Error; err != nil {
		return fmt.Errorf("failed to delete all tags: %w", err)
	}
	return nil
}

// Drop removes the backing tags table entirely.
func (r *GORMTagRepository) Drop() error {
	if err := r.db.Migrator().DropTable(&models.Tag{}); err != nil {
		return fmt.Errorf("failed to drop tags table: %w", err)
	}
	return nil
}
