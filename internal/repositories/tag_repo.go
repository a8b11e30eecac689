package repositories

import "clipvault/internal/models"

// TagRepository defines the interface for tag data access.
//
// Tags have two distinct lookup rules that must not be unified: direct
// creation checks the exact name, while FindOrCreate matches
// case-insensitively and reuses whatever casing exists.
type TagRepository interface {
	GetAll() ([]models.Tag, error)
	GetByName(name string) (*models.Tag, error)
	GetByIDs(ids []string) ([]models.Tag, error)
	Create(tag *models.Tag) error
	FindOrCreate(name string) (*models.Tag, error)
	DeleteAll() error
	Drop() error
}
