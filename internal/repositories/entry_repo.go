package repositories

import "clipvault/internal/models"

// EntryRepository defines the interface for entry data access. Every
// read or write that targets a single entry is scoped to its owner.
type EntryRepository interface {
	GetByUser(userID string) ([]models.Entry, error)
	Create(entry *models.Entry) error
	ReplaceOwned(userID, entryID, title, label, value string, tagIDs []string) (*models.Entry, error)
	DeleteOwned(userID, entryID string) error
	DeleteAll() error
	Drop() error
}
