package repositories

import (
	"fmt"

	"clipvault/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMEntryRepository is a GORM implementation of EntryRepository.
type GORMEntryRepository struct {
	db *gorm.DB
}

// NewGORMEntryRepository creates a new instance of GORMEntryRepository.
func NewGORMEntryRepository(db *gorm.DB) *GORMEntryRepository {
	return &GORMEntryRepository{
		db: db,
	}
}

// GetByUser retrieves all entries owned by userID.
func (r *GORMEntryRepository) GetByUser(userID string) ([]models.Entry, error) {
	var entries []models.Entry
	if err := r.db.Find(&entries, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get entries for user %s: %w", userID, err)
	}
	return entries, nil
}

// Create creates a new entry in the database.
func (r *GORMEntryRepository) Create(entry *models.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// ReplaceOwned overwrites title, label, value and tags of the entry
// matching both entryID and userID in a single conditional update, then
// returns the updated row. A zero-row match surfaces as
// gorm.ErrRecordNotFound; the caller cannot tell a missing entry from one
// owned by somebody else.
func (r *GORMEntryRepository) ReplaceOwned(userID, entryID, title, label, value string, tagIDs []string) (*models.Entry, error) {
	res := r.db.Model(&models.Entry{}).
		Where("id = ? AND user_id = ?", entryID, userID).
		Select("title", "label", "value", "tags").
		Updates(models.Entry{Title: title, Label: label, Value: value, TagIDs: tagIDs})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update entry %s: %w", entryID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("entry %s not found for user %s: %w", entryID, userID, gorm.ErrRecordNotFound)
	}

	var entry models.Entry
	if err := r.db.First(&entry, "id = ? AND user_id = ?", entryID, userID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload entry %s: %w", entryID, err)
	}
	return &entry, nil
}

// DeleteOwned removes the entry matching both entryID and userID.
// Deleting something that is not there is not an error.
func (r *GORMEntryRepository) DeleteOwned(userID, entryID string) error {
	if err := r.db.Delete(&models.Entry{}, "id = ? AND user_id = ?", entryID, userID).Error; err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}
	return nil
}

// DeleteAll removes every entry.
func (r *GORMEntryRepository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&models.Entry{}).Error; err != nil {
		return fmt.Errorf("failed to delete all entries: %w", err)
	}
	return nil
}

// Drop removes the backing entries table entirely.
func (r *GORMEntryRepository) Drop() error {
	if err := r.db.Migrator().DropTable(&models.Entry{}); err != nil {
		return fmt.Errorf("failed to drop entries table: %w", err)
	}
	return nil
}
