package services

import (
	"errors"
	"fmt"
	"strings"

	"clipvault/internal/models"
	"clipvault/internal/repositories"

	"gorm.io/gorm"
)

// EntryService handles business logic for entries, including tag
// resolution on create and update.
type EntryService struct {
	entryRepo repositories.EntryRepository
	tagRepo   repositories.TagRepository
}

// NewEntryService creates a new EntryService.
func NewEntryService(entryRepo repositories.EntryRepository, tagRepo repositories.TagRepository) *EntryService {
	return &EntryService{
		entryRepo: entryRepo,
		tagRepo:   tagRepo,
	}
}

// ListEntries returns all entries owned by userID with their tag
// references expanded to id/name pairs. Tag IDs that no longer resolve
// are dropped from the expansion.
func (s *EntryService) ListEntries(userID string) ([]models.EntryDetail, error) {
	entries, err := s.entryRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	// Collect names for every referenced tag in one query.
	var allIDs []string
	for _, e := range entries {
		allIDs = append(allIDs, e.TagIDs...)
	}
	tags, err := s.tagRepo.GetByIDs(allIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(tags))
	for _, t := range tags {
		names[t.ID] = t.Name
	}

	details := make([]models.EntryDetail, 0, len(entries))
	for _, e := range entries {
		refs := make([]models.TagRef, 0, len(e.TagIDs))
		for _, id := range e.TagIDs {
			if name, ok := names[id]; ok {
				refs = append(refs, models.TagRef{ID: id, Name: name})
			}
		}
		details = append(details, models.EntryDetail{
			ID:        e.ID,
			Title:     e.Title,
			Label:     e.Label,
			Value:     e.Value,
			Tags:      refs,
			UserID:    e.UserID,
			CreatedAt: e.CreatedAt,
		})
	}
	return details, nil
}

// CreateEntry resolves each tag name in input order and persists a new
// entry for userID. Names are taken as-is: no trimming, and repeated
// names produce the same resolved ID repeated.
func (s *EntryService) CreateEntry(userID, title, label, value string, tagNames []string) (*models.Entry, error) {
	tagIDs, err := s.resolveTags(tagNames)
	if err != nil {
		return nil, err
	}

	entry := &models.Entry{
		Title:  title,
		Label:  label,
		Value:  value,
		TagIDs: tagIDs,
		UserID: userID,
	}
	if err := s.entryRepo.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry replaces title, label, value and tags of an owned entry.
// Unlike create, tag names are trimmed and empties dropped before
// resolution. Returns ErrNotFoundOrUnauthorized when no entry matches
// both the ID and the owner.
func (s *EntryService) UpdateEntry(userID, entryID, title, label, value string, tagNames []string) (*models.Entry, error) {
	cleaned := make([]string, 0, len(tagNames))
	for _, name := range tagNames {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	tagIDs, err := s.resolveTags(cleaned)
	if err != nil {
		return nil, err
	}

	entry, err := s.entryRepo.ReplaceOwned(userID, entryID, title, label, value, tagIDs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, err
	}
	return entry, nil
}

// DeleteEntry removes an owned entry. It succeeds whether or not a
// matching entry existed.
func (s *EntryService) DeleteEntry(userID, entryID string) error {
	return s.entryRepo.DeleteOwned(userID, entryID)
}

// resolveTags maps each name to a tag ID via case-insensitive
// find-or-create, preserving input order and duplicates. A storage fault
// aborts the whole resolution; tags already created stay created.
func (s *EntryService) resolveTags(names []string) ([]string, error) {
	tagIDs := make([]string, 0, len(names))
	for _, name := range names {
		tag, err := s.tagRepo.FindOrCreate(name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tags: %w", err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	return tagIDs, nil
}
