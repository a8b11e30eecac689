package services

import (
	"clipvault/internal/models"
	"clipvault/internal/repositories"
)

// TagService handles business logic for the global tag collection.
type TagService struct {
	tagRepo repositories.TagRepository
}

// NewTagService creates a new TagService.
func NewTagService(tagRepo repositories.TagRepository) *TagService {
	return &TagService{
		tagRepo: tagRepo,
	}
}

// ListTags returns every tag in the system. Tags are global, not
// per-user.
func (s *TagService) ListTags() ([]models.Tag, error) {
	return s.tagRepo.GetAll()
}

// CreateTag creates a tag, rejecting only an exact name match. A
// case-variant of an existing tag passes this check; only entry-side
// resolution folds case.
func (s *TagService) CreateTag(name string) (*models.Tag, error) {
	if existing, err := s.tagRepo.GetByName(name); err == nil && existing != nil {
		return nil, ErrDuplicateTag
	}

	tag := &models.Tag{Name: name}
	if err := s.tagRepo.Create(tag); err != nil {
		return nil, err
	}
	return tag, nil
}
