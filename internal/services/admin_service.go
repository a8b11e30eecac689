package services

import (
	"fmt"

	"clipvault/internal/repositories"
)

// AdminService handles the destructive maintenance operations behind the
// admin routes.
type AdminService struct {
	userRepo  repositories.UserRepository
	entryRepo repositories.EntryRepository
	tagRepo   repositories.TagRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(userRepo repositories.UserRepository, entryRepo repositories.EntryRepository, tagRepo repositories.TagRepository) *AdminService {
	return &AdminService{
		userRepo:  userRepo,
		entryRepo: entryRepo,
		tagRepo:   tagRepo,
	}
}

// DeleteNonAdminUsers removes every account without the admin flag.
func (s *AdminService) DeleteNonAdminUsers() error {
	return s.userRepo.DeleteNonAdmins()
}

// DeleteAllEntries removes every entry in the system.
func (s *AdminService) DeleteAllEntries() error {
	return s.entryRepo.DeleteAll()
}

// DeleteAllTags removes every tag in the system.
func (s *AdminService) DeleteAllTags() error {
	return s.tagRepo.DeleteAll()
}

// DropCollection drops the backing table for a named collection. Only the
// enumerated collection names are accepted; an arbitrary caller-supplied
// string is not a droppable target.
func (s *AdminService) DropCollection(name string) error {
	switch name {
	case "users":
		return s.userRepo.Drop()
	case "entries":
		return s.entryRepo.Drop()
	case "tags":
		return s.tagRepo.Drop()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
}
