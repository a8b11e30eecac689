package services

import "errors"

// Sentinel errors returned by the services. Handlers map these to HTTP
// statuses with errors.Is.
var (
	ErrDuplicateEmail         = errors.New("email already used")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrDuplicateTag           = errors.New("tag already exists")
	ErrNotFoundOrUnauthorized = errors.New("entry not found or unauthorized")
	ErrUnknownCollection      = errors.New("unknown collection")
)
