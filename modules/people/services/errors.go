package services

import (
	"github.com/iota-uz/people-sync/pkg/serrors"
)

// Error codes surfaced to API consumers. Storage details never travel in
// these; they are logged where the failure happened.
var (
	ErrValidation  = serrors.NewError("PEOPLE_VALIDATION", "invalid input", "")
	ErrNotFound    = serrors.NewError("PEOPLE_NOT_FOUND", "person not found", "")
	ErrPersistence = serrors.NewError("PEOPLE_PERSISTENCE", "storage operation failed", "")
)
