package employee

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByProfile(ctx context.Context, profileID uuid.UUID) (Employee, error)
	// UpsertCoalesce applies the patch field-by-field, keeping stored values
	// for absent fields. Used by single-record saves.
	UpsertCoalesce(ctx context.Context, profileID uuid.UUID, patch *Patch) error
	// Replace deletes the row and reinserts it from the given record. Batch
	// import treats the legacy table as authoritatively refreshed per row.
	Replace(ctx context.Context, record Employee) error
	// Delete removes the legacy row, returning the row count for audit.
	Delete(ctx context.Context, profileID uuid.UUID) (int64, error)
}
