package profile

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByIdentity(ctx context.Context, identityID uuid.UUID) (Profile, error)
	// Upsert applies the patch with per-field coalesce semantics, inserting
	// the row when the identity has no profile yet. Child tables backing the
	// family and education blocks are refreshed when those blocks are present.
	Upsert(ctx context.Context, identityID uuid.UUID, patch *Patch) (Profile, error)
	// Delete removes the profile row and its child rows, returning the
	// number of profile rows removed for audit reporting.
	Delete(ctx context.Context, identityID uuid.UUID) (int64, error)
}
