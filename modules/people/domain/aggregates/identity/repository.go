package identity

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Identity, error)
	// GetByEmail matches the stored address exactly, case-sensitive.
	GetByEmail(ctx context.Context, email string) (Identity, error)
	Create(ctx context.Context, ident Identity) (Identity, error)
	// Delete removes the identity row, returning the row count for audit.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	// DeleteRoleAssignments removes the identity's role-assignment rows,
	// returning the row count for audit.
	DeleteRoleAssignments(ctx context.Context, id uuid.UUID) (int64, error)
}
