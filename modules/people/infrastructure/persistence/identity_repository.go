package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/identity"
	"github.com/iota-uz/people-sync/pkg/composables"
)

var ErrIdentityNotFound = gerrors.New("identity not found")

type PgIdentityRepository struct{}

func NewIdentityRepository() identity.Repository {
	return &PgIdentityRepository{}
}

func (r *PgIdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (identity.Identity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return identity.Identity{}, err
	}

	var (
		email, fullName      string
		createdAt, updatedAt time.Time
	)
	err = tx.QueryRow(ctx, `
SELECT email, full_name, created_at, updated_at FROM identities WHERE id = $1
`, pgUUID(id)).Scan(&email, &fullName, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Identity{}, ErrIdentityNotFound
		}
		return identity.Identity{}, err
	}

	return identity.Hydrate(id, email, fullName, createdAt, updatedAt), nil
}

func (r *PgIdentityRepository) GetByEmail(ctx context.Context, email string) (identity.Identity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return identity.Identity{}, err
	}

	var (
		id                   uuid.UUID
		storedEmail          string
		fullName             string
		createdAt, updatedAt time.Time
	)
	err = tx.QueryRow(ctx, `
SELECT id, email, full_name, created_at, updated_at FROM identities WHERE email = $1
`, email).Scan(&id, &storedEmail, &fullName, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Identity{}, ErrIdentityNotFound
		}
		return identity.Identity{}, err
	}

	return identity.Hydrate(id, storedEmail, fullName, createdAt, updatedAt), nil
}

func (r *PgIdentityRepository) Create(ctx context.Context, ident identity.Identity) (identity.Identity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return identity.Identity{}, err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO identities (id, email, full_name, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
`, pgUUID(ident.ID()), ident.Email(), ident.FullName()); err != nil {
		return identity.Identity{}, gerrors.Wrap(err, "failed to create identity")
	}

	return r.GetByID(ctx, ident.ID())
}

func (r *PgIdentityRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM identities WHERE id = $1`, pgUUID(id))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgIdentityRepository) DeleteRoleAssignments(ctx context.Context, id uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM role_assignments WHERE identity_id = $1`, pgUUID(id))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
