package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity is the stable person-level key owning one Profile and at most one
// legacy Employee record. It is never deleted implicitly.
type Identity struct {
	id        uuid.UUID
	email     string
	fullName  string
	createdAt time.Time
	updatedAt time.Time
}

func New(email, fullName string) Identity {
	return Identity{
		id:       uuid.New(),
		email:    strings.TrimSpace(email),
		fullName: strings.TrimSpace(fullName),
	}
}

func Hydrate(id uuid.UUID, email, fullName string, createdAt, updatedAt time.Time) Identity {
	return Identity{
		id:        id,
		email:     email,
		fullName:  fullName,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (i Identity) ID() uuid.UUID        { return i.id }
func (i Identity) Email() string        { return i.email }
func (i Identity) FullName() string     { return i.fullName }
func (i Identity) CreatedAt() time.Time { return i.createdAt }
func (i Identity) UpdatedAt() time.Time { return i.updatedAt }
func (i Identity) IsZero() bool         { return i.id == uuid.Nil }
