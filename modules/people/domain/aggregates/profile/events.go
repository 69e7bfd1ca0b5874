package profile

import (
	"github.com/google/uuid"
)

type CreatedEvent struct {
	IdentityID uuid.UUID
	Result     Profile
}

type MergedEvent struct {
	IdentityID uuid.UUID
	Source     string
	Result     Profile
}

type DeletedEvent struct {
	IdentityID uuid.UUID
}

func NewCreatedEvent(identityID uuid.UUID, result Profile) *CreatedEvent {
	return &CreatedEvent{IdentityID: identityID, Result: result}
}

func NewMergedEvent(identityID uuid.UUID, source string, result Profile) *MergedEvent {
	return &MergedEvent{IdentityID: identityID, Source: source, Result: result}
}

func NewDeletedEvent(identityID uuid.UUID) *DeletedEvent {
	return &DeletedEvent{IdentityID: identityID}
}
