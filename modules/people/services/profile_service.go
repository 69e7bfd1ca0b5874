package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/identity"
	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/profile"
	"github.com/iota-uz/people-sync/modules/people/infrastructure/persistence"
	"github.com/iota-uz/people-sync/modules/people/mapping"
	"github.com/iota-uz/people-sync/pkg/composables"
	"github.com/iota-uz/people-sync/pkg/eventbus"
)

// Merge sources, used for logging, events and metrics labels.
const (
	SourceExtraction = "extraction"
	SourceEdited     = "edited"
	SourceImport     = "import"
)

// TxRunner owns the transaction boundary around a unit of repository work.
// Production wiring uses composables.InTx; tests against the in-memory store
// pass a direct runner.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

func DirectTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type Option func(*ProfileService)

func WithTxRunner(run TxRunner) Option {
	return func(s *ProfileService) { s.inTx = run }
}

// ProfileService resolves identities and merges patches into stored profiles.
// A merge never erases stored data: absent patch fields keep their values.
type ProfileService struct {
	identities identity.Repository
	profiles   profile.Repository
	employees  employee.Repository
	mapper     *mapping.Mapper
	publisher  eventbus.EventBus
	inTx       TxRunner
	locks      *keyedMutex
}

func NewProfileService(
	identities identity.Repository,
	profiles profile.Repository,
	employees employee.Repository,
	mapper *mapping.Mapper,
	publisher eventbus.EventBus,
	opts ...Option,
) *ProfileService {
	s := &ProfileService{
		identities: identities,
		profiles:   profiles,
		employees:  employees,
		mapper:     mapper,
		publisher:  publisher,
		inTx:       composables.InTx,
		locks:      newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractAndSave maps a document-extraction field bag and merges it for the
// hinted caller, or by email when no hint is given. Privileged callers may
// create a new identity for an unknown email.
func (s *ProfileService) ExtractAndSave(ctx context.Context, bag mapping.RawRecord, hinted *uuid.UUID, privileged bool) (profile.Profile, identity.Identity, error) {
	patch, err := s.mapper.MapRaw(bag)
	if err != nil {
		return profile.Profile{}, identity.Identity{}, ErrValidation.WithDetails(err.Error())
	}

	merged, ident, err := s.Merge(ctx, patch, hinted, privileged, SourceExtraction)
	if err != nil {
		return profile.Profile{}, identity.Identity{}, err
	}
	s.syncLegacy(ctx, ident.ID(), patch)
	return merged, ident, nil
}

// SaveEdited merges a manually edited patch for a known identity. Form
// submissions are not privileged and never create identities.
func (s *ProfileService) SaveEdited(ctx context.Context, identityID uuid.UUID, patch *profile.Patch) (profile.Profile, error) {
	merged, ident, err := s.Merge(ctx, patch, &identityID, false, SourceEdited)
	if err != nil {
		return profile.Profile{}, err
	}
	s.syncLegacy(ctx, ident.ID(), patch)
	return merged, nil
}

// Merge resolves the target identity and upserts the patch in one
// transaction. Merges against the same identity are serialized.
func (s *ProfileService) Merge(ctx context.Context, patch *profile.Patch, hinted *uuid.UUID, privileged bool, source string) (profile.Profile, identity.Identity, error) {
	if patch == nil || patch.IsEmpty() {
		return profile.Profile{}, identity.Identity{}, ErrValidation.WithDetails("patch carries no fields")
	}

	ident, created, err := s.resolveIdentity(ctx, patch, hinted, privileged)
	if err != nil {
		return profile.Profile{}, identity.Identity{}, err
	}

	s.locks.Lock(ident.ID())
	defer s.locks.Unlock(ident.ID())

	var merged profile.Profile
	err = s.inTx(ctx, func(txCtx context.Context) error {
		var upErr error
		merged, upErr = s.profiles.Upsert(txCtx, ident.ID(), patch)
		return upErr
	})
	if err != nil {
		composables.UseLogger(ctx).WithError(err).
			WithField("identity_id", ident.ID()).
			Error("profile merge failed")
		return profile.Profile{}, identity.Identity{}, ErrPersistence
	}

	mergesTotal.WithLabelValues(source).Inc()
	if created {
		s.publisher.Publish(profile.NewCreatedEvent(ident.ID(), merged))
	}
	s.publisher.Publish(profile.NewMergedEvent(ident.ID(), source, merged))
	return merged, ident, nil
}

// GetByIdentity returns the stored profile for an identity.
func (s *ProfileService) GetByIdentity(ctx context.Context, identityID uuid.UUID) (profile.Profile, error) {
	var found profile.Profile
	err := s.inTx(ctx, func(txCtx context.Context) error {
		var getErr error
		found, getErr = s.profiles.GetByIdentity(txCtx, identityID)
		return getErr
	})
	if err != nil {
		if errors.Is(err, persistence.ErrProfileNotFound) {
			return profile.Profile{}, ErrNotFound
		}
		composables.UseLogger(ctx).WithError(err).WithField("identity_id", identityID).Error("profile lookup failed")
		return profile.Profile{}, ErrPersistence
	}
	return found, nil
}

// Delete removes a person entirely. The order is fixed: legacy employee row,
// profile with its child rows, role assignments, identity. Each step's row
// count is logged so operators can audit what a deletion actually touched.
func (s *ProfileService) Delete(ctx context.Context, identityID uuid.UUID) error {
	log := composables.UseLogger(ctx).WithField("identity_id", identityID)

	err := s.inTx(ctx, func(txCtx context.Context) error {
		if _, err := s.identities.GetByID(txCtx, identityID); err != nil {
			if errors.Is(err, persistence.ErrIdentityNotFound) {
				return ErrNotFound
			}
			return err
		}

		employees, err := s.employees.Delete(txCtx, identityID)
		if err != nil {
			return err
		}
		profiles, err := s.profiles.Delete(txCtx, identityID)
		if err != nil {
			return err
		}
		roles, err := s.identities.DeleteRoleAssignments(txCtx, identityID)
		if err != nil {
			return err
		}
		identities, err := s.identities.Delete(txCtx, identityID)
		if err != nil {
			return err
		}

		log.WithFields(logrus.Fields{
			"legacy_employees": employees,
			"profiles":         profiles,
			"role_assignments": roles,
			"identities":       identities,
		}).Info("person deleted")
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.WithError(err).Error("person delete failed")
		return ErrPersistence
	}

	s.publisher.Publish(profile.NewDeletedEvent(identityID))
	return nil
}

func (s *ProfileService) resolveIdentity(ctx context.Context, patch *profile.Patch, hinted *uuid.UUID, privileged bool) (identity.Identity, bool, error) {
	if hinted != nil {
		ident, err := s.identities.GetByID(ctx, *hinted)
		if err != nil {
			if errors.Is(err, persistence.ErrIdentityNotFound) {
				return identity.Identity{}, false, ErrNotFound.WithDetails("hinted identity does not exist")
			}
			composables.UseLogger(ctx).WithError(err).WithField("identity_id", *hinted).Error("identity lookup failed")
			return identity.Identity{}, false, ErrPersistence
		}
		return ident, false, nil
	}

	email := patch.Email()
	if email == "" {
		return identity.Identity{}, false, ErrValidation.WithDetails("no identity hint and no email field resolved")
	}

	ident, err := s.identities.GetByEmail(ctx, email)
	if err == nil {
		return ident, false, nil
	}
	if !errors.Is(err, persistence.ErrIdentityNotFound) {
		composables.UseLogger(ctx).WithError(err).Error("identity lookup by email failed")
		return identity.Identity{}, false, ErrPersistence
	}

	if !privileged {
		return identity.Identity{}, false, ErrNotFound.WithDetails("no identity matches the supplied email")
	}

	created, err := s.identities.Create(ctx, identity.New(email, patch.Name()))
	if err != nil {
		// A concurrent privileged merge may have won the unique-email race.
		if existing, lookupErr := s.identities.GetByEmail(ctx, email); lookupErr == nil {
			return existing, false, nil
		}
		composables.UseLogger(ctx).WithError(err).Error("identity create failed")
		return identity.Identity{}, false, ErrPersistence
	}
	return created, true, nil
}

// syncLegacy mirrors the direct-counterpart fields into the legacy employee
// record after the profile merge committed. It is best effort: a failure here
// leaves the canonical profile correct and is logged as a partial write.
func (s *ProfileService) syncLegacy(ctx context.Context, profileID uuid.UUID, patch *profile.Patch) {
	legacyPatch := mapping.LegacyPatch(patch)
	if legacyPatch.IsEmpty() {
		return
	}

	err := s.inTx(ctx, func(txCtx context.Context) error {
		return s.employees.UpsertCoalesce(txCtx, profileID, legacyPatch)
	})
	if err != nil {
		legacySyncFailures.Inc()
		composables.UseLogger(ctx).WithError(err).WithFields(logrus.Fields{
			"profile_id":    profileID,
			"partial_write": true,
		}).Warn("legacy employee sync failed after profile merge")
	}
}
