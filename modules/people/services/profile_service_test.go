package services_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/identity"
	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/profile"
	"github.com/iota-uz/people-sync/modules/people/infrastructure/persistence"
	"github.com/iota-uz/people-sync/modules/people/mapping"
	"github.com/iota-uz/people-sync/modules/people/services"
	"github.com/iota-uz/people-sync/pkg/composables"
	"github.com/iota-uz/people-sync/pkg/eventbus"
)

func str(s string) *string { return &s }

func mustLegacy(profileID uuid.UUID) employee.Employee {
	return employee.Employee{ProfileID: profileID, FullName: "Asha Rao"}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testCtx() context.Context {
	return composables.WithLogger(context.Background(), logrus.NewEntry(quietLogger()))
}

func newFixture(t *testing.T) (*persistence.InMemoryStore, *services.ProfileService) {
	t.Helper()
	store := persistence.NewInMemoryStore()
	mapper, err := mapping.NewMapper()
	require.NoError(t, err)
	svc := services.NewProfileService(
		store.Identities(),
		store.Profiles(),
		store.Employees(),
		mapper,
		eventbus.NewEventPublisher(quietLogger()),
		services.WithTxRunner(services.DirectTx),
	)
	return store, svc
}

func TestMerge_CreatesIdentityForPrivilegedCaller(t *testing.T) {
	store, svc := newFixture(t)

	merged, ident, err := svc.Merge(testCtx(), &profile.Patch{
		OfficialEmail: str("asha@corp.example"),
		FullName:      str("Asha Rao"),
	}, nil, true, services.SourceExtraction)
	require.NoError(t, err)

	require.Equal(t, "asha@corp.example", ident.Email())
	require.Equal(t, "Asha Rao", merged.FullName)
	require.Equal(t, 1, store.ProfileCount())
}

func TestMerge_UnprivilegedUnknownEmail(t *testing.T) {
	_, svc := newFixture(t)

	_, _, err := svc.Merge(testCtx(), &profile.Patch{
		OfficialEmail: str("nobody@corp.example"),
	}, nil, false, services.SourceEdited)
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestMerge_NoEmailNoHint(t *testing.T) {
	_, svc := newFixture(t)

	_, _, err := svc.Merge(testCtx(), &profile.Patch{
		Phone: str("555-0101"),
	}, nil, true, services.SourceExtraction)
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestMerge_EmptyPatch(t *testing.T) {
	_, svc := newFixture(t)

	_, _, err := svc.Merge(testCtx(), &profile.Patch{}, nil, true, services.SourceExtraction)
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestMerge_HintedIdentityWinsOverEmail(t *testing.T) {
	store, svc := newFixture(t)

	hinted, err := store.Identities().Create(testCtx(), identity.New("hinted@corp.example", "Hinted"))
	require.NoError(t, err)
	_, err = store.Identities().Create(testCtx(), identity.New("other@corp.example", "Other"))
	require.NoError(t, err)

	id := hinted.ID()
	_, ident, err := svc.Merge(testCtx(), &profile.Patch{
		OfficialEmail: str("other@corp.example"),
	}, &id, false, services.SourceEdited)
	require.NoError(t, err)
	require.Equal(t, hinted.ID(), ident.ID())
}

func TestMerge_UnknownHintedIdentity(t *testing.T) {
	_, svc := newFixture(t)

	missing := uuid.New()
	_, _, err := svc.Merge(testCtx(), &profile.Patch{
		Phone: str("555-0101"),
	}, &missing, true, services.SourceEdited)
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestMerge_TwoSourcesAccumulate(t *testing.T) {
	store, svc := newFixture(t)

	first := &profile.Patch{
		OfficialEmail: str("asha@corp.example"),
		FullName:      str("Asha Rao"),
		Phone:         str("555-0101"),
	}
	_, ident, err := svc.Merge(testCtx(), first, nil, true, services.SourceExtraction)
	require.NoError(t, err)

	second := &profile.Patch{
		OfficialEmail: str("asha@corp.example"),
		JobTitle:      str("Engineer"),
		Phone:         str("555-0202"),
	}
	merged, secondIdent, err := svc.Merge(testCtx(), second, nil, true, services.SourceImport)
	require.NoError(t, err)

	require.Equal(t, ident.ID(), secondIdent.ID(), "same email resolves the same identity")
	require.Equal(t, 1, store.ProfileCount())
	require.Equal(t, "Asha Rao", merged.FullName, "field absent from the second write survives")
	require.Equal(t, "Engineer", merged.JobTitle)
	require.Equal(t, "555-0202", merged.Phone, "field supplied by the second write wins")
}

func TestMerge_PublishesEvents(t *testing.T) {
	_, svc := newFixture(t)

	var createdEvents, mergedEvents int
	bus := eventbus.NewEventPublisher(quietLogger())
	bus.Subscribe(func(e *profile.CreatedEvent) { createdEvents++ })
	bus.Subscribe(func(e *profile.MergedEvent) { mergedEvents++ })

	store := persistence.NewInMemoryStore()
	mapper, err := mapping.NewMapper()
	require.NoError(t, err)
	svc = services.NewProfileService(
		store.Identities(), store.Profiles(), store.Employees(),
		mapper, bus, services.WithTxRunner(services.DirectTx),
	)

	patch := &profile.Patch{OfficialEmail: str("asha@corp.example")}
	_, _, err = svc.Merge(testCtx(), patch, nil, true, services.SourceExtraction)
	require.NoError(t, err)
	_, _, err = svc.Merge(testCtx(), patch, nil, true, services.SourceExtraction)
	require.NoError(t, err)

	require.Equal(t, 1, createdEvents, "created only on first write")
	require.Equal(t, 2, mergedEvents)
}

func TestExtractAndSave_MapsAndSyncsLegacy(t *testing.T) {
	store, svc := newFixture(t)

	merged, ident, err := svc.ExtractAndSave(testCtx(), mapping.RawRecord{
		"Official_Email": "asha@corp.example",
		"Full_Name":      "Asha Rao",
		"Job_Title":      "Engineer",
		"Phone_Number":   "555-0101",
	}, nil, true)
	require.NoError(t, err)
	require.Equal(t, "Engineer", merged.JobTitle)

	legacy, ok := store.EmployeeByProfile(ident.ID())
	require.True(t, ok, "legacy record synced after merge")
	require.Equal(t, "Asha Rao", legacy.FullName)
	require.Equal(t, "Engineer", legacy.Designation)
	require.Equal(t, "555-0101", legacy.Phone)
}

func TestSaveEdited_LegacySyncFailureIsNonFatal(t *testing.T) {
	store, svc := newFixture(t)

	ident, err := store.Identities().Create(testCtx(), identity.New("asha@corp.example", "Asha Rao"))
	require.NoError(t, err)

	store.FailLegacySyncFor["asha@personal.example"] = errors.New("legacy db down")

	merged, err := svc.SaveEdited(testCtx(), ident.ID(), &profile.Patch{
		PersonalEmail: str("asha@personal.example"),
		Phone:         str("555-0303"),
	})
	require.NoError(t, err, "the canonical write must not fail with the legacy store down")
	require.Equal(t, "555-0303", merged.Phone)

	_, ok := store.EmployeeByProfile(ident.ID())
	require.False(t, ok, "legacy record was left untouched")
}

func TestDelete_RemovesEverythingInOrder(t *testing.T) {
	store, svc := newFixture(t)

	_, ident, err := svc.Merge(testCtx(), &profile.Patch{
		OfficialEmail: str("asha@corp.example"),
		FullName:      str("Asha Rao"),
	}, nil, true, services.SourceExtraction)
	require.NoError(t, err)

	require.NoError(t, store.Employees().Replace(testCtx(), mustLegacy(ident.ID())))
	store.AssignRole(ident.ID())

	require.NoError(t, svc.Delete(testCtx(), ident.ID()))

	require.Equal(t, 0, store.ProfileCount())
	_, ok := store.EmployeeByProfile(ident.ID())
	require.False(t, ok)
	_, err = store.Identities().GetByID(testCtx(), ident.ID())
	require.ErrorIs(t, err, persistence.ErrIdentityNotFound)

	// The legacy row goes first so a mid-delete failure can never leave a
	// legacy record pointing at a removed profile.
	require.Equal(t, []persistence.Deletion{
		{Table: "legacy_employees", Rows: 1},
		{Table: "profiles", Rows: 1},
		{Table: "role_assignments", Rows: 1},
		{Table: "identities", Rows: 1},
	}, store.Deletions())
}

func TestDelete_UnknownIdentity(t *testing.T) {
	_, svc := newFixture(t)

	err := svc.Delete(testCtx(), uuid.New())
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestGetByIdentity(t *testing.T) {
	_, svc := newFixture(t)

	_, ident, err := svc.Merge(testCtx(), &profile.Patch{
		OfficialEmail: str("asha@corp.example"),
	}, nil, true, services.SourceExtraction)
	require.NoError(t, err)

	found, err := svc.GetByIdentity(testCtx(), ident.ID())
	require.NoError(t, err)
	require.Equal(t, "asha@corp.example", found.OfficialEmail)

	_, err = svc.GetByIdentity(testCtx(), uuid.New())
	require.ErrorIs(t, err, services.ErrNotFound)
}
