package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/profile"
	"github.com/iota-uz/people-sync/modules/people/infrastructure/persistence"
	"github.com/iota-uz/people-sync/modules/people/mapping"
	"github.com/iota-uz/people-sync/modules/people/services"
	"github.com/iota-uz/people-sync/pkg/eventbus"
)

func TestAuditSubscriber_LogsLifecycleEvents(t *testing.T) {
	logger, hook := test.NewNullLogger()

	store := persistence.NewInMemoryStore()
	mapper, err := mapping.NewMapper()
	require.NoError(t, err)

	bus := eventbus.NewEventPublisher(logger)
	services.RegisterAuditSubscriber(bus, logger)

	svc := services.NewProfileService(
		store.Identities(), store.Profiles(), store.Employees(),
		mapper, bus,
		services.WithTxRunner(services.DirectTx),
	)

	_, ident, err := svc.Merge(testCtx(), &profile.Patch{
		OfficialEmail: str("asha@corp.example"),
		FullName:      str("Asha Rao"),
	}, nil, true, services.SourceExtraction)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(testCtx(), ident.ID()))

	events := make([]string, 0, len(hook.Entries))
	for _, entry := range hook.Entries {
		if name, ok := entry.Data["event"].(string); ok {
			events = append(events, name)
		}
	}
	require.Equal(t, []string{"profile_created", "profile_merged", "profile_deleted"}, events)

	for _, entry := range hook.Entries {
		if _, ok := entry.Data["event"]; !ok {
			continue
		}
		require.Equal(t, logrus.InfoLevel, entry.Level)
		require.Equal(t, ident.ID(), entry.Data["identity_id"])
	}
}

func TestAuditSubscriber_CoversEveryPublishedEvent(t *testing.T) {
	// With the audit subscriber registered, no publish falls through to the
	// "no matching subscribers" warning.
	logger, hook := test.NewNullLogger()

	bus := eventbus.NewEventPublisher(logger)
	services.RegisterAuditSubscriber(bus, logger)

	id := uuid.New()
	bus.Publish(profile.NewCreatedEvent(id, profile.Profile{IdentityID: id}))
	bus.Publish(profile.NewMergedEvent(id, services.SourceImport, profile.Profile{IdentityID: id}))
	bus.Publish(profile.NewDeletedEvent(id))

	for _, entry := range hook.Entries {
		require.NotEqual(t, logrus.WarnLevel, entry.Level, "unexpected warning: %s", entry.Message)
	}
}
