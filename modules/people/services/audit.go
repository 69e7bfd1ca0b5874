package services

import (
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/profile"
	"github.com/iota-uz/people-sync/pkg/eventbus"
)

// RegisterAuditSubscriber attaches handlers that write one audit line per
// profile lifecycle event. Registered at process startup so every merge,
// create and delete leaves a trace keyed by identity.
func RegisterAuditSubscriber(bus eventbus.EventBus, log *logrus.Logger) {
	bus.Subscribe(func(e *profile.CreatedEvent) {
		log.WithFields(logrus.Fields{
			"event":       "profile_created",
			"identity_id": e.IdentityID,
		}).Info("audit: profile created")
	})
	bus.Subscribe(func(e *profile.MergedEvent) {
		log.WithFields(logrus.Fields{
			"event":       "profile_merged",
			"identity_id": e.IdentityID,
			"source":      e.Source,
		}).Info("audit: profile merged")
	})
	bus.Subscribe(func(e *profile.DeletedEvent) {
		log.WithFields(logrus.Fields{
			"event":       "profile_deleted",
			"identity_id": e.IdentityID,
		}).Info("audit: profile deleted")
	})
}
