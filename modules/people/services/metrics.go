package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "people_import_rows_total",
		Help: "Batch import rows by outcome.",
	}, []string{"outcome"})

	mergesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "people_merges_total",
		Help: "Profile merge operations by source.",
	}, []string{"source"})

	legacySyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "people_legacy_sync_failures_total",
		Help: "Best-effort legacy employee syncs that failed after the profile merge committed.",
	})
)
