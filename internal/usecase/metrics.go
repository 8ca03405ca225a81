package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeChanged   = "changed"
	outcomeUnchanged = "unchanged"
	outcomeSkipped   = "skipped"
)

var (
	migrationRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skill_ladder",
		Subsystem: "migration",
		Name:      "records_total",
		Help:      "Records visited by level migration operations, broken down by operation and outcome.",
	}, []string{"operation", "outcome"})

	migrationVerifyIssues = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skill_ladder",
		Subsystem: "migration",
		Name:      "verify_issues",
		Help:      "Issues reported by the most recent level migration verification.",
	})

	frameworkExportCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skill_ladder",
		Subsystem: "framework",
		Name:      "export_cache_total",
		Help:      "Framework export cache lookups by result.",
	}, []string{"format", "result"})
)
