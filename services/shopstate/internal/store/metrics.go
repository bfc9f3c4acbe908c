package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopstate_mutations_total",
			Help: "Accepted store mutations by store and action",
		},
		[]string{"store", "action"},
	)

	persistFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopstate_persist_failures_total",
			Help: "Slot reads and writes that failed and fell back to the in-memory view",
		},
		[]string{"store", "op"},
	)
)
