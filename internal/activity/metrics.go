package activity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var stepRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "autosetup_step_records_total",
	Help: "Trigger step records persisted, by step and outcome.",
}, []string{"step", "status"})

var triggerEntriesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "autosetup_trigger_entries_finished_total",
	Help: "Workflow runs that reached a final status.",
}, []string{"status"})
