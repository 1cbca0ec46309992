package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var workflowsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "autosetup_workflows_started_total",
	Help: "Orchestrator runs started, by action.",
}, []string{"action"})
