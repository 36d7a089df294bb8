// Package metrics defines and registers all custom Prometheus metrics for the
// task-manager API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics use promauto and register with the default registry at package
// initialisation; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskman"

// UsersRegisteredTotal counts successful signups.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of user accounts created.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "failure" or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// MailJobsTotal counts lifecycle mail jobs by outcome.
// Labels:
//   - kind: "welcome" or "goodbye"
//   - result: "delivered", "failed" or "dropped" (queue full)
var MailJobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_jobs_total",
		Help:      "Total number of lifecycle mail jobs, labelled by kind and result.",
	},
	[]string{"kind", "result"},
)

// AvatarProcessingDuration measures the resize/re-encode/store pipeline.
var AvatarProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "avatar_processing_duration_seconds",
		Help:      "Duration of avatar upload processing from receipt to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)
