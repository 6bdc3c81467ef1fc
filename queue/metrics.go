package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "email_tasks_sent_total",
		Help: "Total number of email tasks delivered successfully.",
	}, []string{"kind"})
	taskRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "email_task_retries_total",
		Help: "Total number of email task retry attempts scheduled.",
	}, []string{"kind"})
	tasksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "email_tasks_failed_total",
		Help: "Total number of email tasks that exhausted their retry budget.",
	}, []string{"kind"})
)
