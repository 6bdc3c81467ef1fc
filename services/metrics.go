package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_admitted_total",
		Help: "Total number of bookings accepted into pending status.",
	})
	admissionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_admission_failures_total",
		Help: "Total number of rejected booking requests by reason.",
	}, []string{"reason"})
	bookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transitions_total",
		Help: "Total number of successful booking status transitions.",
	}, []string{"to"})
)
