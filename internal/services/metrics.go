package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scanTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventhub",
		Name:      "ticket_scans_total",
		Help:      "Ticket scans that reached a ticket, by result.",
	}, []string{"result"})

	verificationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventhub",
		Name:      "eo_verification_decisions_total",
		Help:      "EO application transitions, by resulting status.",
	}, []string{"status"})
)
