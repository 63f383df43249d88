package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CargoCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cargolink_cargo_created_total",
		Help: "Total number of cargo listings created.",
	})

	BidsPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cargolink_bids_placed_total",
		Help: "Total number of bids placed by carriers.",
	})

	BidDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargolink_bid_decisions_total",
		Help: "Total number of bid decisions by outcome.",
	},
		[]string{"decision"},
	)

	TransactionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargolink_transaction_transitions_total",
		Help: "Total number of applied transaction status transitions.",
	},
		[]string{"from", "to"},
	)

	ETTNSignaturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargolink_ettn_signatures_total",
		Help: "Total number of E-TTN signatures by signer role and resulting document status.",
	},
		[]string{"role", "status"},
	)

	CertificatesIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cargolink_eds_certificates_issued_total",
		Help: "Total number of mock EDS certificates issued.",
	})

	RWSRecalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargolink_rws_recalculations_total",
		Help: "Total number of reputation recalculations by result.",
	},
		[]string{"result"},
	)

	NotificationsDeliveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargolink_notifications_delivered_total",
		Help: "Total number of notification delivery attempts by channel and result.",
	},
		[]string{"channel", "result"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargolink_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cargolink_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status code.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"method", "route", "status"},
	)
)
