package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_documents_total",
		Help: "Documents run through the ingestion pipeline, by outcome and source type.",
	}, []string{"status", "source"})

	transactionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_transactions_total",
		Help: "Transactions persisted from ingested documents.",
	})
)

func recordDocument(status, source string) {
	if source == "" {
		source = "unknown"
	}
	documentsTotal.WithLabelValues(status, source).Inc()
}

func recordTransactions(n int) {
	transactionsTotal.Add(float64(n))
}
