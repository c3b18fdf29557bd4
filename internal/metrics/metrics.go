package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestsTotal counts ingestion runs by outcome ("ok" or the failing stage).
	IngestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lumina",
		Name:      "ingests_total",
		Help:      "Ingestion runs by outcome.",
	}, []string{"outcome"})

	// ChunksStored counts chunks upserted into the vector store.
	ChunksStored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lumina",
		Name:      "chunks_stored_total",
		Help:      "Chunks upserted into the vector store.",
	})

	// ChatTurns counts completed conversation turns by transport.
	ChatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lumina",
		Name:      "chat_turns_total",
		Help:      "Completed chat turns by transport.",
	}, []string{"transport"})

	// LeadsCaptured counts leads created from captured emails.
	LeadsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lumina",
		Name:      "leads_captured_total",
		Help:      "Leads created from captured emails.",
	})

	// RetrievalFailures counts retrieval attempts that degraded to empty context.
	RetrievalFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lumina",
		Name:      "retrieval_failures_total",
		Help:      "Retrieval attempts that failed and degraded to empty context.",
	})
)
