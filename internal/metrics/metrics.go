// Package metrics exposes Prometheus metrics for the order terminal.
package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the terminal pipeline.
type Metrics struct {
	OrdersSubmitted *prometheus.CounterVec // labels: source, status
	OrdersRejected  *prometheus.CounterVec // labels: stage

	PipelineDur    prometheus.Histogram
	BrokerPlaceDur prometheus.Histogram

	VoiceTranscriptions  prometheus.Counter
	VoiceParseFailures   prometheus.Counter
	LTPCacheHits         prometheus.Counter
	LTPCacheMisses       prometheus.Counter
	JournalWriteFailures prometheus.Counter
}

// New registers and returns all terminal metrics.
func New() *Metrics {
	m := &Metrics{
		OrdersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terminal_orders_submitted_total",
			Help: "Orders that reached the broker, by intake channel and outcome",
		}, []string{"source", "status"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terminal_orders_rejected_total",
			Help: "Orders rejected before submission, by pipeline stage",
		}, []string{"stage"}),
		PipelineDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "terminal_pipeline_duration_seconds",
			Help:    "End-to-end order pipeline latency",
			Buckets: prometheus.DefBuckets,
		}),
		BrokerPlaceDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "terminal_broker_place_duration_seconds",
			Help:    "Broker placeOrder call latency",
			Buckets: prometheus.DefBuckets,
		}),
		VoiceTranscriptions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "terminal_voice_transcriptions_total",
			Help: "Transcription API calls made",
		}),
		VoiceParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "terminal_voice_parse_failures_total",
			Help: "Voice transcripts that did not parse into an order",
		}),
		LTPCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "terminal_ltp_cache_hits_total",
			Help: "LTP lookups served from the short-TTL cache",
		}),
		LTPCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "terminal_ltp_cache_misses_total",
			Help: "LTP lookups that fetched from the broker",
		}),
		JournalWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "terminal_journal_write_failures_total",
			Help: "Order audit log writes that failed (non-fatal)",
		}),
	}

	prometheus.MustRegister(
		m.OrdersSubmitted,
		m.OrdersRejected,
		m.PipelineDur,
		m.BrokerPlaceDur,
		m.VoiceTranscriptions,
		m.VoiceParseFailures,
		m.LTPCacheHits,
		m.LTPCacheMisses,
		m.JournalWriteFailures,
	)

	return m
}

// Serve starts the /metrics endpoint on addr. Blocks; run in a goroutine.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("[metrics] serving on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("[metrics] server error: %v", err)
	}
}
