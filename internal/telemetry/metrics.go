package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "envelope_records_consumed_total",
		Help: "Records fetched from the transport.",
	})
	RecordsInvalid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "envelope_records_invalid_total",
		Help: "Records that failed row rule validation.",
	})
	BatchesCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "envelope_batches_committed_total",
		Help: "Micro-batches whose offsets were committed and verified.",
	})
	VerifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "envelope_verify_failures_total",
		Help: "Offset commits whose read-back verification mismatched.",
	})
)

func Expose(port int) {
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
	}()
}
