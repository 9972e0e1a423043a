package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeCreated      = "created"
	OutcomeDeduplicated = "deduplicated"
	OutcomeFailed       = "failed"
)

// Observer captures telemetry for ingestion and retrieval.
type Observer interface {
	RecordIngest(duration time.Duration, outcome string)
	RecordBlobWrite(sizeBytes int)
	RecordFetch(duration time.Duration, resized bool, err error)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordIngest(time.Duration, string) {}

func (Nop) RecordBlobWrite(int) {}

func (Nop) RecordFetch(time.Duration, bool, error) {}

// PrometheusObserver exports store metrics to Prometheus.
type PrometheusObserver struct {
	ingestDuration *prometheus.HistogramVec
	blobWrites     prometheus.Counter
	blobBytes      prometheus.Counter
	fetchDuration  *prometheus.HistogramVec
	fetchErrors    prometheus.Counter
}

func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "postbridge"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	var (
		o   PrometheusObserver
		err error
	)

	o.ingestDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingest_duration_seconds",
		Help:      "Latency of upload resolution by outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	o.blobWrites, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blob_writes_total",
		Help:      "Blobs physically written to the blob store.",
	}))
	if err != nil {
		return nil, err
	}

	o.blobBytes, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blob_written_bytes_total",
		Help:      "Bytes physically written to the blob store.",
	}))
	if err != nil {
		return nil, err
	}

	o.fetchDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Latency of processed fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"resized"}))
	if err != nil {
		return nil, err
	}

	o.fetchErrors, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_errors_total",
		Help:      "Failed processed fetches.",
	}))
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func (o *PrometheusObserver) RecordIngest(duration time.Duration, outcome string) {
	if o == nil {
		return
	}

	o.ingestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (o *PrometheusObserver) RecordBlobWrite(sizeBytes int) {
	if o == nil {
		return
	}

	o.blobWrites.Inc()
	o.blobBytes.Add(float64(sizeBytes))
}

func (o *PrometheusObserver) RecordFetch(duration time.Duration, resized bool, err error) {
	if o == nil {
		return
	}

	if err != nil {
		o.fetchErrors.Inc()

		return
	}

	label := "false"
	if resized {
		label = "true"
	}

	o.fetchDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// register adds c to reg, reusing the collector already registered under the
// same name when there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}

		return c, fmt.Errorf("register store metric: %w", err)
	}

	return c, nil
}
