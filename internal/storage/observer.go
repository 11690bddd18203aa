package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for provider operations.
type Observer interface {
	RecordUpload(duration time.Duration, sizeBytes int, err error)
	RecordDelete(duration time.Duration, err error)
}

// PrometheusObserver exports provider metrics to Prometheus.
type PrometheusObserver struct {
	duration    *prometheus.HistogramVec
	failures    *prometheus.CounterVec
	uploadBytes prometheus.Counter
}

// NewPrometheusObserver registers the operation metrics on reg, reusing
// collectors that are already registered.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "blob_storage"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of blob upload and delete calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Failed blob operations by error kind.",
		}, []string{"operation", "kind"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes successfully uploaded to blob storage.",
		}),
	}
	if err := register(reg, &o.duration); err != nil {
		return nil, err
	}
	if err := register(reg, &o.failures); err != nil {
		return nil, err
	}
	if err := register(reg, &o.uploadBytes); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c *C) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			*c = existing
			return nil
		}
	}
	return fmt.Errorf("register storage metric: %w", err)
}

// RecordUpload tracks upload latency, size and failures.
func (o *PrometheusObserver) RecordUpload(duration time.Duration, sizeBytes int, err error) {
	if o == nil {
		return
	}
	o.record("upload", duration, err)
	if err == nil {
		o.uploadBytes.Add(float64(sizeBytes))
	}
}

// RecordDelete tracks delete latency and failures.
func (o *PrometheusObserver) RecordDelete(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.record("delete", duration, err)
}

func (o *PrometheusObserver) record(op string, duration time.Duration, err error) {
	o.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.failures.WithLabelValues(op, Kind(err)).Inc()
	}
}

type nopObserver struct{}

func (nopObserver) RecordUpload(time.Duration, int, error) {}

func (nopObserver) RecordDelete(time.Duration, error) {}

type instrumented struct {
	next Provider
	obs  Observer
	now  func() time.Time
}

// Instrument wraps p so every call is reported to obs.
func Instrument(p Provider, obs Observer) Provider {
	if obs == nil {
		obs = nopObserver{}
	}
	return &instrumented{next: p, obs: obs, now: time.Now}
}

func (i *instrumented) Upload(ctx context.Context, f *File) error {
	start := i.now()
	err := i.next.Upload(ctx, f)
	i.obs.RecordUpload(i.now().Sub(start), len(f.Buffer), err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, f *File) error {
	start := i.now()
	err := i.next.Delete(ctx, f)
	i.obs.RecordDelete(i.now().Sub(start), err)
	return err
}

var (
	_ Observer = (*PrometheusObserver)(nil)
	_ Provider = (*instrumented)(nil)
)
