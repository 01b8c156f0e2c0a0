// Package metrics exports Prometheus metrics for detection submissions.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yildizm/LogDetect/internal/detect"
)

// Config configures the submission recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "logdetect").
	Namespace string

	// Buckets are the histogram buckets for round-trip duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// MaxActivities caps the distinct activity label values. Activities
	// seen after the cap is reached are counted under OtherActivity.
	// Default: 32, enough for the service's activity vocabulary.
	MaxActivities int
}

// Option configures the recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithMaxActivities sets the activity label cap.
func WithMaxActivities(n int) Option {
	return func(c *Config) {
		c.MaxActivities = n
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:     "logdetect",
		Buckets:       prometheus.DefBuckets,
		Registry:      prometheus.DefaultRegisterer,
		MaxActivities: 32,
	}
}

// Recorder implements detect.Recorder on top of Prometheus collectors.
//
// Metrics collected:
//   - logdetect_submissions_total: submissions by outcome (success or error type)
//   - logdetect_submission_duration_seconds: round-trip duration by outcome
//   - logdetect_windows_total: windows classified by the service
//   - logdetect_activity_windows_total: windows per predicted activity
type Recorder struct {
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	windows     prometheus.Counter
	activities  *prometheus.CounterVec

	mu            sync.Mutex
	seen          map[string]struct{}
	maxActivities int
}

// New registers the collectors and returns a recorder.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Recorder{
		seen:          make(map[string]struct{}),
		maxActivities: config.MaxActivities,

		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "submissions_total",
			Help:      "Total number of detection submissions by outcome",
		}, []string{"outcome"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "submission_duration_seconds",
			Help:      "Detection round-trip duration in seconds",
			Buckets:   config.Buckets,
		}, []string{"outcome"}),

		windows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "windows_total",
			Help:      "Total number of windows classified by the service",
		}),

		activities: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "activity_windows_total",
			Help:      "Windows per predicted activity",
		}, []string{"activity"}),
	}
}

// Label values
const (
	OutcomeSuccess = "success"

	// OtherActivity groups activities beyond the label cap
	OtherActivity = "other"
)

// OutcomeLabel maps a settled submission to its outcome label.
func OutcomeLabel(o detect.Outcome) string {
	if o.Err != nil {
		return string(o.Err.Type)
	}
	return OutcomeSuccess
}

// RecordSubmission implements detect.Recorder.
func (r *Recorder) RecordSubmission(o detect.Outcome) {
	outcome := OutcomeLabel(o)
	r.submissions.WithLabelValues(outcome).Inc()

	// validation failures never reach the network
	if o.Err != nil && o.Err.Type == detect.ErrTypeValidation {
		return
	}
	r.duration.WithLabelValues(outcome).Observe(o.Duration.Seconds())

	if o.View == nil {
		return
	}
	total := 0
	for _, lc := range o.View.Tally {
		r.activities.WithLabelValues(r.activityLabel(lc.Label)).Add(float64(lc.Count))
		total += lc.Count
	}
	r.windows.Add(float64(total))
}

// activityLabel returns label while the cap allows another series
func (r *Recorder) activityLabel(label string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[label]; ok {
		return label
	}
	if r.maxActivities > 0 && len(r.seen) >= r.maxActivities {
		return OtherActivity
	}
	r.seen[label] = struct{}{}
	return label
}
