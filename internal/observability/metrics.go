package observability

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType distinguishes counters, gauges and histograms
type MetricType string

const (
	TypeCounter   MetricType = "counter"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// Metric holds a single named measurement with labels
type Metric struct {
	Name   string            `json:"name"`
	Type   MetricType        `json:"type"`
	Value  float64           `json:"value"`
	Count  int64             `json:"count,omitempty"`
	Sum    float64           `json:"sum,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// MetricsCollector is a simple in-process metrics registry
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics map[string]*Metric
}

// NewMetricsCollector creates an empty collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metric),
	}
}

func metricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("|%s=%s", k, labels[k]))
	}
	return sb.String()
}

// Inc increments a counter by one
func (mc *MetricsCollector) Inc(name string, labels map[string]string) {
	mc.Add(name, 1, labels)
}

// Add increments a counter by the given value
func (mc *MetricsCollector) Add(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, labels)
	m, ok := mc.metrics[key]
	if !ok {
		m = &Metric{Name: name, Type: TypeCounter, Labels: labels}
		mc.metrics[key] = m
	}
	m.Value += value
}

// Set records a gauge value
func (mc *MetricsCollector) Set(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, labels)
	mc.metrics[key] = &Metric{Name: name, Type: TypeGauge, Value: value, Labels: labels}
}

// Observe records a histogram observation
func (mc *MetricsCollector) Observe(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, labels)
	m, ok := mc.metrics[key]
	if !ok {
		m = &Metric{Name: name, Type: TypeHistogram, Labels: labels}
		mc.metrics[key] = m
	}
	m.Count++
	m.Sum += value
	m.Value = m.Sum / float64(m.Count)
}

// Get returns a metric by name and labels
func (mc *MetricsCollector) Get(name string, labels map[string]string) (*Metric, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	m, ok := mc.metrics[metricKey(name, labels)]
	return m, ok
}

// GetAll returns a snapshot of all metrics
func (mc *MetricsCollector) GetAll() map[string]*Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	snapshot := make(map[string]*Metric, len(mc.metrics))
	for k, v := range mc.metrics {
		copied := *v
		snapshot[k] = &copied
	}
	return snapshot
}

// Reset clears all metrics
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.metrics = make(map[string]*Metric)
}

// Standard metric names
const (
	// Assistant pipeline metrics
	MetricQuestionsTotal    = "assistant_questions_total"
	MetricQuestionDuration  = "assistant_question_duration_seconds"
	MetricQuestionsFailed   = "assistant_questions_failure_total"
	MetricShortcutHits      = "assistant_budget_shortcut_hits_total"
	MetricUnsafeRejections  = "assistant_unsafe_queries_rejected_total"
	MetricEmptyResults      = "assistant_empty_results_total"
	MetricExecutionFailures = "assistant_execution_failures_total"

	// LLM metrics
	MetricLLMRequests = "llm_requests_total"
	MetricLLMDuration = "llm_request_duration_seconds"
	MetricLLMErrors   = "llm_errors_total"

	// Database metrics
	MetricDBQueries  = "database_queries_total"
	MetricDBDuration = "database_query_duration_seconds"
	MetricDBErrors   = "database_errors_total"

	// Auth metrics
	MetricAuthAttempts = "auth_attempts_total"
	MetricAuthSuccess  = "auth_success_total"
	MetricAuthFailure  = "auth_failure_total"

	// HTTP metrics
	MetricHTTPRequests = "http_requests_total"
	MetricHTTPDuration = "http_request_duration_seconds"
	MetricHTTPErrors   = "http_errors_total"
)

var globalMetrics = NewMetricsCollector()

// GetGlobalMetrics returns the global metrics collector
func GetGlobalMetrics() *MetricsCollector {
	return globalMetrics
}

// RecordQuestionMetrics records metrics for one processed question
func RecordQuestionMetrics(duration time.Duration, success bool, shortcut bool, errorType string) {
	globalMetrics.Inc(MetricQuestionsTotal, nil)
	globalMetrics.Observe(MetricQuestionDuration, duration.Seconds(), nil)

	if shortcut {
		globalMetrics.Inc(MetricShortcutHits, nil)
	}
	if !success {
		globalMetrics.Inc(MetricQuestionsFailed, map[string]string{"error_type": errorType})
	}
}

// RecordLLMMetrics records metrics for one model call
func RecordLLMMetrics(operation string, duration time.Duration, err error) {
	labels := map[string]string{"operation": operation}
	globalMetrics.Inc(MetricLLMRequests, labels)
	globalMetrics.Observe(MetricLLMDuration, duration.Seconds(), labels)
	if err != nil {
		globalMetrics.Inc(MetricLLMErrors, labels)
	}
}

// RecordDBMetrics records metrics for one database operation
func RecordDBMetrics(operation string, duration time.Duration, err error) {
	labels := map[string]string{"operation": operation}
	globalMetrics.Inc(MetricDBQueries, labels)
	globalMetrics.Observe(MetricDBDuration, duration.Seconds(), labels)
	if err != nil {
		globalMetrics.Inc(MetricDBErrors, labels)
	}
}

// RecordHTTPMetrics records metrics for one HTTP request
func RecordHTTPMetrics(method, path string, statusCode int, duration time.Duration) {
	labels := map[string]string{
		"method": method,
		"path":   path,
		"status": fmt.Sprintf("%d", statusCode),
	}
	globalMetrics.Inc(MetricHTTPRequests, labels)
	globalMetrics.Observe(MetricHTTPDuration, duration.Seconds(), labels)
	if statusCode >= 500 {
		globalMetrics.Inc(MetricHTTPErrors, labels)
	}
}
