// Package metrics holds the Prometheus instruments for the pipeline and the
// prediction API. Everything registers on the default registry via promauto and
// is exposed by the API's /metrics route.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline Metrics
	PipelineStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricer_pipeline_step_duration_seconds",
			Help:    "Duration of individual preprocessing steps in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_pipeline_runs_total",
			Help: "Total number of preprocessing pipeline runs",
		},
		[]string{"status"}, // "success", "error"
	)

	PipelineRowsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricer_pipeline_rows_dropped_total",
			Help: "Rows dropped for a missing host_since value",
		},
	)

	PipelineRowsEncoded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricer_pipeline_rows_encoded_total",
			Help: "Rows written to encoded feature tables",
		},
	)

	// Prediction Metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_predictions_total",
			Help: "Total number of prediction requests",
		},
		[]string{"endpoint", "status"},
	)

	ModelLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pricer_model_loaded",
			Help: "Set to 1 for the kind of the currently loaded model",
		},
		[]string{"kind"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricer_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordPipelineStep observes the duration of one pipeline step.
func RecordPipelineStep(step string, duration time.Duration) {
	PipelineStepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordPipelineRun counts a finished run and the rows it dropped and produced.
func RecordPipelineRun(dropped, encoded int, err error) {
	if err != nil {
		PipelineRunsTotal.WithLabelValues("error").Inc()
		return
	}
	PipelineRunsTotal.WithLabelValues("success").Inc()
	PipelineRowsDropped.Add(float64(dropped))
	PipelineRowsEncoded.Add(float64(encoded))
}

// RecordPrediction counts a prediction request by endpoint and outcome.
func RecordPrediction(endpoint string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	PredictionsTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordAPIRequest records request count and latency.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetModelLoaded marks kind as the active model.
func SetModelLoaded(kind string) {
	ModelLoaded.Reset()
	ModelLoaded.WithLabelValues(kind).Set(1)
}
