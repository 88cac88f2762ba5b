package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records business operation metrics. Implementations track
// operation counts and durations plus classifier outcomes.
type BusinessMetrics interface {
	// RecordOperation records a business operation with its status.
	// Domain examples: "auth", "predictions"
	// Operation examples: "register", "login", "prediction_create"
	// Status examples: "success", "error"
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the duration of a business operation with its
	// status. Recorded in seconds as a histogram.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordPrediction records one classifier outcome with its model version
	// and resulting sentiment label.
	RecordPrediction(ctx context.Context, modelVersion, label string)
}

// businessMetrics implements BusinessMetrics using OpenTelemetry instruments.
type businessMetrics struct {
	operationCounter  metric.Int64Counter
	durationHisto     metric.Float64Histogram
	predictionCounter metric.Int64Counter
}

// NewBusinessMetrics creates a BusinessMetrics implementation using the
// provided meter provider. The namespace parameter prefixes all metric names.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	predictionCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_predictions_total", namespace),
		metric.WithDescription("Total number of classifier predictions by model version and label"),
		metric.WithUnit("{prediction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction counter: %w", err)
	}

	return &businessMetrics{
		operationCounter:  operationCounter,
		durationHisto:     durationHisto,
		predictionCounter: predictionCounter,
	}, nil
}

// RecordOperation increments the operation counter with domain, operation, and status labels.
func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordDuration records the operation duration in seconds with domain, operation, and status labels.
func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordPrediction increments the prediction counter with model version and label attributes.
func (b *businessMetrics) RecordPrediction(ctx context.Context, modelVersion, label string) {
	b.predictionCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("model_version", modelVersion),
			attribute.String("label", label),
		),
	)
}

// NoOpBusinessMetrics is a no-op implementation of BusinessMetrics for when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
}

// RecordDuration does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

// RecordPrediction does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordPrediction(ctx context.Context, modelVersion, label string) {
}
