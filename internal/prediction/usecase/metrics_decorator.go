package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sentimeter/sentimeter/internal/metrics"
	predictionDomain "github.com/sentimeter/sentimeter/internal/prediction/domain"
)

// predictionUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type predictionUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewPredictionUseCaseWithMetrics wraps a prediction UseCase with metrics recording.
func NewPredictionUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &predictionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for classification operations, including the
// resulting model version and label on success.
func (p *predictionUseCaseWithMetrics) Create(
	ctx context.Context,
	userID uuid.UUID,
	input CreateInput,
) (*predictionDomain.Prediction, error) {
	start := time.Now()
	prediction, err := p.next.Create(ctx, userID, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "predictions", "prediction_create", status)
	p.metrics.RecordDuration(ctx, "predictions", "prediction_create", time.Since(start), status)
	if err == nil {
		p.metrics.RecordPrediction(ctx, prediction.ModelVersion, prediction.Label)
	}

	return prediction, err
}

// Get records metrics for prediction retrieval operations.
func (p *predictionUseCaseWithMetrics) Get(
	ctx context.Context,
	userID, predictionID uuid.UUID,
) (*predictionDomain.Prediction, error) {
	start := time.Now()
	prediction, err := p.next.Get(ctx, userID, predictionID)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "predictions", "prediction_get", status)
	p.metrics.RecordDuration(ctx, "predictions", "prediction_get", time.Since(start), status)

	return prediction, err
}

// List records metrics for prediction listing operations.
func (p *predictionUseCaseWithMetrics) List(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*predictionDomain.Prediction, error) {
	start := time.Now()
	predictions, err := p.next.List(ctx, userID, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "predictions", "prediction_list", status)
	p.metrics.RecordDuration(ctx, "predictions", "prediction_list", time.Since(start), status)

	return predictions, err
}

// Stats records metrics for stats aggregation operations.
func (p *predictionUseCaseWithMetrics) Stats(
	ctx context.Context,
	userID uuid.UUID,
) (*predictionDomain.Stats, error) {
	start := time.Now()
	stats, err := p.next.Stats(ctx, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "predictions", "prediction_stats", status)
	p.metrics.RecordDuration(ctx, "predictions", "prediction_stats", time.Since(start), status)

	return stats, err
}
