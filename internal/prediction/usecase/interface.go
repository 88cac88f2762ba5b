// Package usecase implements business logic orchestration for sentiment
// predictions. It coordinates the classifier, the prediction repository, and
// input validation.
package usecase

import (
	"context"

	"github.com/google/uuid"

	predictionDomain "github.com/sentimeter/sentimeter/internal/prediction/domain"
)

// CreateInput contains the parameters for classifying a text.
type CreateInput struct {
	Text         string
	ModelVersion string
}

// UseCase defines the prediction business operations. Every operation is
// scoped to the requesting user.
type UseCase interface {
	// Create classifies the text and persists the result for the user.
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*predictionDomain.Prediction, error)

	// Get retrieves one of the user's predictions by ID. Predictions owned
	// by other users are reported as not found.
	Get(ctx context.Context, userID, predictionID uuid.UUID) (*predictionDomain.Prediction, error)

	// List returns the user's predictions, newest first, with pagination.
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*predictionDomain.Prediction, error)

	// Stats aggregates the user's predictions by label and model version.
	Stats(ctx context.Context, userID uuid.UUID) (*predictionDomain.Stats, error)
}

// PredictionRepository defines the persistence operations needed by the use case.
type PredictionRepository interface {
	Create(ctx context.Context, prediction *predictionDomain.Prediction) error
	Get(ctx context.Context, userID, predictionID uuid.UUID) (*predictionDomain.Prediction, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*predictionDomain.Prediction, error)
	Stats(ctx context.Context, userID uuid.UUID) (*predictionDomain.Stats, error)
}
