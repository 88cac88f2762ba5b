// Package domain defines the prediction domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/sentimeter/sentimeter/internal/errors"
)

// Sentiment labels produced by the classifier.
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
)

// Prediction is a stored classification result, always scoped to the user
// who requested it.
type Prediction struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ModelVersion string
	Text         string
	Label        string
	Score        float64
	CreatedAt    time.Time
}

// Stats summarizes a user's predictions.
type Stats struct {
	Total          int64            `json:"total"`
	ByClass        map[string]int64 `json:"by_class"`
	ByModelVersion map[string]int64 `json:"by_model_version"`
}

// Domain-specific errors for prediction operations.
var (
	// ErrPredictionNotFound indicates the requested prediction does not
	// exist or belongs to another user.
	ErrPredictionNotFound = errors.Wrap(errors.ErrNotFound, "prediction not found")
)
