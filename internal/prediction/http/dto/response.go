// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	predictionDomain "github.com/sentimeter/sentimeter/internal/prediction/domain"
)

// PredictionResponse represents a prediction in API responses.
type PredictionResponse struct {
	ID           string    `json:"id"`
	ModelVersion string    `json:"model_version"`
	Text         string    `json:"text"`
	Label        string    `json:"label"`
	Score        float64   `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
}

// MapPredictionToResponse converts a domain prediction to an API response.
func MapPredictionToResponse(prediction *predictionDomain.Prediction) PredictionResponse {
	return PredictionResponse{
		ID:           prediction.ID.String(),
		ModelVersion: prediction.ModelVersion,
		Text:         prediction.Text,
		Label:        prediction.Label,
		Score:        prediction.Score,
		CreatedAt:    prediction.CreatedAt,
	}
}

// ListPredictionsResponse represents a paginated list of predictions in API responses.
type ListPredictionsResponse struct {
	Data []PredictionResponse `json:"data"`
}

// MapPredictionsToListResponse converts domain predictions to a list API response.
func MapPredictionsToListResponse(predictions []*predictionDomain.Prediction) ListPredictionsResponse {
	predictionResponses := make([]PredictionResponse, 0, len(predictions))
	for _, prediction := range predictions {
		predictionResponses = append(predictionResponses, MapPredictionToResponse(prediction))
	}
	return ListPredictionsResponse{
		Data: predictionResponses,
	}
}
