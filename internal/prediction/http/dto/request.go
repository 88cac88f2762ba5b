// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/sentimeter/sentimeter/internal/validation"
)

// CreatePredictionRequest contains the parameters for classifying a text.
type CreatePredictionRequest struct {
	Text         string `json:"text"`
	ModelVersion string `json:"model_version"`
}

// Validate checks if the create prediction request is valid.
func (r *CreatePredictionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text,
			validation.Required,
			customValidation.NotBlank,
			validation.RuneLength(1, 5000),
		),
		validation.Field(&r.ModelVersion,
			customValidation.ModelVersion,
		),
	)
}
