// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/sentimeter/sentimeter/internal/validation"
)

// RegisterRequest contains the parameters for creating a new user account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks if the register request is valid.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Email,
			validation.Length(3, 320),
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(6, 128),
		),
	)
}

// LoginRequest contains the parameters for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Password,
			validation.Required,
		),
	)
}
