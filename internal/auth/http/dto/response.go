// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	authUseCase "github.com/sentimeter/sentimeter/internal/auth/usecase"
)

// TokenResponse contains an issued access token.
// SECURITY: The token grants access on behalf of the user and must not be logged.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MapTokenToResponse converts a use case token output to an API response.
func MapTokenToResponse(output *authUseCase.TokenOutput) TokenResponse {
	return TokenResponse{
		AccessToken: output.AccessToken,
		TokenType:   output.TokenType,
	}
}
