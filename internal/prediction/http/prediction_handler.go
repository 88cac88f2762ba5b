// Package http provides HTTP handlers for prediction operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/sentimeter/sentimeter/internal/auth/http"
	apperrors "github.com/sentimeter/sentimeter/internal/errors"
	"github.com/sentimeter/sentimeter/internal/httputil"
	"github.com/sentimeter/sentimeter/internal/prediction/http/dto"
	predictionUseCase "github.com/sentimeter/sentimeter/internal/prediction/usecase"
	userDomain "github.com/sentimeter/sentimeter/internal/user/domain"
	customValidation "github.com/sentimeter/sentimeter/internal/validation"
)

// PredictionHandler handles HTTP requests for prediction operations.
// All routes require an authenticated user in the request context.
type PredictionHandler struct {
	predictionUseCase predictionUseCase.UseCase
	logger            *slog.Logger
}

// NewPredictionHandler creates a new prediction handler with required dependencies.
func NewPredictionHandler(uc predictionUseCase.UseCase, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{
		predictionUseCase: uc,
		logger:            logger,
	}
}

// requestUser returns the authenticated user or writes a 401 response.
func (h *PredictionHandler) requestUser(c *gin.Context) (*userDomain.User, bool) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		h.logger.Error("no authenticated user in context")
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return nil, false
	}
	return user, true
}

// CreateHandler classifies a text and stores the result.
// POST /api/predictions - Returns 201 Created with the prediction.
func (h *PredictionHandler) CreateHandler(c *gin.Context) {
	user, ok := h.requestUser(c)
	if !ok {
		return
	}

	var req dto.CreatePredictionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := predictionUseCase.CreateInput{
		Text:         req.Text,
		ModelVersion: req.ModelVersion,
	}

	prediction, err := h.predictionUseCase.Create(c.Request.Context(), user.ID, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPredictionToResponse(prediction))
}

// GetHandler retrieves one of the user's predictions by ID.
// GET /api/predictions/:id - Returns 200 OK with the prediction.
// A prediction owned by another user produces 404, not 403.
func (h *PredictionHandler) GetHandler(c *gin.Context) {
	user, ok := h.requestUser(c)
	if !ok {
		return
	}

	predictionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid prediction ID format: must be a valid UUID"),
			h.logger)
		return
	}

	prediction, err := h.predictionUseCase.Get(c.Request.Context(), user.ID, predictionID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPredictionToResponse(prediction))
}

// ListHandler retrieves the user's predictions with pagination support.
// GET /api/predictions?offset=0&limit=50 - Returns 200 OK with the list.
func (h *PredictionHandler) ListHandler(c *gin.Context) {
	user, ok := h.requestUser(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	predictions, err := h.predictionUseCase.List(c.Request.Context(), user.ID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPredictionsToListResponse(predictions))
}

// StatsHandler aggregates the user's predictions by label and model version.
// GET /api/stats - Returns 200 OK with the aggregation.
func (h *PredictionHandler) StatsHandler(c *gin.Context) {
	user, ok := h.requestUser(c)
	if !ok {
		return
	}

	stats, err := h.predictionUseCase.Stats(c.Request.Context(), user.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, stats)
}
