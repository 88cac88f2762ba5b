package usecase

import (
	"context"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/sentimeter/sentimeter/internal/database"
	predictionDomain "github.com/sentimeter/sentimeter/internal/prediction/domain"
	predictionService "github.com/sentimeter/sentimeter/internal/prediction/service"
	customValidation "github.com/sentimeter/sentimeter/internal/validation"
)

// MaxTextLength is the longest text the classifier accepts, in runes.
const MaxTextLength = 5000

// predictionUseCase implements the UseCase interface.
type predictionUseCase struct {
	txManager      database.TxManager
	predictionRepo PredictionRepository
	classifier     predictionService.Classifier
}

// NewPredictionUseCase creates a new prediction use case instance.
func NewPredictionUseCase(
	txManager database.TxManager,
	predictionRepo PredictionRepository,
	classifier predictionService.Classifier,
) UseCase {
	return &predictionUseCase{
		txManager:      txManager,
		predictionRepo: predictionRepo,
		classifier:     classifier,
	}
}

// validateCreateInput checks the text and model version of a create request.
func validateCreateInput(input CreateInput) error {
	err := validation.Errors{
		"text": validation.Validate(input.Text,
			validation.Required,
			customValidation.NotBlank,
			validation.RuneLength(1, MaxTextLength),
		),
		"model_version": validation.Validate(input.ModelVersion,
			customValidation.ModelVersion,
		),
	}.Filter()
	if err != nil {
		return customValidation.WrapValidationError(err)
	}
	return nil
}

// Create classifies the text and persists the result for the user.
func (p *predictionUseCase) Create(
	ctx context.Context,
	userID uuid.UUID,
	input CreateInput,
) (*predictionDomain.Prediction, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	modelVersion := input.ModelVersion
	if modelVersion == "" {
		modelVersion = predictionService.DefaultModelVersion
	}

	result := p.classifier.Classify(input.Text, modelVersion)

	prediction := &predictionDomain.Prediction{
		ID:           uuid.Must(uuid.NewV7()),
		UserID:       userID,
		ModelVersion: result.ModelVersion,
		Text:         input.Text,
		Label:        result.Label,
		Score:        result.Score,
	}

	err := p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return p.predictionRepo.Create(txCtx, prediction)
	})
	if err != nil {
		return nil, err
	}

	return prediction, nil
}

// Get retrieves one of the user's predictions by ID.
func (p *predictionUseCase) Get(
	ctx context.Context,
	userID, predictionID uuid.UUID,
) (*predictionDomain.Prediction, error) {
	return p.predictionRepo.Get(ctx, userID, predictionID)
}

// List returns the user's predictions, newest first, with pagination.
func (p *predictionUseCase) List(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*predictionDomain.Prediction, error) {
	return p.predictionRepo.List(ctx, userID, offset, limit)
}

// Stats aggregates the user's predictions by label and model version.
func (p *predictionUseCase) Stats(ctx context.Context, userID uuid.UUID) (*predictionDomain.Stats, error) {
	return p.predictionRepo.Stats(ctx, userID)
}
