// Package repository provides data persistence implementations for prediction records.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sentimeter/sentimeter/internal/database"
	apperrors "github.com/sentimeter/sentimeter/internal/errors"
	"github.com/sentimeter/sentimeter/internal/prediction/domain"
)

// SQLitePredictionRepository handles prediction persistence for SQLite.
type SQLitePredictionRepository struct {
	db *sql.DB
}

// NewSQLitePredictionRepository creates a new SQLitePredictionRepository.
func NewSQLitePredictionRepository(db *sql.DB) *SQLitePredictionRepository {
	return &SQLitePredictionRepository{db: db}
}

// Create inserts a new prediction record.
func (r *SQLitePredictionRepository) Create(ctx context.Context, prediction *domain.Prediction) error {
	querier := database.GetTx(ctx, r.db)

	prediction.CreatedAt = time.Now().UTC()

	query := `INSERT INTO predictions (id, user_id, model_version, text, label, score, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query,
		prediction.ID, prediction.UserID, prediction.ModelVersion,
		prediction.Text, prediction.Label, prediction.Score, prediction.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create prediction")
	}
	return nil
}

// Get retrieves a prediction by ID scoped to the given user. A prediction
// belonging to another user is reported as not found, not forbidden.
func (r *SQLitePredictionRepository) Get(
	ctx context.Context,
	userID, predictionID uuid.UUID,
) (*domain.Prediction, error) {
	var prediction domain.Prediction
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, model_version, text, label, score, created_at
			  FROM predictions WHERE id = ? AND user_id = ?`

	err := querier.QueryRowContext(ctx, query, predictionID, userID).Scan(
		&prediction.ID, &prediction.UserID, &prediction.ModelVersion,
		&prediction.Text, &prediction.Label, &prediction.Score, &prediction.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPredictionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get prediction")
	}

	return &prediction, nil
}

// List returns the user's predictions, newest first.
func (r *SQLitePredictionRepository) List(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*domain.Prediction, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, model_version, text, label, score, created_at
			  FROM predictions WHERE user_id = ?
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list predictions")
	}
	defer rows.Close()

	var predictions []*domain.Prediction
	for rows.Next() {
		var prediction domain.Prediction
		if err := rows.Scan(
			&prediction.ID, &prediction.UserID, &prediction.ModelVersion,
			&prediction.Text, &prediction.Label, &prediction.Score, &prediction.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan prediction")
		}
		predictions = append(predictions, &prediction)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate predictions")
	}

	return predictions, nil
}

// Stats aggregates the user's predictions by label and model version.
// Both sentiment classes are always present in the result, even at zero.
func (r *SQLitePredictionRepository) Stats(ctx context.Context, userID uuid.UUID) (*domain.Stats, error) {
	querier := database.GetTx(ctx, r.db)

	stats := &domain.Stats{
		ByClass: map[string]int64{
			domain.LabelPositive: 0,
			domain.LabelNegative: 0,
		},
		ByModelVersion: map[string]int64{},
	}

	query := `SELECT model_version, label, COUNT(*)
			  FROM predictions WHERE user_id = ?
			  GROUP BY model_version, label`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to aggregate predictions")
	}
	defer rows.Close()

	for rows.Next() {
		var modelVersion, label string
		var count int64
		if err := rows.Scan(&modelVersion, &label, &count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan prediction stats")
		}
		stats.Total += count
		stats.ByClass[label] += count
		stats.ByModelVersion[modelVersion] += count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate prediction stats")
	}

	return stats, nil
}
