package repositories

import (
	"context"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/models"
	"github.com/myrjola/interviewprep/internal/sqlite"
	"log/slog"
)

type EvaluationRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewEvaluationRepository(dbs *sqlite.Database, logger *slog.Logger) *EvaluationRepository {
	return &EvaluationRepository{
		dbs:    dbs,
		logger: logger.With("source", "EvaluationRepository"),
	}
}

// RecordEvaluation stores the outcome of an evaluation.
func (r *EvaluationRepository) RecordEvaluation(ctx context.Context, record models.EvaluationRecord) error {
	stmt := `INSERT INTO evaluations (id, interview_type, variant, overall_score, degraded, degraded_reason, created)
VALUES (:id, :interview_type, :variant, :overall_score, :degraded, :degraded_reason, :created)`
	if _, err := r.dbs.ReadWrite.NamedExecContext(ctx, stmt, record); err != nil {
		return errors.Wrap(err, "insert evaluation", slog.String("id", record.ID))
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "evaluation recorded",
		slog.String("id", record.ID), slog.Bool("degraded", record.Degraded))
	return nil
}

// Recent lists the newest evaluations first.
func (r *EvaluationRepository) Recent(ctx context.Context, limit int) ([]models.EvaluationRecord, error) {
	var records []models.EvaluationRecord
	stmt := `SELECT id, interview_type, variant, overall_score, degraded, degraded_reason, created
FROM evaluations
ORDER BY created DESC
LIMIT ?`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &records, stmt, limit); err != nil {
		return nil, errors.Wrap(err, "select evaluations", slog.Int("limit", limit))
	}
	return records, nil
}

// Stats aggregates every recorded evaluation.
func (r *EvaluationRepository) Stats(ctx context.Context) (models.EvaluationStats, error) {
	var stats models.EvaluationStats
	stmt := `SELECT COUNT(*)                          AS total,
       COALESCE(SUM(degraded), 0)         AS degraded,
       COALESCE(AVG(overall_score), 0.0)  AS average_score
FROM evaluations`
	if err := r.dbs.ReadOnly.GetContext(ctx, &stats, stmt); err != nil {
		return stats, errors.Wrap(err, "aggregate evaluations")
	}
	return stats, nil
}
