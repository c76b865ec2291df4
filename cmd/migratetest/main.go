package main

import (
	"context"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/models"
	"github.com/myrjola/interviewprep/internal/repositories"
	"github.com/myrjola/interviewprep/internal/sqlite"
	"github.com/myrjola/interviewprep/internal/testhelpers"
	"log/slog"
	"os"
	"time"
)

// migratetest opens a copy of a production database with the current schema and checks that the recorded
// evaluations are still readable.
func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("INTERVIEW_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "INTERVIEW_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	repo := repositories.NewEvaluationRepository(db, logger)
	var stats models.EvaluationStats
	if stats, err = repo.Stats(ctx); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching evaluation stats", errors.SlogError(err))
		os.Exit(1)
	}
	if stats.Total == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no evaluations found, something is likely wrong")
		os.Exit(1)
	}
	if _, err = repo.Recent(ctx, 1); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error reading recent evaluations", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "evaluation count",
		slog.Int("total", stats.Total), slog.Int("degraded", stats.Degraded))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
}
