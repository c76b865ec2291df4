package main

import (
	"context"
	"fmt"
	"github.com/myrjola/interviewprep/internal/e2etest"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/logging"
	"github.com/myrjola/interviewprep/internal/models"
	"log/slog"
	"os"
	"time"
)

// TestInterview runs a complete core interview with canned answers.
func TestInterview(ctx context.Context, client *e2etest.Client, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute) //nolint:mnd // every question is a model round trip.
	defer cancel()

	types, err := client.InterviewTypes(ctx)
	if err != nil {
		return errors.Wrap(err, "list interview types")
	}
	if len(types.Types) == 0 {
		return errors.New("no interview types offered")
	}

	evaluation, err := client.Interview(ctx, models.StartInterviewRequest{
		InterviewType: types.Types[0],
		UserName:      "Smoke Test",
		UserEmail:     "",
		Variant:       "core",
	}, func(ctx context.Context, q models.QuestionResponse) (string, error) {
		logger.LogAttrs(ctx, slog.LevelInfo, "answering",
			slog.Int("question_number", q.QuestionNumber), slog.String("category", q.Category))
		return fmt.Sprintf("In my last role I handled situations like this regularly (%s).", q.Category), nil
	})
	if err != nil {
		return errors.Wrap(err, "interview")
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "interview evaluated", slog.Float64("overall_score", evaluation.OverallScore))
	return nil
}

// TestLogViewer checks that the log viewer renders the captured logs.
func TestLogViewer(ctx context.Context, client *e2etest.Client) error {
	doc, err := client.GetDoc(ctx, "/logs")
	if err != nil {
		return errors.Wrap(err, "get log viewer")
	}
	if doc.Find("tr.log-entry").Length() == 0 {
		return errors.New("log viewer shows no entries")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only the base URL to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <base-url>")
		os.Exit(1)
	}

	url := os.Args[1]
	ctx = logging.WithAttrs(ctx, slog.String("url", url))
	client := e2etest.NewClient(url)

	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready", errors.SlogError(err))
		os.Exit(1)
	}
	if err := TestInterview(ctx, client, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing interview", errors.SlogError(err))
		os.Exit(1)
	}
	if err := TestLogViewer(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing log viewer", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
