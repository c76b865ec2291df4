package main

import (
	"context"
	"github.com/joho/godotenv"
	"github.com/myrjola/interviewprep/internal/ai"
	"github.com/myrjola/interviewprep/internal/envstruct"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/interview"
	"github.com/myrjola/interviewprep/internal/logging"
	"github.com/myrjola/interviewprep/internal/pprofserver"
	"github.com/myrjola/interviewprep/internal/repositories"
	"github.com/myrjola/interviewprep/internal/sqlite"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

type application struct {
	logger         *slog.Logger
	controller     *interview.Controller
	turns          *interview.TurnEvaluator
	speech         interview.Synthesizer
	transcriber    interview.Transcriber
	evaluations    *repositories.EvaluationRepository
	logs           *logging.LogBuffer
	requestTimeout time.Duration
	// maxUploadBytes bounds the audio accepted by the transcription endpoint.
	maxUploadBytes int64
}

type config struct {
	// Addr is the address the HTTP server listens on.
	Addr string `env:"INTERVIEW_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the path of the database file. Use ":memory:" for an in-memory database.
	SqliteURL string `env:"INTERVIEW_SQLITE_URL" envDefault:"./interviewprep.sqlite3"`
	// PprofAddr enables the pprof server on the given loopback address when set.
	PprofAddr string `env:"INTERVIEW_PPROF_ADDR" envDefault:""`
	// CatalogPath replaces the embedded interview catalog with a YAML file.
	CatalogPath    string `env:"INTERVIEW_CATALOG_PATH" envDefault:""`
	DefaultVariant string `env:"INTERVIEW_DEFAULT_VARIANT" envDefault:"full"`
	// AnalyzeAnswers classifies every answer before the follow-up question is generated.
	AnalyzeAnswers bool          `env:"INTERVIEW_ANALYZE_ANSWERS" envDefault:"true"`
	RequestTimeout time.Duration `env:"INTERVIEW_REQUEST_TIMEOUT" envDefault:"90s"`
	VendorTimeout  time.Duration `env:"INTERVIEW_VENDOR_TIMEOUT" envDefault:"60s"`
	SpeechTimeout  time.Duration `env:"INTERVIEW_SPEECH_TIMEOUT" envDefault:"20s"`
	LogCapacity    int           `env:"INTERVIEW_LOG_CAPACITY" envDefault:"1000"`
	MaxUploadBytes int           `env:"INTERVIEW_MAX_UPLOAD_BYTES" envDefault:"26214400"`

	OpenAIAPIKey       string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL" envDefault:""`
	QuestionModel      string `env:"INTERVIEW_QUESTION_MODEL" envDefault:"gpt-4o"`
	ScoringModel       string `env:"INTERVIEW_SCORING_MODEL" envDefault:"gpt-4o"`
	SpeechModel        string `env:"INTERVIEW_SPEECH_MODEL" envDefault:"tts-1"`
	SpeechVoice        string `env:"INTERVIEW_SPEECH_VOICE" envDefault:"alloy"`
	TranscriptionModel string `env:"INTERVIEW_TRANSCRIPTION_MODEL" envDefault:"whisper-1"`
}

// run wires the application and serves HTTP until ctx is done or the process is interrupted.
//
// logger is decorated with context enrichment and log capture, so it should be a plain handler.
func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	logs := logging.NewLogBuffer(cfg.LogCapacity)
	logger = slog.New(logging.NewContextHandler(logging.NewCaptureHandler(logger.Handler(), logs, slog.LevelInfo)))

	catalog, err := interview.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	if catalog, err = catalog.WithDefaultVariant(cfg.DefaultVariant); err != nil {
		return errors.Wrap(err, "select default variant")
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}()
	go db.StartDatabaseOptimizer(ctx)

	if cfg.PprofAddr != "" {
		if _, err = pprofserver.Launch(ctx, cfg.PprofAddr, logger); err != nil {
			return errors.Wrap(err, "launch pprof server")
		}
	}

	client := ai.NewClient(ai.Config{
		APIKey:             cfg.OpenAIAPIKey,
		BaseURL:            cfg.OpenAIBaseURL,
		Timeout:            cfg.VendorTimeout,
		QuestionModel:      cfg.QuestionModel,
		ScoringModel:       cfg.ScoringModel,
		SpeechModel:        cfg.SpeechModel,
		SpeechVoice:        cfg.SpeechVoice,
		TranscriptionModel: cfg.TranscriptionModel,
	}, logger)
	evaluations := repositories.NewEvaluationRepository(db, logger)

	var analyzer *interview.AnswerAnalyzer
	if cfg.AnalyzeAnswers {
		analyzer = interview.NewAnswerAnalyzer(client, logger)
	}
	controller := interview.NewController(interview.ControllerConfig{
		Catalog:       catalog,
		Questions:     client,
		Speech:        client,
		Analyzer:      analyzer,
		Evaluator:     interview.NewEvaluator(catalog, client, logger),
		Recorder:      evaluations,
		SpeechTimeout: cfg.SpeechTimeout,
		Logger:        logger,
	})

	app := application{
		logger:         logger,
		controller:     controller,
		turns:          interview.NewTurnEvaluator(catalog, client, logger),
		speech:         client,
		transcriber:    client,
		evaluations:    evaluations,
		logs:           logs,
		requestTimeout: cfg.RequestTimeout,
		maxUploadBytes: int64(cfg.MaxUploadBytes),
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))

	// A missing .env file is fine, the environment can be provided by other means.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
