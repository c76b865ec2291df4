package practice

import (
	"bufio"
	"context"
	"fmt"
	"github.com/myrjola/interviewprep/internal/ai"
	"github.com/myrjola/interviewprep/internal/e2etest"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/models"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

var Group = &cobra.Group{
	ID:    "practice",
	Title: "Interview practice",
}

func init() {
	Interview.Flags().String("url", "http://localhost:4000", "base URL of the interview server")
	Interview.Flags().String("type", "dentist", "interview type")
	Interview.Flags().String("name", "", "your name, used in the greeting")
	Interview.Flags().String("variant", "", "interview variant, the server default when empty")

	Speak.Flags().String("out", "./out.mp3", "path to generated audio file")
	Speak.Flags().String("voice", "alloy", "speech voice")
}

// errNoAnswer is returned when the input ends before the interview does.
var errNoAnswer = errors.NewSentinel("no answer")

// lineAnswerer prints every question to out and reads the answer from the next line of in.
func lineAnswerer(in io.Reader, out io.Writer) e2etest.Answerer {
	scanner := bufio.NewScanner(in)
	return func(_ context.Context, q models.QuestionResponse) (string, error) {
		_, _ = fmt.Fprintf(out, "\n[%d/%d] %s\n%s\n> ", q.QuestionNumber, q.TotalQuestions, q.Category, q.Question)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", errors.Wrap(err, "read answer")
			}
			return "", errNoAnswer
		}
		return strings.TrimSpace(scanner.Text()), nil
	}
}

func printEvaluation(out io.Writer, evaluation models.EvaluationResponse) {
	_, _ = fmt.Fprintf(out, "\nOverall score: %.1f/10\n%s\n\nCategory scores:\n", evaluation.OverallScore,
		evaluation.Summary)
	for category, score := range evaluation.CategoryScores {
		_, _ = fmt.Fprintf(out, "  %-50s %.1f\n", category, score)
	}
	_, _ = fmt.Fprintln(out, "\nStrengths:")
	for _, s := range evaluation.Strengths {
		_, _ = fmt.Fprintf(out, "  - %s\n", s)
	}
	_, _ = fmt.Fprintln(out, "\nAreas for improvement:")
	for _, s := range evaluation.AreasForImprovement {
		_, _ = fmt.Fprintf(out, "  - %s\n", s)
	}
	_, _ = fmt.Fprintf(out, "\n%s\n", evaluation.DetailedFeedback)
}

var Interview = &cobra.Command{
	Use:     "interview",
	GroupID: "practice",
	Short:   "Practice an interview in the terminal",
	Long:    `Runs a text interview against an interview server. Every line you type answers the current question.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		baseURL, _ := flags.GetString("url")
		interviewType, _ := flags.GetString("type")
		name, _ := flags.GetString("name")
		variant, _ := flags.GetString("variant")
		if strings.TrimSpace(name) == "" {
			return errors.New("--name is required")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		client := e2etest.NewClient(strings.TrimSuffix(baseURL, "/"))
		if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
			return errors.Wrap(err, "server not reachable", slog.String("url", baseURL))
		}
		evaluation, err := client.Interview(ctx, models.StartInterviewRequest{
			InterviewType: interviewType,
			UserName:      name,
			UserEmail:     "",
			Variant:       variant,
		}, lineAnswerer(cmd.InOrStdin(), cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		printEvaluation(cmd.OutOrStdout(), evaluation)
		return nil
	},
}

var Speak = &cobra.Command{
	Use:     "speak [text]",
	GroupID: "practice",
	Short:   "Generate speech",
	Long:    `Speaks the text in the interviewer voice and saves it as MP3`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")
		voice, _ := cmd.Flags().GetString("voice")
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))

		client := ai.NewClient(ai.Config{
			APIKey:             os.Getenv("OPENAI_API_KEY"),
			BaseURL:            os.Getenv("OPENAI_BASE_URL"),
			Timeout:            time.Minute,
			QuestionModel:      "",
			ScoringModel:       "",
			SpeechModel:        "tts-1",
			SpeechVoice:        voice,
			TranscriptionModel: "",
		}, logger)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		audio, err := client.Synthesize(ctx, strings.Join(args, " "))
		if err != nil {
			return errors.Wrap(err, "synthesize")
		}
		if err = os.WriteFile(outPath, audio, 0o600); err != nil { //nolint:mnd // owner read and write.
			return errors.Wrap(err, "write audio", slog.String("path", outPath))
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "The audio was saved as %s\n", outPath)
		return nil
	},
}
