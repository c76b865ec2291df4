package ai

import (
	"context"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/interview"
	"github.com/sashabaranov/go-openai"
	"io"
	"log/slog"
	"time"
)

const (
	questionMaxTokens   = 400
	scoringMaxTokens    = 2000
	questionTemperature = 0.9
	scoringTemperature  = 0.3
	defaultAudioName    = "audio.webm"
)

// Config selects the models and endpoint used by [Client].
type Config struct {
	APIKey  string
	BaseURL string
	// Timeout bounds every vendor call. Zero disables the bound.
	Timeout            time.Duration
	QuestionModel      string
	ScoringModel       string
	SpeechModel        string
	SpeechVoice        string
	TranscriptionModel string
}

// Client implements the interview collaborators on top of the OpenAI API.
type Client struct {
	client *openai.Client
	cfg    Config
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		logger: logger,
	}
}

// GenerateQuestion asks the question model for the interviewer's next turn.
func (c *Client) GenerateQuestion(
	ctx context.Context,
	prompt interview.Prompt,
	history interview.History,
) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2) //nolint:mnd // system and instruction.
	messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // this is better for readability
		Role:    openai.ChatMessageRoleSystem,
		Content: prompt.System,
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleAssistant
		if turn.Role == interview.RoleResponder {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // this is better for readability
			Role:    role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // this is better for readability
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.Instruction,
	})

	return c.complete(ctx, openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:       c.cfg.QuestionModel,
		MaxTokens:   questionMaxTokens,
		Temperature: questionTemperature,
		Messages:    messages,
	})
}

// Score asks the scoring model for a JSON reply.
func (c *Client) Score(ctx context.Context, instructions string, transcript string) (string, error) {
	return c.complete(ctx, openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:       c.cfg.ScoringModel,
		MaxTokens:   scoringMaxTokens,
		Temperature: scoringTemperature,
		Messages: []openai.ChatCompletionMessage{ //nolint:exhaustruct // this is better for readability
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
}

func (c *Client) complete(ctx context.Context, request openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	completion, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", wrapAPIError(err, "create chat completion", slog.String("model", request.Model))
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion without choices", slog.String("model", request.Model))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "chat completion",
		slog.String("model", request.Model),
		slog.Int("prompt_tokens", completion.Usage.PromptTokens),
		slog.Int("completion_tokens", completion.Usage.CompletionTokens),
		slog.Duration("duration", time.Since(start)))
	return completion.Choices[0].Message.Content, nil
}

// Synthesize converts text to MP3 speech.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	speech, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.cfg.SpeechModel),
		Input:          text,
		Voice:          openai.SpeechVoice(c.cfg.SpeechVoice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          1,
	})
	if err != nil {
		return nil, wrapAPIError(err, "create speech", slog.String("model", c.cfg.SpeechModel))
	}
	defer func() {
		_ = speech.Close()
	}()
	audio, err := io.ReadAll(speech)
	if err != nil {
		return nil, errors.Wrap(err, "read speech")
	}
	return audio, nil
}

// Transcribe converts spoken audio to text. filename tells the vendor the audio container format.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if filename == "" {
		filename = defaultAudioName
	}
	transcription, err := c.client.CreateTranscription(ctx, openai.AudioRequest{ //nolint:exhaustruct // this is better for readability
		Model:    c.cfg.TranscriptionModel,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", wrapAPIError(err, "create transcription",
			slog.String("model", c.cfg.TranscriptionModel), slog.String("filename", filename))
	}
	return transcription.Text, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

// wrapAPIError annotates err with the HTTP status the vendor answered with.
func wrapAPIError(err error, msg string, attrs ...slog.Attr) error {
	var (
		apiErr     *openai.APIError
		requestErr *openai.RequestError
	)
	switch {
	case errors.As(err, &apiErr):
		attrs = append(attrs, slog.Int("status", apiErr.HTTPStatusCode))
	case errors.As(err, &requestErr):
		attrs = append(attrs, slog.Int("status", requestErr.HTTPStatusCode))
	}
	return errors.Wrap(err, msg, attrs...)
}

var (
	_ interview.QuestionGenerator = (*Client)(nil)
	_ interview.Scorer            = (*Client)(nil)
	_ interview.Synthesizer       = (*Client)(nil)
	_ interview.Transcriber       = (*Client)(nil)
)
