package testhelpers

import (
	"encoding/json"
	"fmt"
	"github.com/sashabaranov/go-openai"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FakeAudio is what [FakeOpenAI] answers speech requests with by default.
var FakeAudio = []byte("ID3 fake mp3")

// FakeTranscription is what [FakeOpenAI] answers transcription requests with by default.
const FakeTranscription = "I have five years experience"

var (
	categoryLine  = regexp.MustCompile(`(?m)^ {4}("[^"]+"): <score 0-10>,?$`)
	criterionLine = regexp.MustCompile(`(?m)^\d+\. (.+) \(Weight: \d+%\)$`)
)

// FakeOpenAI is an in-process stand-in for the OpenAI HTTP API. By default it answers like a cooperative model:
// questions greet the candidate, scoring replies are well-formed JSON covering the requested categories or criteria.
type FakeOpenAI struct {
	Server *httptest.Server

	mu           sync.Mutex
	chatRequests []openai.ChatCompletionRequest
	chat         func(openai.ChatCompletionRequest) (string, error)
	speech       func(openai.CreateSpeechRequest) ([]byte, error)
	transcribe   func(filename string, audio []byte) (string, error)
}

// NewFakeOpenAI starts the fake and closes it when the test ends.
func NewFakeOpenAI(t *testing.T) *FakeOpenAI {
	t.Helper()
	f := &FakeOpenAI{
		Server:       nil,
		mu:           sync.Mutex{},
		chatRequests: nil,
		chat:         DefaultChatReply,
		speech: func(openai.CreateSpeechRequest) ([]byte, error) {
			return FakeAudio, nil
		},
		transcribe: func(string, []byte) (string, error) {
			return FakeTranscription, nil
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", f.handleChat)
	mux.HandleFunc("/v1/audio/speech", f.handleSpeech)
	mux.HandleFunc("/v1/audio/transcriptions", f.handleTranscription)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the value for the client's base URL setting.
func (f *FakeOpenAI) BaseURL() string {
	return f.Server.URL + "/v1"
}

// SetChat replaces the chat completion behaviour. Returning an error answers with HTTP 500.
func (f *FakeOpenAI) SetChat(fn func(openai.ChatCompletionRequest) (string, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chat = fn
}

// SetSpeech replaces the speech behaviour. Returning an error answers with HTTP 500.
func (f *FakeOpenAI) SetSpeech(fn func(openai.CreateSpeechRequest) ([]byte, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speech = fn
}

// SetTranscribe replaces the transcription behaviour. Returning an error answers with HTTP 500.
func (f *FakeOpenAI) SetTranscribe(fn func(filename string, audio []byte) (string, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcribe = fn
}

// ChatRequests returns the chat completion requests received so far.
func (f *FakeOpenAI) ChatRequests() []openai.ChatCompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), f.chatRequests...)
}

func (f *FakeOpenAI) handleChat(w http.ResponseWriter, r *http.Request) {
	var request openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeVendorError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.mu.Lock()
	f.chatRequests = append(f.chatRequests, request)
	chat := f.chat
	f.mu.Unlock()

	content, err := chat(request)
	if err != nil {
		writeVendorError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ //nolint:exhaustruct // only what the client reads.
		ID:     "chatcmpl-fake",
		Object: "chat.completion",
		Model:  request.Model,
		Choices: []openai.ChatCompletionChoice{{ //nolint:exhaustruct // only what the client reads.
			Index: 0,
			Message: openai.ChatCompletionMessage{ //nolint:exhaustruct // only what the client reads.
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
			FinishReason: openai.FinishReasonStop,
		}},
	})
}

func (f *FakeOpenAI) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var request openai.CreateSpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeVendorError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.mu.Lock()
	speech := f.speech
	f.mu.Unlock()

	audio, err := speech(request)
	if err != nil {
		writeVendorError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	_, _ = w.Write(audio)
}

func (f *FakeOpenAI) handleTranscription(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeVendorError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer func() {
		_ = file.Close()
	}()
	audio, err := io.ReadAll(file)
	if err != nil {
		writeVendorError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.mu.Lock()
	transcribe := f.transcribe
	f.mu.Unlock()

	text, err := transcribe(header.Filename, audio)
	if err != nil {
		writeVendorError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"text": text})
}

func writeVendorError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": msg, "type": "server_error", "code": nil},
	})
}

// DefaultChatReply answers like a cooperative model.
func DefaultChatReply(request openai.ChatCompletionRequest) (string, error) {
	if request.ResponseFormat == nil || len(request.Messages) == 0 {
		return questionReply(request), nil
	}
	instructions := request.Messages[0].Content
	switch {
	case strings.Contains(instructions, "category_scores"):
		return evaluationReply(instructions), nil
	case strings.Contains(instructions, "criterion_scores"):
		return turnReply(instructions), nil
	default:
		return `{"scenario": "on_topic", "reasoning": "The answer addresses the question.", "answer_quality": "good"}`, nil
	}
}

func questionReply(request openai.ChatCompletionRequest) string {
	asked := 0
	for _, m := range request.Messages {
		if m.Role == openai.ChatMessageRoleAssistant {
			asked++
		}
	}
	instruction := request.Messages[len(request.Messages)-1].Content
	if _, rest, ok := strings.Cut(instruction, "first question for "); ok {
		name, _, _ := strings.Cut(rest, ". Start")
		return fmt.Sprintf("Hello %s, welcome! What drew you to this profession?", name)
	}
	return fmt.Sprintf("That is helpful. Question %d: how would you approach a new challenge?", asked+1)
}

func evaluationReply(instructions string) string {
	scores := map[string]float64{}
	for _, match := range categoryLine.FindAllStringSubmatch(instructions, -1) {
		name, err := strconv.Unquote(match[1])
		if err != nil {
			continue
		}
		scores[name] = 8
	}
	reply, _ := json.Marshal(map[string]any{
		"overall_score":         8.1,
		"category_scores":       scores,
		"strengths":             []string{"Clear communication", "Relevant experience"},
		"areas_for_improvement": []string{"More specific examples"},
		"detailed_feedback":     "The candidate answered every question with relevant detail.",
		"summary":               "A solid interview.",
	})
	return "```json\n" + string(reply) + "\n```"
}

func turnReply(instructions string) string {
	scores := map[string]float64{}
	for _, match := range criterionLine.FindAllStringSubmatch(instructions, -1) {
		scores[match[1]] = 7
	}
	reply, _ := json.Marshal(map[string]any{
		"criterion_scores": scores,
		"feedback":         "A relevant answer.",
		"strengths":        []string{"Relevant"},
		"improvements":     []string{"More depth"},
	})
	return string(reply)
}
