package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/models"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUnexpectedStatus is returned when the server answers with a status other than 200 OK.
var ErrUnexpectedStatus = errors.NewSentinel("unexpected status code")

// Client speaks the JSON API of the interview server.
type Client struct {
	client *http.Client
	url    string
}

// NewClient creates a client for the server at url.
func NewClient(url string) *Client {
	return &Client{
		client: &http.Client{Timeout: 2 * time.Minute}, //nolint:exhaustruct,mnd // question generation can be slow.
		url:    url,
	}
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(50 * time.Millisecond) //nolint:mnd // 50ms
		}
	}
}

// StartInterview starts an interview and returns the greeting question.
func (c *Client) StartInterview(
	ctx context.Context,
	req models.StartInterviewRequest,
	includeAudio bool,
) (models.QuestionResponse, error) {
	var resp models.QuestionResponse
	err := c.postJSON(ctx, "/api/interview/start?include_audio="+strconv.FormatBool(includeAudio), req, &resp)
	return resp, err
}

// NextQuestion submits the answer at the end of the conversation history and returns the next question, or the
// completion notice after the last answer.
func (c *Client) NextQuestion(
	ctx context.Context,
	req models.QuestionRequest,
	includeAudio bool,
) (models.QuestionResponse, error) {
	var resp models.QuestionResponse
	err := c.postJSON(ctx, "/api/interview/question?include_audio="+strconv.FormatBool(includeAudio), req, &resp)
	return resp, err
}

// Evaluate scores a completed interview.
func (c *Client) Evaluate(ctx context.Context, req models.EvaluationRequest) (models.EvaluationResponse, error) {
	var resp models.EvaluationResponse
	err := c.postJSON(ctx, "/api/interview/evaluate", req, &resp)
	return resp, err
}

// EvaluateTurn scores a single answer.
func (c *Client) EvaluateTurn(ctx context.Context, req models.TurnEvaluationRequest) (models.TurnScore, error) {
	var resp models.TurnEvaluationResponse
	err := c.postJSON(ctx, "/api/interview/evaluate-turn", req, &resp)
	return resp.TurnScore, err
}

// Categories lists the categories of variant. An empty variant selects the server default.
func (c *Client) Categories(ctx context.Context, variant string) (models.CategoriesResponse, error) {
	var resp models.CategoriesResponse
	urlPath := "/api/categories"
	if variant != "" {
		urlPath += "?variant=" + url.QueryEscape(variant)
	}
	err := c.getJSON(ctx, urlPath, &resp)
	return resp, err
}

// InterviewTypes lists the interview types the server offers.
func (c *Client) InterviewTypes(ctx context.Context) (models.InterviewTypesResponse, error) {
	var resp models.InterviewTypesResponse
	err := c.getJSON(ctx, "/api/interview-types", &resp)
	return resp, err
}

// EvaluationStats reports the evaluation outcomes recorded by the server.
func (c *Client) EvaluationStats(ctx context.Context) (models.EvaluationStats, error) {
	var resp models.EvaluationStats
	err := c.getJSON(ctx, "/api/evaluations/stats", &resp)
	return resp, err
}

// Transcribe uploads a recording and returns its transcription.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", errors.Wrap(err, "create form file")
	}
	if _, err = io.Copy(part, audio); err != nil {
		return "", errors.Wrap(err, "copy audio")
	}
	if err = writer.Close(); err != nil {
		return "", errors.Wrap(err, "close multipart writer")
	}
	var req *http.Request
	if req, err = c.newRequestWithContext(ctx, http.MethodPost, "/api/audio/transcribe", &body); err != nil {
		return "", errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	var resp models.TranscriptionResponse
	if err = c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Transcription, nil
}

// GetDoc fetches a URL and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
		doc  *goquery.Document
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "new request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return nil, errors.Wrap(ErrUnexpectedStatus, "get document", slog.Int("status", resp.StatusCode))
	}
	if doc, err = goquery.NewDocumentFromReader(resp.Body); err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	return doc, nil
}

func (c *Client) getJSON(ctx context.Context, urlPath string, out any) error {
	req, err := c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil)
	if err != nil {
		return errors.Wrap(err, "new request with context")
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, urlPath string, in any, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}
	var req *http.Request
	if req, err = c.newRequestWithContext(ctx, http.MethodPost, urlPath, bytes.NewReader(payload)); err != nil {
		return errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do sends req and decodes a 200 response into out. Other responses become [ErrUnexpectedStatus] carrying the
// detail the server reported.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request", slog.String("path", req.URL.Path))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	var body []byte
	if body, err = io.ReadAll(resp.Body); err != nil {
		return errors.Wrap(err, "read body bytes")
	}
	if resp.StatusCode != http.StatusOK {
		var detail models.ErrorResponse
		_ = json.Unmarshal(body, &detail)
		return errors.Wrap(ErrUnexpectedStatus, detail.Detail,
			slog.Int("status", resp.StatusCode), slog.String("path", req.URL.Path))
	}
	if err = json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "decode response", slog.String("path", req.URL.Path))
	}
	return nil
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return req, nil
}
