package main

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/interviewprep/internal/e2etest"
	"github.com/myrjola/interviewprep/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"testing"
	"time"
)

// testLookupEnv points the server at an in-memory database and the fake OpenAI API.
func testLookupEnv(fake *testhelpers.FakeOpenAI, overrides map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if value, ok := overrides[key]; ok {
			return value, true
		}
		switch key {
		case "INTERVIEW_ADDR":
			return "localhost:0", true
		case "INTERVIEW_SQLITE_URL":
			return ":memory:", true
		case "OPENAI_API_KEY":
			return "test-key", true
		case "OPENAI_BASE_URL":
			return fake.BaseURL(), true
		default:
			return "", false
		}
	}
}

type testServer struct {
	*e2etest.Server
	url    string
	client http.Client
	fake   *testhelpers.FakeOpenAI
}

// startTestServer starts the server against a fresh fake OpenAI API, waits for it to be ready and stops it when the
// test ends. overrides replace environment variables.
func startTestServer(t *testing.T, w io.Writer, overrides map[string]string) *testServer {
	t.Helper()
	fake := testhelpers.NewFakeOpenAI(t)
	server, err := e2etest.StartServer(context.Background(), w, testLookupEnv(fake, overrides), run)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, server.Stop())
	})
	return &testServer{
		Server: server,
		url:    server.URL(),
		client: http.Client{Timeout: 10 * time.Second}, //nolint:exhaustruct // defaults are fine.
		fake:   fake,
	}
}

// Do sends req and returns the status code and body of the response.
func (s *testServer) Do(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

// PostJSON posts body as JSON and decodes the response into out. The status code is returned.
func (s *testServer) PostJSON(t *testing.T, urlPath string, body any, out any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, s.url+urlPath, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	status, respBody := s.Do(t, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(respBody, out), "body: %s", respBody)
	}
	return status
}

// GetJSON fetches urlPath and decodes the response into out. The status code is returned.
func (s *testServer) GetJSON(t *testing.T, urlPath string, out any) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.url+urlPath, nil)
	require.NoError(t, err)
	status, body := s.Do(t, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return status
}

// GetDoc fetches a URL and returns a goquery document together with the response headers.
func (s *testServer) GetDoc(t *testing.T, urlPath string) (*goquery.Document, http.Header) {
	t.Helper()
	resp, err := s.client.Get(s.url + urlPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc, resp.Header
}
