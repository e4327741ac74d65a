package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"ChannelMonitor/internal/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.GeminiConfig{
		Endpoint: serverURL,
		Model:    "gemini-2.5-pro",
		APIKey:   "test-key",
		Temp:     0.3,
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-pro:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Summary:\n"},{"text":"short and sweet"}]}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	text, err := client.Summarize(context.Background(), "Test Talk", "transcript words")
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}

	if text != "Summary:\nshort and sweet" {
		t.Fatalf("unexpected text: %q", text)
	}
	if captured.GenerationConfig.Temperature != 0.3 {
		t.Fatalf("unexpected temperature: %v", captured.GenerationConfig.Temperature)
	}

	prompt := captured.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "Test Talk") || !strings.Contains(prompt, "transcript words") {
		t.Fatalf("prompt missing title or transcript: %q", prompt)
	}
}

func TestSummarizeTruncatesTranscript(t *testing.T) {
	t.Parallel()

	var promptLen int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		promptLen = len(req.Contents[0].Parts[0].Text)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	long := strings.Repeat("a", maxTranscriptBytes*2)
	if _, err := client.Summarize(context.Background(), "T", long); err != nil {
		t.Fatalf("Summarize error: %v", err)
	}

	if promptLen > maxTranscriptBytes+len(promptTemplate) {
		t.Fatalf("transcript was not truncated: prompt length %d", promptLen)
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	t.Parallel()

	// "é" is two bytes; an odd limit lands mid-rune and must back off.
	text := strings.Repeat("é", 10)
	got := truncate(text, 7)
	if len(got) != 6 {
		t.Fatalf("expected 6 bytes, got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}

	if truncate("short", 100) != "short" {
		t.Fatal("text under the limit must pass through unchanged")
	}
	if got := truncate("abcdef", 3); got != "abc" {
		t.Fatalf("ascii truncation should cut exactly at the limit, got %q", got)
	}
}

func TestSummarizeEmptyCandidates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.Summarize(context.Background(), "T", "x"); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestSummarizeAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Summarize(context.Background(), "T", "x")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestSummarizeMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewClient(config.GeminiConfig{})
	if _, err := client.Summarize(context.Background(), "T", "x"); err == nil {
		t.Fatal("expected misconfiguration error")
	}
}
