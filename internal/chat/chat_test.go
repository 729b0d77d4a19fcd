package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/transitlab/railcast/internal/logger"
)

const faqJSON = `{
  "iOSfaqs": {
    "sections": [
      {
        "sec_name": "Tickets",
        "sec_data": [
          {"q": "How do I buy a ticket?", "a": "Use the mobile app or a station kiosk."},
          {"q": "Can I get a refund?", "a": "Refunds are available within 30 days."}
        ]
      },
      {
        "sec_name": "Delays",
        "sec_data": [
          {"q": "Where do I check delays?", "a": "The departures board shows live status."}
        ]
      }
    ]
  }
}`

func loadTestFAQ(t *testing.T) *FAQ {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faq.json")
	if err := os.WriteFile(path, []byte(faqJSON), 0644); err != nil {
		t.Fatal(err)
	}
	faq, err := LoadFAQ(path)
	if err != nil {
		t.Fatalf("failed to load faq: %v", err)
	}
	return faq
}

func TestLoadFAQ(t *testing.T) {
	faq := loadTestFAQ(t)

	if len(faq.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(faq.Sections))
	}
	if faq.Sections[0].Name != "Tickets" {
		t.Errorf("unexpected section name: %s", faq.Sections[0].Name)
	}
	if len(faq.Sections[0].Entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(faq.Sections[0].Entries))
	}
}

func TestFAQContext(t *testing.T) {
	faq := loadTestFAQ(t)

	ctx := faq.Context()
	if !strings.Contains(ctx, "Tickets") || !strings.Contains(ctx, "station kiosk") {
		t.Error("context must include section names and answers")
	}

	var empty *FAQ
	if empty.Context() != "" {
		t.Error("nil FAQ must render an empty context")
	}
}

func newTestClient(t *testing.T, url string, historyLimit int) *Client {
	t.Helper()
	return NewClient(Options{
		BaseURL:      url,
		APIKey:       "test-key",
		Model:        "gpt-3.5-turbo",
		MaxTokens:    200,
		Temperature:  0.7,
		HistoryLimit: historyLimit,
		Timeout:      2 * time.Second,
	}, loadTestFAQ(t), logger.Discard())
}

func completionHandler(t *testing.T, capture *completionRequest, reply string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}
}

func TestRespond(t *testing.T) {
	var captured completionRequest
	srv := httptest.NewServer(completionHandler(t, &captured, "Use the mobile app."))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5)
	reply, err := c.Respond(context.Background(), nil, "How do I buy a ticket?")
	if err != nil {
		t.Fatalf("respond failed: %v", err)
	}
	if reply != "Use the mobile app." {
		t.Errorf("unexpected reply: %s", reply)
	}

	if captured.Model != "gpt-3.5-turbo" {
		t.Errorf("unexpected model: %s", captured.Model)
	}
	if captured.MaxTokens != 200 {
		t.Errorf("unexpected max_tokens: %d", captured.MaxTokens)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected system plus user message, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" ||
		!strings.Contains(captured.Messages[0].Content, "station kiosk") {
		t.Error("first message must be the FAQ grounding prompt")
	}
	if captured.Messages[1].Role != "user" {
		t.Errorf("last message must be the prompt, got role %s", captured.Messages[1].Role)
	}
}

func TestRespondCapsHistory(t *testing.T) {
	var captured completionRequest
	srv := httptest.NewServer(completionHandler(t, &captured, "ok"))
	defer srv.Close()

	history := make([]Message, 8)
	for i := range history {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history[i] = Message{Role: role, Content: strings.Repeat("x", i+1)}
	}

	c := newTestClient(t, srv.URL, 5)
	if _, err := c.Respond(context.Background(), history, "latest question"); err != nil {
		t.Fatalf("respond failed: %v", err)
	}

	// system + capped history (5) + prompt
	if len(captured.Messages) != 7 {
		t.Fatalf("expected 7 messages, got %d", len(captured.Messages))
	}
	// The oldest three turns must be dropped.
	if captured.Messages[1].Content != strings.Repeat("x", 4) {
		t.Errorf("history not trimmed from the front: %q", captured.Messages[1].Content)
	}
}

func TestRespondRetriesOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "recovered"}},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5)
	reply, err := c.Respond(context.Background(), nil, "hello")
	if err != nil {
		t.Fatalf("respond should recover on retry: %v", err)
	}
	if reply != "recovered" {
		t.Errorf("unexpected reply: %s", reply)
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 upstream calls, got %d", calls)
	}
}

func TestRespondDoesNotRetryClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5)
	if _, err := c.Respond(context.Background(), nil, "hello"); err == nil {
		t.Error("expected error for rejected request")
	}
	if calls != 1 {
		t.Errorf("client errors must not be retried, got %d upstream calls", calls)
	}
}

func TestRespondFailsAfterRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5)
	if _, err := c.Respond(context.Background(), nil, "hello"); err == nil {
		t.Error("expected error after exhausted retry")
	}
}

func TestRespondRejectsEmptyPrompt(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0", 5)
	if _, err := c.Respond(context.Background(), nil, "   "); err == nil {
		t.Error("expected error for blank prompt")
	}
}
