package assistant_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"finkid/internal/assistant"
)

func completedResponse(text string) string {
	return `{
		"id": "resp_1",
		"object": "response",
		"created_at": 1700000000,
		"status": "completed",
		"model": "test-model",
		"output": [{
			"type": "message",
			"id": "msg_1",
			"role": "assistant",
			"status": "completed",
			"content": [{"type": "output_text", "text": "` + text + `", "annotations": []}]
		}]
	}`
}

const incompleteResponse = `{
	"id": "resp_0",
	"object": "response",
	"created_at": 1700000000,
	"status": "incomplete",
	"model": "test-model",
	"incomplete_details": {"reason": "max_output_tokens"},
	"output": []
}`

type recordedRequest struct {
	path            string
	model           string
	instructions    string
	input           string
	maxOutputTokens int64
}

func newResponsesServer(t *testing.T, bodies ...string) (*httptest.Server, func() []recordedRequest) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []recordedRequest
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		var payload struct {
			Model           string `json:"model"`
			Instructions    string `json:"instructions"`
			Input           string `json:"input"`
			MaxOutputTokens int64  `json:"max_output_tokens"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Errorf("decode request: %v", err)
		}

		mu.Lock()
		requests = append(requests, recordedRequest{
			path:            r.URL.Path,
			model:           payload.Model,
			instructions:    payload.Instructions,
			input:           payload.Input,
			maxOutputTokens: payload.MaxOutputTokens,
		})
		i := min(len(requests), len(bodies)) - 1
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bodies[i]))
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()

		return append([]recordedRequest(nil), requests...)
	}
}

func TestOpenAIAssistantAsk(t *testing.T) {
	srv, requests := newResponsesServer(t, completedResponse("Stocks are tiny pieces of a company! 🧩"))

	a, err := assistant.NewOpenAIAssistant("test-key", srv.URL+"/v1/", "test-model")
	if err != nil {
		t.Fatalf("NewOpenAIAssistant returned error: %v", err)
	}

	answer, err := a.Ask(context.Background(), assistant.Question{
		Text:    "What is a stock?",
		Context: "Apple shares rose.",
	})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}

	if answer != "Stocks are tiny pieces of a company! 🧩" {
		t.Fatalf("unexpected answer: %q", answer)
	}

	got := requests()
	if len(got) != 1 {
		t.Fatalf("expected one request, got %d", len(got))
	}

	if got[0].path != "/v1/responses" || got[0].model != "test-model" {
		t.Fatalf("unexpected request: %+v", got[0])
	}

	if !strings.Contains(got[0].input, "Background:\nApple shares rose.") ||
		!strings.Contains(got[0].input, "Question:\nWhat is a stock?") {
		t.Fatalf("unexpected input: %q", got[0].input)
	}

	if !strings.Contains(got[0].instructions, "5-year-old") {
		t.Fatalf("unexpected instructions: %q", got[0].instructions)
	}
}

func TestOpenAIAssistantRetriesWithLargerBudget(t *testing.T) {
	srv, requests := newResponsesServer(t, incompleteResponse, completedResponse("Done! 🎉"))

	a, err := assistant.NewOpenAIAssistant("test-key", srv.URL+"/v1/", "test-model")
	if err != nil {
		t.Fatalf("NewOpenAIAssistant returned error: %v", err)
	}

	answer, err := a.Ask(context.Background(), assistant.Question{Text: "What is inflation?"})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}

	if answer != "Done! 🎉" {
		t.Fatalf("unexpected answer: %q", answer)
	}

	got := requests()
	if len(got) != 2 {
		t.Fatalf("expected two requests, got %d", len(got))
	}

	if got[1].maxOutputTokens != 2*got[0].maxOutputTokens {
		t.Fatalf("expected doubled budget, got %d then %d", got[0].maxOutputTokens, got[1].maxOutputTokens)
	}
}

func TestOpenAIAssistantRejectsEmptyInput(t *testing.T) {
	if _, err := assistant.NewOpenAIAssistant(" ", "", ""); err == nil {
		t.Fatalf("expected error for empty API key")
	}

	a, err := assistant.NewOpenAIAssistant("test-key", "http://127.0.0.1:0/", "")
	if err != nil {
		t.Fatalf("NewOpenAIAssistant returned error: %v", err)
	}

	if _, err = a.Ask(context.Background(), assistant.Question{Text: "  "}); err == nil {
		t.Fatalf("expected error for empty question")
	}
}

func TestOfflineAnswersWithFallback(t *testing.T) {
	answer, err := assistant.Offline{}.Ask(context.Background(), assistant.Question{Text: " What is a bond? "})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}

	if !strings.Contains(answer, `about "What is a bond?"`) {
		t.Fatalf("expected question to be quoted, got %q", answer)
	}

	if answer != assistant.FallbackAnswer(assistant.Question{Text: "What is a bond?"}) {
		t.Fatalf("offline answer differs from fallback")
	}
}
