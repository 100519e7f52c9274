package summarizer_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"

	"platingreport/internal/summarizer"
)

func TestIsOverloaded(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("503 UNAVAILABLE. {'message': 'busy'}"), true},
		{errors.New("Error 503, Message: The model is overloaded., Status: UNAVAILABLE"), true},
		{errors.New("Error 503, Message: try later, Status: UNAVAILABLE, Details: []"), true},
		{errors.New(`POST "https://api.openai.com/v1/responses": 503 Service Unavailable`), true},
		{fmt.Errorf("generate content: %w", errors.New("The model is overloaded")), true},
		{summarizer.ErrOverloaded, true},
		{errors.New("429 RESOURCE_EXHAUSTED"), false},
		{errors.New("400 INVALID_ARGUMENT"), false},
		{errors.New("the model is overloaded"), false},
	}

	for _, c := range cases {
		if got := summarizer.IsOverloaded(c.err); got != c.want {
			t.Fatalf("IsOverloaded(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestIsOverloadedMatchesSDKErrors(t *testing.T) {
	geminiErr := fmt.Errorf("generate content: %w", &genai.APIError{
		Code:    503,
		Message: "The model is overloaded. Please try again later.",
		Status:  "UNAVAILABLE",
	})
	if !summarizer.IsOverloaded(geminiErr) {
		t.Fatalf("expected genai 503 to be overloaded: %v", geminiErr)
	}

	geminiBusy := fmt.Errorf("generate content: %w", &genai.APIError{Code: 503, Status: "UNAVAILABLE"})
	if !summarizer.IsOverloaded(geminiBusy) {
		t.Fatalf("expected genai UNAVAILABLE to be overloaded: %v", geminiBusy)
	}

	geminiQuota := fmt.Errorf("generate content: %w", &genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"})
	if summarizer.IsOverloaded(geminiQuota) {
		t.Fatalf("expected genai 429 not to be overloaded: %v", geminiQuota)
	}

	req := httptest.NewRequest(http.MethodPost, "https://api.openai.com/v1/responses", nil)
	openaiErr := fmt.Errorf("do request: %w", &openai.Error{
		StatusCode: http.StatusServiceUnavailable,
		Request:    req,
		Response:   &http.Response{StatusCode: http.StatusServiceUnavailable, Request: req},
	})
	if !summarizer.IsOverloaded(openaiErr) {
		t.Fatalf("expected openai 503 to be overloaded: %v", openaiErr)
	}

	openaiBad := fmt.Errorf("do request: %w", &openai.Error{
		StatusCode: http.StatusBadRequest,
		Request:    req,
		Response:   &http.Response{StatusCode: http.StatusBadRequest, Request: req},
	})
	if summarizer.IsOverloaded(openaiBad) {
		t.Fatalf("expected openai 400 not to be overloaded: %v", openaiBad)
	}
}

func TestReply(t *testing.T) {
	if got := summarizer.Reply("text", nil); got != "text" {
		t.Fatalf("unexpected reply %q", got)
	}

	got := summarizer.Reply("", &summarizer.ExhaustedError{Attempts: 4})
	want := "Error: model is overloaded after 4 attempts, try again later"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if !summarizer.IsErrorReply(got) {
		t.Fatalf("expected error marker on %q", got)
	}

	callReply := summarizer.Reply("", &summarizer.CallError{Attempt: 1, Err: errors.New("boom")})
	if callReply != "Error: request failed: boom" {
		t.Fatalf("unexpected call error reply %q", callReply)
	}
	if summarizer.IsErrorReply("plain text") {
		t.Fatalf("plain text must not carry the error marker")
	}
}

func TestGeneratorsRequireCredential(t *testing.T) {
	if _, err := summarizer.NewOpenAIGenerator("  "); !errors.Is(err, summarizer.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if _, err := summarizer.NewGeminiGenerator(t.Context(), ""); !errors.Is(err, summarizer.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if _, err := summarizer.NewGenerator(t.Context(), "claude", "key"); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}
