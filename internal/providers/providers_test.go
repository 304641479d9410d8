package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gitguardhq/gitguard/internal/config"
)

// rewriteTransport rewrites all request URLs to point at the test server.
type rewriteTransport struct {
	base    http.RoundTripper
	baseURL string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = "http"
	req.URL.Host = t.baseURL[len("http://"):]
	if t.base != nil {
		return t.base.RoundTrip(req)
	}
	return http.DefaultTransport.RoundTrip(req)
}

func testClient(server *httptest.Server) *http.Client {
	return &http.Client{
		Transport: &rewriteTransport{
			base:    server.Client().Transport,
			baseURL: server.URL,
		},
	}
}

func chatServer(t *testing.T, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		resp := chatResponse{
			Model:   "gpt-4o",
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: `{"suggestions":[]}`}}},
			Usage:   chatUsage{TotalTokens: 42},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestAzure_Complete(t *testing.T) {
	server := chatServer(t, func(r *http.Request) {
		if r.Header.Get("api-key") != "test-key" {
			t.Error("missing api-key header")
		}
		if !strings.Contains(r.URL.Path, "/openai/deployments/gpt4o/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api-version") != azureDefaultAPIVersion {
			t.Errorf("api-version = %q", r.URL.Query().Get("api-version"))
		}
	})
	defer server.Close()

	a := &Azure{
		apiKey:     "test-key",
		endpoint:   "https://example.openai.azure.com",
		deployment: "gpt4o",
		apiVersion: azureDefaultAPIVersion,
		client:     testClient(server),
	}

	resp, err := a.Complete(context.Background(), Request{
		SystemPrompt: "system",
		UserPrompt:   "user",
		MaxTokens:    100,
		Temperature:  0.7,
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if resp.Text != `{"suggestions":[]}` {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", resp.TokensUsed)
	}
	if resp.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", resp.Model)
	}
}

func TestOpenAI_Complete(t *testing.T) {
	server := chatServer(t, func(r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing bearer token")
		}
		var body chatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if body.Model != "gpt-4o-mini" {
			t.Errorf("Model = %q", body.Model)
		}
		if body.ResponseFormat == nil || body.ResponseFormat.Type != "json_object" {
			t.Error("missing json_object response format")
		}
	})
	defer server.Close()

	o := &OpenAI{apiKey: "test-key", model: "gpt-4o-mini", client: testClient(server)}
	resp, err := o.Complete(context.Background(), Request{UserPrompt: "user"})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if resp.Text != `{"suggestions":[]}` {
		t.Errorf("Text = %q", resp.Text)
	}
}

func TestAnthropic_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("missing API key header")
		}
		if r.Header.Get("anthropic-version") != anthropicAPIVersion {
			t.Error("missing anthropic-version header")
		}
		resp := anthropicResponse{
			Model:   anthropicDefaultModel,
			Content: []anthropicBlock{{Type: "text", Text: `{"sugg`}, {Type: "text", Text: `estions":[]}`}},
			Usage:   anthropicUsage{InputTokens: 100, OutputTokens: 10},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "test-key", model: anthropicDefaultModel, client: testClient(server)}
	resp, err := a.Complete(context.Background(), Request{SystemPrompt: "system", UserPrompt: "user"})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if resp.Text != `{"suggestions":[]}` {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.TokensUsed != 110 {
		t.Errorf("TokensUsed = %d, want 110", resp.TokensUsed)
	}
}

func TestComplete_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer server.Close()

	o := &OpenAI{apiKey: "k", model: "gpt-4o", client: testClient(server)}
	_, err := o.Complete(context.Background(), Request{UserPrompt: "user"})
	if !IsRateLimit(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("rate limit should be retryable")
	}
}

func TestComplete_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	o := &OpenAI{apiKey: "bad", model: "gpt-4o", client: testClient(server)}
	_, err := o.Complete(context.Background(), Request{UserPrompt: "user"})

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", pe.StatusCode)
	}
	if IsRetryable(err) {
		t.Error("auth errors must not be retryable")
	}
}

func TestComplete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	o := &OpenAI{apiKey: "k", model: "gpt-4o", client: testClient(server)}
	_, err := o.Complete(ctx, Request{UserPrompt: "user"})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("timeouts should be retryable")
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	o := &OpenAI{apiKey: "k", model: "gpt-4o", client: testClient(server)}
	_, err := o.Complete(context.Background(), Request{UserPrompt: "user"})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
	if IsRetryable(err) {
		t.Error("malformed responses must not be retryable")
	}
}

func TestRetryPolicy_RetriesTransient(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond}
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &RateLimitError{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryPolicy_PermanentError(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}
	err := policy.Do(context.Background(), func() error {
		calls++
		return &ProviderError{StatusCode: 400, Message: "bad request"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries for permanent errors)", calls)
	}
}

func TestRetryPolicy_ExhaustsBudget(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond}
	err := policy.Do(context.Background(), func() error {
		calls++
		return &RateLimitError{}
	})
	if !IsRateLimit(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
}

func TestRetryPolicy_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	policy := RetryPolicy{MaxRetries: 5, BaseDelay: time.Minute}
	err := policy.Do(ctx, func() error {
		calls++
		return &RateLimitError{}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestNew_Disabled(t *testing.T) {
	c, err := New(config.AIConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Name() != "disabled" {
		t.Errorf("Name = %q, want disabled", c.Name())
	}
	_, err = c.Complete(context.Background(), Request{UserPrompt: "anything"})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(config.AIConfig{Enabled: true, Provider: "carrier-pigeon"})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNew_MissingKey(t *testing.T) {
	t.Setenv("AZURE_OPENAI_API_KEY", "")
	_, err := New(config.AIConfig{
		Enabled:    true,
		Provider:   "azure",
		Endpoint:   "https://example.openai.azure.com",
		Deployment: "gpt4o",
	})
	if err == nil {
		t.Error("expected error for missing API key")
	}
}
