package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestOpenAIGenerate(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		want     string
		wantKind FailureKind
		wantErr  bool
	}{
		{
			name:   "Success",
			status: 200,
			body:   `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"ok\":true}"},"finish_reason":"stop"}]}`,
			want:   `{"ok":true}`,
		},
		{
			name:     "RateLimited",
			status:   429,
			body:     `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`,
			wantErr:  true,
			wantKind: FailureRetryable,
		},
		{
			name:     "BadRequest",
			status:   400,
			body:     `{"error":{"message":"Unsupported value for response_format","type":"invalid_request_error"}}`,
			wantErr:  true,
			wantKind: FailureTerminal,
		},
		{
			name:     "NoChoices",
			status:   200,
			body:     `{"id":"1","object":"chat.completion","choices":[]}`,
			wantErr:  true,
			wantKind: FailureTerminal,
		},
		{
			name:     "EmptyContent",
			status:   200,
			body:     `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":""},"finish_reason":"length"}]}`,
			wantErr:  true,
			wantKind: FailureTerminal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &MockRoundTripper{
				RoundTripFunc: func(req *http.Request) (*http.Response, error) {
					return jsonResponse(tt.status, tt.body), nil
				},
			}
			c := NewOpenAIClient("https://example.test/v1", &http.Client{Transport: transport})
			got, err := c.Generate(context.Background(), Call{Model: "gpt-4o-mini", Key: "k"}, []Part{TextPart("hi")})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Generate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if kind := Classify(err); kind != tt.wantKind {
					t.Errorf("Classify(%v) = %v, want %v", err, kind, tt.wantKind)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenAIRequestShape(t *testing.T) {
	var body openai.ChatCompletionRequest
	var auth, path string
	transport := &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			auth = req.Header.Get("Authorization")
			path = req.URL.Path
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return nil, err
			}
			return jsonResponse(200, `{"choices":[{"message":{"role":"assistant","content":"[]"}}]}`), nil
		},
	}

	c := NewOpenAIClient("https://example.test/v1", &http.Client{Transport: transport})
	parts := []Part{TextPart("what is this"), ImagePart([]byte("png-bytes"), "image/png")}
	if _, err := c.Generate(context.Background(), Call{Model: "gpt-4o", Key: "secret"}, parts); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
	if path != "/v1/chat/completions" {
		t.Errorf("path = %q", path)
	}
	if body.Model != "gpt-4o" {
		t.Errorf("model = %q", body.Model)
	}
	if len(body.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(body.Messages))
	}
	user := body.Messages[1]
	if len(user.MultiContent) != 2 {
		t.Fatalf("multi content = %+v, want text and image", user.MultiContent)
	}
	img := user.MultiContent[1].ImageURL
	if img == nil || !strings.HasPrefix(img.URL, "data:image/png;base64,") {
		t.Errorf("image part = %+v", img)
	}
}

func TestOpenAIClientPerKey(t *testing.T) {
	c := NewOpenAIClient("", nil)
	a := c.clientFor("k1")
	if c.clientFor("k1") != a {
		t.Error("clientFor returned a new client for the same key")
	}
	if c.clientFor("k2") == a {
		t.Error("clientFor shared a client across keys")
	}
}

func TestMapOpenAIErrorNetwork(t *testing.T) {
	err := mapOpenAIError(errors.New("dial tcp: connection refused"))
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("mapOpenAIError() = %v, want plain transport error", err)
	}
	if IsRetryable(err) {
		t.Errorf("IsRetryable(%v) = true, want false", err)
	}
}
