package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"

	"github.com/sashabaranov/go-openai"
)

const openAIProvider = "openai"

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
// One go-openai client is kept per credential.
type OpenAIClient struct {
	httpClient openai.HTTPDoer
	clients    map[string]*openai.Client
	baseURL    string
	mu         sync.Mutex
}

// NewOpenAIClient returns a client for baseURL. A nil httpClient uses the
// library default.
func NewOpenAIClient(baseURL string, httpClient *http.Client) *OpenAIClient {
	c := &OpenAIClient{
		baseURL: baseURL,
		clients: make(map[string]*openai.Client),
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

func (c *OpenAIClient) clientFor(key string) *openai.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[key]; ok {
		return client
	}
	cfg := openai.DefaultConfig(key)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	if c.httpClient != nil {
		cfg.HTTPClient = c.httpClient
	}
	client := openai.NewClientWithConfig(cfg)
	c.clients[key] = client
	return client
}

// Generate implements Generator.
func (c *OpenAIClient) Generate(ctx context.Context, call Call, parts []Part) (string, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if hasInline(parts) {
		for _, p := range parts {
			if p.IsInline() {
				msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data),
						Detail: openai.ImageURLDetailAuto,
					},
				})
				continue
			}
			msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		}
	} else {
		for i, p := range parts {
			if i > 0 {
				msg.Content += "\n\n"
			}
			msg.Content += p.Text
		}
	}

	req := openai.ChatCompletionRequest{
		Model: call.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			msg,
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.clientFor(call.Key).CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ValidationError{Reason: "openai returned no choices"}
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", &ValidationError{Reason: "openai returned empty content (finish reason " + string(resp.Choices[0].FinishReason) + ")"}
	}
	return content, nil
}

// mapOpenAIError converts library errors into *APIError so classification
// uses the HTTP status rather than message text alone.
func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Type
		if code, ok := apiErr.Code.(string); ok && code != "" {
			status = code
		}
		return &APIError{
			Provider:   openAIProvider,
			StatusCode: apiErr.HTTPStatusCode,
			Status:     status,
			Message:    apiErr.Message,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := reqErr.HTTPStatus
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &APIError{
			Provider:   openAIProvider,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    msg,
		}
	}
	return transportError(openAIProvider, err)
}

func hasInline(parts []Part) bool {
	for _, p := range parts {
		if p.IsInline() {
			return true
		}
	}
	return false
}
