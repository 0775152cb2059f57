package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/j-veylop/mise/internal/logger"
)

const geminiProvider = "gemini"

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewGeminiClient returns a client for baseURL. A nil httpClient gets a
// client with a 60 second timeout.
func NewGeminiClient(baseURL string, httpClient *http.Client) *GeminiClient {
	if httpClient == nil {
		httpClient = defaultHTTPClient(0)
	}
	return &GeminiClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
	Text       string            `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	GenerationConfig struct {
		ResponseMIMEType string `json:"responseMimeType"`
	} `json:"generationConfig"`
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Candidates []struct {
		FinishReason string        `json:"finishReason"`
		Content      geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Generate implements Generator.
func (c *GeminiClient) Generate(ctx context.Context, call Call, parts []Part) (string, error) {
	var reqBody geminiRequest
	reqBody.GenerationConfig.ResponseMIMEType = "application/json"
	content := geminiContent{Role: "user"}
	for _, p := range parts {
		if p.IsInline() {
			content.Parts = append(content.Parts, geminiPart{InlineData: &geminiInlineData{
				MIMEType: p.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		content.Parts = append(content.Parts, geminiPart{Text: p.Text})
	}
	reqBody.Contents = []geminiContent{content}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(call.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", call.Key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(geminiProvider, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", geminiAPIError(resp.StatusCode, body)
	}

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", &ParseError{Err: fmt.Errorf("gemini envelope: %w", err), Raw: truncate(string(body), 200)}
	}
	if gr.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", gr.PromptFeedback.BlockReason)
	}
	if len(gr.Candidates) == 0 {
		return "", &ValidationError{Reason: "gemini returned no candidates"}
	}

	var text strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return "", &ValidationError{Reason: "gemini returned empty content (finish reason " + gr.Candidates[0].FinishReason + ")"}
	}
	return text.String(), nil
}

func geminiAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{Provider: geminiProvider, StatusCode: statusCode}
	var er geminiErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		apiErr.Status = er.Error.Status
		apiErr.Message = er.Error.Message
		return apiErr
	}
	apiErr.Message = truncate(string(body), 200)
	return apiErr
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
