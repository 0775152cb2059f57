package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/j-veylop/mise/internal/logger"
	"github.com/j-veylop/mise/internal/models"
)

const imageProvider = "image"

// ErrImageNotConfigured is returned when no image endpoint is configured.
var ErrImageNotConfigured = errors.New("image generation endpoint not configured")

// ImageClient posts a prompt to an image generation endpoint. The endpoint
// may return raw image bytes, or JSON carrying base64 data.
type ImageClient struct {
	httpClient *http.Client
	url        string
	key        string
}

// NewImageClient returns a client for url using a single credential.
func NewImageClient(url, key string, httpClient *http.Client) *ImageClient {
	if httpClient == nil {
		httpClient = defaultHTTPClient(0)
	}
	return &ImageClient{httpClient: httpClient, url: url, key: key}
}

type imageJSONResponse struct {
	Image    string `json:"image"`
	MIMEType string `json:"mimeType"`
	Data     []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImage implements ImageGenerator.
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) (*models.GeneratedImage, error) {
	if c == nil || c.url == "" {
		return nil, ErrImageNotConfigured
	}

	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(imageProvider, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Provider:   imageProvider,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(body), 200),
		}
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "image/") {
		return &models.GeneratedImage{
			MIMEType: mediaType,
			Base64:   base64.StdEncoding.EncodeToString(body),
		}, nil
	}

	var jr imageJSONResponse
	if err := json.Unmarshal(body, &jr); err != nil {
		return nil, &ParseError{Err: err, Raw: truncate(string(body), 200)}
	}
	img := &models.GeneratedImage{MIMEType: jr.MIMEType, Base64: jr.Image}
	if img.Base64 == "" && len(jr.Data) > 0 {
		img.Base64 = jr.Data[0].B64JSON
	}
	if img.Base64 == "" {
		return nil, &ValidationError{Reason: "image response carried no data"}
	}
	if img.MIMEType == "" {
		img.MIMEType = "image/png"
	}
	return img, nil
}

// DecodeImage returns the raw bytes of a generated image.
func DecodeImage(img *models.GeneratedImage) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(img.Base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return data, nil
}
