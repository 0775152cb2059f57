package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/j-veylop/mise/internal/models"
)

// Part is one piece of a prompt: text, or inline bytes with a MIME type.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart returns a text prompt part.
func TextPart(s string) Part {
	return Part{Text: s}
}

// ImagePart returns an inline image prompt part.
func ImagePart(data []byte, mimeType string) Part {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return Part{MIMEType: mimeType, Data: data}
}

// IsInline reports whether the part carries bytes rather than text.
func (p Part) IsInline() bool {
	return len(p.Data) > 0
}

// Generator produces raw response text for one (model, credential) trial.
type Generator interface {
	Generate(ctx context.Context, call Call, parts []Part) (string, error)
}

// ImageGenerator renders an image from a prompt. It uses a single
// credential and no model list.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*models.GeneratedImage, error)
}

// defaultHTTPClient is used when a backend is constructed without a client.
func defaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// transportError wraps a failed round trip without the request URL, so the
// endpoint path does not feed message classification.
func transportError(provider string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return fmt.Errorf("%s request failed: %w", provider, err)
}
