package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/domain"
)

// openaiService talks to an OpenAI-compatible speech-to-text endpoint
// (POST /audio/transcriptions, multipart upload, text response).
type openaiService struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewOpenAIService creates a Service over an OpenAI-compatible API.
func NewOpenAIService(cfg config.TranscriberConfig, apiKey string) Service {
	return &openaiService{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Minute},
	}
}

func (s *openaiService) Transcribe(ctx context.Context, seg domain.AudioSegment, prompt string) (string, error) {
	body, contentType, err := s.buildForm(seg.Path, prompt)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe segment %d: %w: %w", seg.Index, err, domain.ErrNetwork)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w: %w", err, domain.ErrNetwork)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(seg.Index, resp.StatusCode, payload)
	}
	return string(payload), nil
}

func (s *openaiService) buildForm(path, prompt string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open segment: %w: %w", err, domain.ErrInvalidAudio)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read segment: %w", err)
	}
	w.WriteField("model", s.model)
	w.WriteField("response_format", "text")
	if prompt != "" {
		w.WriteField("prompt", prompt)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func classifyStatus(index, status int, payload []byte) error {
	detail := strings.TrimSpace(string(payload))
	if len(detail) > 300 {
		detail = detail[:300]
	}
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("transcribe segment %d: status %d: %s: %w", index, status, detail, domain.ErrRateLimited)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("transcribe segment %d: status %d: %w", index, status, domain.ErrAuthRequired)
	case status == http.StatusBadRequest ||
		status == http.StatusUnsupportedMediaType ||
		status == http.StatusUnprocessableEntity ||
		status == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("transcribe segment %d: status %d: %s: %w", index, status, detail, domain.ErrInvalidAudio)
	case status >= 500:
		return fmt.Errorf("transcribe segment %d: status %d: %w", index, status, domain.ErrService)
	default:
		return fmt.Errorf("transcribe segment %d: unexpected status %d: %s: %w", index, status, detail, domain.ErrService)
	}
}
