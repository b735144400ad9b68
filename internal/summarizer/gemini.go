package summarizer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/hansardlabs/streamdigest/internal/domain"
	"github.com/hansardlabs/streamdigest/internal/logger"
)

// geminiService is a Service over the Gemini API. Multiple API keys are
// rotated on quota errors so one exhausted key does not stall a run.
type geminiService struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	model      string
	logger     logger.Logger
}

// NewGeminiService creates a Service that rotates through the supplied
// Gemini API keys.
func NewGeminiService(apiKeys []string, model string, log logger.Logger) (Service, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("gemini: at least one API key is required")
	}
	return &geminiService{
		apiKeys: apiKeys,
		model:   model,
		logger:  log,
	}, nil
}

func (s *geminiService) ModelVersion() string { return s.model }

func (s *geminiService) Summarize(ctx context.Context, prompt string) (string, error) {
	attempts := len(s.apiKeys)
	var lastErr error

	for range attempts {
		key, keyIdx := s.activeKey()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			s.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
		if err != nil {
			if isQuotaError(err) {
				s.logger.Warn(ctx, "gemini key %d rate limited, rotating", keyIdx+1)
				s.rotateKey()
				lastErr = err
				continue
			}
			return "", classifyGeminiError(err)
		}

		text := collectText(result)
		if text == "" {
			return "", fmt.Errorf("empty response: %w", domain.ErrService)
		}
		return text, nil
	}

	return "", fmt.Errorf("all API keys exhausted: %v: %w", lastErr, domain.ErrRateLimited)
}

func (s *geminiService) activeKey() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKeys[s.currentKey], s.currentKey
}

func (s *geminiService) rotateKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func classifyGeminiError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "token count") || strings.Contains(msg, "exceeds the maximum"):
		return fmt.Errorf("generate content: %v: %w", err, domain.ErrContextTooLong)
	case strings.Contains(msg, "API key") || strings.Contains(msg, "PERMISSION_DENIED"):
		return fmt.Errorf("generate content: %v: %w", err, domain.ErrAuthRequired)
	default:
		return fmt.Errorf("generate content: %v: %w", err, domain.ErrService)
	}
}

func collectText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}
