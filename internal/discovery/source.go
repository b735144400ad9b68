package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/domain"
)

// feedSource lists streams from a channel index endpoint that serves a JSON
// array of recent recordings.
type feedSource struct {
	name    string
	chamber domain.Chamber
	url     string
	client  *http.Client
}

// NewFeedSource creates a ChannelSource over an HTTP JSON feed.
func NewFeedSource(cfg config.ChannelConfig) ChannelSource {
	return &feedSource{
		name:    cfg.Name,
		chamber: domain.Chamber(cfg.Chamber),
		url:     cfg.URL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *feedSource) Name() string { return s.name }

type feedEntry struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	RecordedAt      time.Time `json:"recorded_at"`
	DurationSeconds int64     `json:"duration_seconds"`
}

func (s *feedSource) List(ctx context.Context) ([]domain.StreamCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", s.url, err, domain.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d: %w", s.url, resp.StatusCode, domain.ErrNetwork)
	}

	var entries []feedEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", s.url, err)
	}

	out := make([]domain.StreamCandidate, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		out = append(out, domain.StreamCandidate{
			ID:                e.ID,
			Title:             e.Title,
			Chamber:           s.chamber,
			RecordedAt:        e.RecordedAt,
			EstimatedDuration: time.Duration(e.DurationSeconds) * time.Second,
		})
	}
	return out, nil
}
