package domain

import "time"

// Chamber identifies which house of parliament a stream was recorded in.
type Chamber string

const (
	ChamberNationalAssembly Chamber = "national_assembly"
	ChamberSenate           Chamber = "senate"
)

// StreamCandidate is a stream surfaced by discovery. Immutable once listed.
type StreamCandidate struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	Chamber           Chamber       `json:"chamber"`
	RecordedAt        time.Time     `json:"recorded_at"`
	EstimatedDuration time.Duration `json:"estimated_duration"`
}

// AudioArtifact is the downloaded audio for one stream.
type AudioArtifact struct {
	StreamID string
	Path     string
	Duration time.Duration
	Bytes    int64
}

// AudioSegment is a size-bounded slice of a stream's audio.
// Segments for one stream partition [0, Duration] with contiguous
// 0-based indices, no gaps and no overlaps.
type AudioSegment struct {
	StreamID string
	Index    int
	Start    time.Duration
	End      time.Duration
	Bytes    int64
	Path     string
}

// TranscriptChunk is the transcription of one segment. Sorting chunks by
// Index reconstructs the full transcript regardless of completion order.
type TranscriptChunk struct {
	StreamID string
	Index    int
	Text     string
}

// SummaryFragment is the summarized output of one transcript window or one
// reduce batch. Index preserves the fragment's position in the narrative.
type SummaryFragment struct {
	Index int
	Text  string
}

// FinalSummary is the end product of the pipeline for one stream.
type FinalSummary struct {
	StreamID     string    `json:"stream_id"`
	Text         string    `json:"text"`
	GeneratedAt  time.Time `json:"generated_at"`
	ModelVersion string    `json:"model_version"`
}

// RunReport aggregates the outcome of one pipeline run. A run is never
// atomic across streams; siblings fail independently.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Discovered int
	Completed  int
	Failed     int
	Skipped    int
}
