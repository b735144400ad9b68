package domain

import (
	"errors"
	"fmt"
)

// Collaborator error taxonomy. Stages wrap these sentinels so the pipeline
// can route failures without inspecting collaborator internals.
var (
	// Downloader
	ErrNotFound     = errors.New("stream not found")
	ErrAuthRequired = errors.New("authentication required")
	ErrNetwork      = errors.New("network failure")

	// Transcription / summarization services
	ErrRateLimited    = errors.New("rate limited")
	ErrInvalidAudio   = errors.New("invalid audio")
	ErrService        = errors.New("service failure")
	ErrContextTooLong = errors.New("input exceeds model context")

	// Summarization engine: content still exceeds the input budget after
	// minimum windowing/batching. Surfaced to the operator, never retried.
	ErrCapacity = errors.New("content exceeds input budget")

	// Ledger
	ErrConflict    = errors.New("record held by another run")
	ErrUnavailable = errors.New("ledger unavailable")
)

// IsTransient reports whether err is worth retrying with backoff.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrService)
}

// IsPermanent reports whether err can never succeed on retry.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAuthRequired) ||
		errors.Is(err, ErrInvalidAudio) ||
		errors.Is(err, ErrContextTooLong)
}

// IsCapacity reports whether err is a summarization capacity failure.
func IsCapacity(err error) bool {
	return errors.Is(err, ErrCapacity)
}

// IsInfrastructure reports whether err must abort the whole run.
func IsInfrastructure(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// SegmentFailure annotates a stage error with the segment index it occurred
// on, so the ledger can record which segment to resume from.
type SegmentFailure struct {
	Index int
	Err   error
}

func (e *SegmentFailure) Error() string {
	return fmt.Sprintf("segment %d: %v", e.Index, e.Err)
}

func (e *SegmentFailure) Unwrap() error { return e.Err }
