// Package adapter defines the notification boundary of the bridge.
//
// After an artifact is written the pipeline publishes an ArtifactWrittenEvent
// to the configured adapter. Publishing is best effort: failures are logged
// and counted, never surfaced as processing failures.
package adapter

import (
	"context"
	"fmt"
	"time"
)

// EventTypeArtifactWritten is the event_type of every published event.
const EventTypeArtifactWritten = "artifact_written"

// ArtifactWrittenEvent is the payload published after a successful process.
type ArtifactWrittenEvent struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	Endpoint   string `json:"endpoint"`
	Day        string `json:"day"`
	Trigger    string `json:"trigger"` // process or retrieve
	Format     string `json:"format"`
	SourceFile string `json:"source_file"`
	TargetFile string `json:"target_file"`
	TargetPath string `json:"target_path"`
	Encoding   string `json:"encoding"`
	Records    int    `json:"records"`
	SizeBytes  int64  `json:"size_bytes"`
	Timestamp  string `json:"timestamp"` // ISO 8601
	DurationMs int64  `json:"duration_ms"`
}

// Adapter publishes artifact events to a downstream system.
type Adapter interface {
	// Publish sends one event. Must respect context cancellation.
	Publish(ctx context.Context, event *ArtifactWrittenEvent) error

	// Close releases adapter resources.
	Close() error
}

// DefaultBackoff is the delay before the first retry; it doubles per attempt.
const DefaultBackoff = 500 * time.Millisecond

// Retry calls fn once plus up to retries more times with exponential backoff.
// It stops early when permanent reports the error as non-retriable.
func Retry(ctx context.Context, name string, retries int, backoff time.Duration, fn func(context.Context) error, permanent func(error) bool) error {
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	attempts := 1 + retries

	var lastErr error
	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(backoff << uint(i-1)):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if permanent != nil && permanent(lastErr) {
			return fmt.Errorf("%s: non-retriable error: %w", name, lastErr)
		}
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
