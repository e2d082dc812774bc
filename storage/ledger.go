package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/justapithecus/lode/lode"
)

// LedgerDataset is the lode dataset id of the processing ledger.
const LedgerDataset = "filebridge"

// Run outcomes recorded in the ledger.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Record is one processing attempt.
type Record struct {
	ID         string `json:"id"`
	Endpoint   string `json:"endpoint"`
	Day        string `json:"day"`
	Trigger    string `json:"trigger"`
	Status     string `json:"status"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
	Format     string `json:"format"`
	SourceFile string `json:"source_file"`
	TargetFile string `json:"target_file,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
	Records    int    `json:"records"`
	SizeBytes  int64  `json:"size_bytes"`
	StartedAt  string `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
}

// Ledger appends processing records to a Hive-partitioned lode dataset
// (endpoint/day) and reads them back per endpoint.
type Ledger struct {
	dataset lode.Dataset
	mu      sync.Mutex
}

// NewLedger creates a ledger over any lode store factory.
func NewLedger(factory lode.StoreFactory) (*Ledger, error) {
	ds, err := lode.NewDataset(
		lode.DatasetID(LedgerDataset),
		factory,
		lode.WithHiveLayout("endpoint", "day"),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
	if err != nil {
		return nil, wrap("init", LedgerDataset, err)
	}
	return &Ledger{dataset: ds}, nil
}

// NewLedgerFS creates a ledger rooted at a local directory.
func NewLedgerFS(root string) (*Ledger, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, wrap("init", root, err)
	}
	return NewLedger(lode.NewFSFactory(root))
}

// NewLedgerMemory creates an in-memory ledger.
func NewLedgerMemory() (*Ledger, error) {
	return NewLedger(lode.NewMemoryFactory())
}

// Append writes one record, assigning an id when missing.
func (l *Ledger) Append(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.dataset.Write(ctx, []any{rec.toMap()}, lode.Metadata{}); err != nil {
		return Record{}, wrap("write", LedgerDataset+"/"+rec.Endpoint, err)
	}
	return rec, nil
}

// History returns up to limit records for an endpoint, newest first.
// limit <= 0 returns every record.
func (l *Ledger) History(ctx context.Context, endpoint string, limit int) ([]Record, error) {
	snapshots, err := l.dataset.Snapshots(ctx)
	if err != nil {
		werr := wrap("read", LedgerDataset+"/snapshots", err)
		if errors.Is(werr, ErrNotFound) || strings.Contains(strings.ToLower(err.Error()), "no snapshots") {
			return []Record{}, nil
		}
		return nil, werr
	}

	out := []Record{}
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		if !snapshotHasPartition(snap, "endpoint", endpoint) {
			continue
		}
		data, err := l.dataset.Read(ctx, snap.ID)
		if err != nil {
			return nil, wrap("read", fmt.Sprintf("%s/snapshot/%s", LedgerDataset, snap.ID), err)
		}
		for j := len(data) - 1; j >= 0; j-- {
			m, ok := data[j].(map[string]any)
			if !ok || str(m["endpoint"]) != endpoint {
				continue
			}
			out = append(out, recordFromMap(m))
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// snapshotHasPartition reports whether any file of the snapshot sits under
// an exact key=value path segment.
func snapshotHasPartition(snap *lode.Snapshot, key, value string) bool {
	segment := key + "=" + value
	for _, f := range snap.Manifest.Files {
		for _, part := range strings.Split(f.Path, "/") {
			if part == segment {
				return true
			}
		}
	}
	return false
}

func (r Record) toMap() map[string]any {
	return map[string]any{
		"id":          r.ID,
		"endpoint":    r.Endpoint,
		"day":         r.Day,
		"trigger":     r.Trigger,
		"status":      r.Status,
		"error_kind":  r.ErrorKind,
		"error":       r.Error,
		"format":      r.Format,
		"source_file": r.SourceFile,
		"target_file": r.TargetFile,
		"encoding":    r.Encoding,
		"records":     r.Records,
		"size_bytes":  r.SizeBytes,
		"started_at":  r.StartedAt,
		"duration_ms": r.DurationMS,
	}
}

func recordFromMap(m map[string]any) Record {
	return Record{
		ID:         str(m["id"]),
		Endpoint:   str(m["endpoint"]),
		Day:        str(m["day"]),
		Trigger:    str(m["trigger"]),
		Status:     str(m["status"]),
		ErrorKind:  str(m["error_kind"]),
		Error:      str(m["error"]),
		Format:     str(m["format"]),
		SourceFile: str(m["source_file"]),
		TargetFile: str(m["target_file"]),
		Encoding:   str(m["encoding"]),
		Records:    int(num(m["records"])),
		SizeBytes:  num(m["size_bytes"]),
		StartedAt:  str(m["started_at"]),
		DurationMS: num(m["duration_ms"]),
	}
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// num accepts the numeric types a codec may decode into.
func num(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
