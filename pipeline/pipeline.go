// Package pipeline orchestrates the bridge: locate today's input, transform
// it according to its contract and write the artifact into the target
// directory. It also serves retrieval (with reprocessing on a cache miss) and
// status introspection over both directories.
//
// Every operation resolves the date token exactly once and uses it for all
// names it derives, so an operation straddling midnight stays consistent.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/justapithecus/filebridge/adapter"
	"github.com/justapithecus/filebridge/artifact"
	"github.com/justapithecus/filebridge/clock"
	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/log"
	"github.com/justapithecus/filebridge/metrics"
	"github.com/justapithecus/filebridge/result"
	"github.com/justapithecus/filebridge/storage"
	"github.com/justapithecus/filebridge/transform"
)

// Triggers recorded in the ledger and in published events.
const (
	TriggerProcess  = "process"
	TriggerRetrieve = "retrieve"
)

// sampleRows is the number of table rows included in a report.
const sampleRows = 3

// sampleChars bounds the string form of a structured sample.
const sampleChars = 200

// Options configures a Pipeline. Registry, Source and Target are required.
type Options struct {
	Registry     *contract.Registry
	Source       *storage.Dir
	Target       *storage.Dir
	Clock        clock.Clock
	Transformers *transform.Set
	Ledger       *storage.Ledger
	Adapter      adapter.Adapter
	Metrics      *metrics.Collector
	Logger       *log.Logger
}

// Pipeline is safe for concurrent use. Two concurrent runs for the same
// endpoint and date race on the artifact; the last writer wins.
type Pipeline struct {
	registry   *contract.Registry
	source     *storage.Dir
	target     *storage.Dir
	clock      clock.Clock
	transforms *transform.Set
	writer     *artifact.Writer
	ledger     *storage.Ledger
	adapter    adapter.Adapter
	metrics    *metrics.Collector
	logger     *log.Logger
}

// New builds a pipeline, filling in defaults for optional fields.
func New(opts Options) (*Pipeline, error) {
	if opts.Registry == nil {
		return nil, errors.New("pipeline: registry is required")
	}
	if opts.Source == nil || opts.Target == nil {
		return nil, errors.New("pipeline: source and target directories are required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Transformers == nil {
		opts.Transformers = transform.NewSet(opts.Clock)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNop()
	}
	return &Pipeline{
		registry:   opts.Registry,
		source:     opts.Source,
		target:     opts.Target,
		clock:      opts.Clock,
		transforms: opts.Transformers,
		writer:     artifact.NewWriter(opts.Target, opts.Clock),
		ledger:     opts.Ledger,
		adapter:    opts.Adapter,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}, nil
}

// Today returns the current DDMMYY token.
func (p *Pipeline) Today() string { return clock.Token(p.clock) }

// Contracts returns every registered contract, ordered by endpoint.
func (p *Pipeline) Contracts() []contract.Contract { return p.registry.All() }

// Registry returns the contract registry.
func (p *Pipeline) Registry() *contract.Registry { return p.registry }

// Source returns the source directory.
func (p *Pipeline) Source() *storage.Dir { return p.source }

// Target returns the target directory.
func (p *Pipeline) Target() *storage.Dir { return p.target }

// Report is the outcome of a successful process run.
type Report struct {
	Status           string  `json:"status"`
	Endpoint         string  `json:"endpoint"`
	Description      string  `json:"description"`
	Date             string  `json:"date"`
	SourceFile       string  `json:"source_file"`
	TargetFile       string  `json:"target_file"`
	TargetPath       string  `json:"target_path"`
	RecordsProcessed int     `json:"records_processed"`
	Format           string  `json:"format"`
	Encoding         string  `json:"encoding"`
	ProcessedAt      string  `json:"processed_at"`
	SizeBytes        int64   `json:"size_bytes"`
	FileSizeKB       float64 `json:"file_size_kb"`
	SampleData       any     `json:"sample_data"`
}

// Process runs the full pipeline for today's input of an endpoint. Running it
// twice on unchanged input replaces the artifact with the same content (apart
// from embedded timestamps).
func (p *Pipeline) Process(ctx context.Context, endpoint string) (*Report, error) {
	return p.process(ctx, endpoint, p.Today(), TriggerProcess)
}

func (p *Pipeline) process(ctx context.Context, endpoint, token, trigger string) (*Report, error) {
	started := p.clock.Now()
	p.metrics.IncProcessStarted()
	logger := p.logger.With(map[string]any{"endpoint": endpoint, "date": token, "trigger": trigger})

	rep, c, err := p.run(ctx, endpoint, token)
	duration := time.Since(started)
	if err != nil {
		kind := KindName(err)
		p.metrics.RecordProcessFailure(kind)
		logger.Warn("process failed", map[string]any{"kind": kind, "error": err.Error()})
		if kind != KindUnknownEndpoint {
			p.record(ctx, logger, storage.Record{
				Endpoint:   endpoint,
				Day:        token,
				Trigger:    trigger,
				Status:     storage.StatusFailed,
				ErrorKind:  kind,
				Error:      err.Error(),
				Format:     string(c.Format),
				SourceFile: c.InputName(token),
				StartedAt:  clock.Timestamp(started),
				DurationMS: duration.Milliseconds(),
			})
		}
		return nil, err
	}

	p.metrics.RecordProcessSuccess(endpoint, rep.RecordsProcessed, rep.SizeBytes)
	logger.Info("artifact written", map[string]any{
		"source_file": rep.SourceFile,
		"target_file": rep.TargetFile,
		"records":     rep.RecordsProcessed,
		"size_bytes":  rep.SizeBytes,
	})

	rec := p.record(ctx, logger, storage.Record{
		Endpoint:   endpoint,
		Day:        token,
		Trigger:    trigger,
		Status:     storage.StatusSuccess,
		Format:     rep.Format,
		SourceFile: rep.SourceFile,
		TargetFile: rep.TargetFile,
		Encoding:   rep.Encoding,
		Records:    rep.RecordsProcessed,
		SizeBytes:  rep.SizeBytes,
		StartedAt:  clock.Timestamp(started),
		DurationMS: duration.Milliseconds(),
	})
	p.notify(ctx, logger, rep, rec, trigger, duration)
	return rep, nil
}

// run performs locate, read, transform and write. The returned contract is
// populated whenever lookup succeeded, including on later failures.
func (p *Pipeline) run(ctx context.Context, endpoint, token string) (*Report, contract.Contract, error) {
	in, err := p.locate(ctx, endpoint, token)
	if err != nil {
		var c contract.Contract
		if !errors.Is(err, ErrUnknownEndpoint) {
			c, _ = p.registry.Lookup(endpoint)
		}
		return nil, c, err
	}
	c := in.Contract
	outName := c.OutputName(token)

	data, err := p.source.Read(ctx, in.Name)
	if err != nil {
		kind := ErrIO
		if errors.Is(err, storage.ErrNotFound) {
			// Removed between locate and read.
			kind = ErrInputNotFound
		}
		return nil, c, &Error{Kind: kind, Op: "read", Endpoint: endpoint, Date: token, File: in.Name, Err: err}
	}

	res, err := p.transforms.Run(ctx, transform.Input{Name: in.Name, Token: token, Data: data}, c)
	if err != nil {
		return nil, c, &Error{Kind: ErrProcessing, Op: "transform", Endpoint: endpoint, Date: token, File: in.Name, Err: err}
	}

	meta, err := p.writer.Write(ctx, c, token, res)
	if err != nil {
		kind := ErrProcessing
		var se *storage.Error
		if errors.As(err, &se) {
			kind = ErrIO
		}
		return nil, c, &Error{Kind: kind, Op: "write", Endpoint: endpoint, Date: token, File: outName, Err: err}
	}

	return &Report{
		Status:           "success",
		Endpoint:         endpoint,
		Description:      c.Description,
		Date:             token,
		SourceFile:       in.Name,
		TargetFile:       meta.File,
		TargetPath:       meta.Path,
		RecordsProcessed: meta.Records,
		Format:           string(c.Format),
		Encoding:         string(meta.Encoding),
		ProcessedAt:      clock.Timestamp(meta.GeneratedAt),
		SizeBytes:        meta.SizeBytes,
		FileSizeKB:       meta.SizeKB(),
		SampleData:       sample(res),
	}, c, nil
}

// sample returns the first rows of a table, or a structured value whose
// serialized form is cut at sampleChars runes.
func sample(res result.Result) any {
	if res.Kind() == result.KindTabular {
		return res.Sample(sampleRows)
	}
	v := res.Sample(0)
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	s := []rune(string(b))
	if len(s) > sampleChars {
		return string(s[:sampleChars]) + "..."
	}
	return v
}

func (p *Pipeline) record(ctx context.Context, logger *log.Logger, rec storage.Record) storage.Record {
	if p.ledger == nil {
		return rec
	}
	saved, err := p.ledger.Append(ctx, rec)
	if err != nil {
		p.metrics.IncLedgerWriteFailure()
		logger.Error("ledger write failed", map[string]any{"error": err.Error()})
		return rec
	}
	p.metrics.IncLedgerWriteSuccess()
	return saved
}

func (p *Pipeline) notify(ctx context.Context, logger *log.Logger, rep *Report, rec storage.Record, trigger string, d time.Duration) {
	if p.adapter == nil {
		return
	}
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	event := &adapter.ArtifactWrittenEvent{
		EventID:    id,
		EventType:  adapter.EventTypeArtifactWritten,
		Endpoint:   rep.Endpoint,
		Day:        rep.Date,
		Trigger:    trigger,
		Format:     rep.Format,
		SourceFile: rep.SourceFile,
		TargetFile: rep.TargetFile,
		TargetPath: rep.TargetPath,
		Encoding:   rep.Encoding,
		Records:    rep.RecordsProcessed,
		SizeBytes:  rep.SizeBytes,
		Timestamp:  rep.ProcessedAt,
		DurationMs: d.Milliseconds(),
	}
	if err := p.adapter.Publish(ctx, event); err != nil {
		p.metrics.IncNotifyFailure()
		logger.Warn("notification failed", map[string]any{"event_id": id, "error": err.Error()})
		return
	}
	p.metrics.IncNotifySuccess()
}

// Retrieval is a decoded artifact returned by Retrieve.
type Retrieval struct {
	Status       string            `json:"status"`
	Endpoint     string            `json:"endpoint"`
	Description  string            `json:"description"`
	Date         string            `json:"date"`
	FileName     string            `json:"file_name"`
	FilePath     string            `json:"file_path"`
	SizeBytes    int64             `json:"size_bytes"`
	FileSizeKB   float64           `json:"file_size_kb"`
	DownloadedAt string            `json:"downloaded_at"`
	Content      *artifact.Content `json:"content"`
	DownloadURL  string            `json:"download_url"`
	Reprocessed  bool              `json:"reprocessed"`
}

// DownloadURL is the raw-download route for an endpoint.
func DownloadURL(endpoint string) string {
	return "/api/v1/download/" + endpoint + "/file"
}

// Retrieve returns today's artifact for an endpoint, running the full
// pipeline first when it does not exist yet. Reprocessing happens at most
// once per call; its failure is returned as is.
func (p *Pipeline) Retrieve(ctx context.Context, endpoint string) (*Retrieval, error) {
	token := p.Today()
	c, err := p.lookup(endpoint)
	if err != nil {
		return nil, err
	}
	name := c.OutputName(token)

	ok, err := p.target.Exists(ctx, name)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Op: "retrieve", Endpoint: endpoint, Date: token, File: name, Err: err}
	}
	if !ok {
		p.logger.Info("artifact missing, reprocessing", map[string]any{"endpoint": endpoint, "date": token, "file": name})
		if _, err := p.process(ctx, endpoint, token, TriggerRetrieve); err != nil {
			return nil, err
		}
	}
	p.metrics.RecordRetrieve(!ok)

	content, size, err := artifact.Read(ctx, p.target, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &Error{Kind: ErrArtifactNotFound, Op: "retrieve", Endpoint: endpoint, Date: token, File: name, Err: err}
		}
		return nil, &Error{Kind: ErrIO, Op: "retrieve", Endpoint: endpoint, Date: token, File: name, Err: err}
	}

	return &Retrieval{
		Status:       "success",
		Endpoint:     endpoint,
		Description:  c.Description,
		Date:         token,
		FileName:     name,
		FilePath:     p.target.Path(name),
		SizeBytes:    size,
		FileSizeKB:   artifact.SizeKB(size),
		DownloadedAt: clock.Timestamp(p.clock.Now()),
		Content:      content,
		DownloadURL:  DownloadURL(endpoint),
		Reprocessed:  !ok,
	}, nil
}

// File is a raw artifact.
type File struct {
	Name string
	Path string
	Data []byte
}

// Open returns today's artifact bytes. Unlike Retrieve it never reprocesses.
func (p *Pipeline) Open(ctx context.Context, endpoint string) (*File, error) {
	token := p.Today()
	c, err := p.lookup(endpoint)
	if err != nil {
		return nil, err
	}
	name := c.OutputName(token)

	data, err := p.target.Read(ctx, name)
	if err != nil {
		kind := ErrIO
		if errors.Is(err, storage.ErrNotFound) {
			kind = ErrArtifactNotFound
		}
		return nil, &Error{Kind: kind, Op: "open", Endpoint: endpoint, Date: token, File: name, Err: err}
	}
	return &File{Name: name, Path: p.target.Path(name), Data: data}, nil
}

// History returns up to limit ledger records for an endpoint, newest first.
// It returns nothing when no ledger is configured.
func (p *Pipeline) History(ctx context.Context, endpoint string, limit int) ([]storage.Record, error) {
	if _, err := p.lookup(endpoint); err != nil {
		return nil, err
	}
	if p.ledger == nil {
		return []storage.Record{}, nil
	}
	recs, err := p.ledger.History(ctx, endpoint, limit)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Op: "history", Endpoint: endpoint, Err: err}
	}
	return recs, nil
}
