package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/justapithecus/filebridge/clock"
	"github.com/justapithecus/filebridge/storage"
)

// statusConcurrency bounds the existence checks run by Status.
const statusConcurrency = 8

// DirStatus lists one directory.
type DirStatus struct {
	Path      string             `json:"path"`
	Backend   string             `json:"backend"`
	FileCount int                `json:"file_count"`
	Files     []storage.FileInfo `json:"files"`
}

// ContractStatus reports whether today's files exist for one endpoint.
type ContractStatus struct {
	InputExpected  string `json:"input_expected"`
	OutputExpected string `json:"output_pattern"`
	InputExists    bool   `json:"input_exists"`
	OutputExists   bool   `json:"output_exists"`
}

// Status is a read-only snapshot of both directories and every contract.
type Status struct {
	Date      string                    `json:"today_date"`
	Source    DirStatus                 `json:"system_a"`
	Target    DirStatus                 `json:"system_b"`
	Contracts map[string]ContractStatus `json:"contracts_status"`
}

// Status lists both directories and checks today's expected files for every
// contract. It never modifies either directory.
func (p *Pipeline) Status(ctx context.Context) (*Status, error) {
	token := p.Today()
	st := &Status{
		Date:      token,
		Source:    DirStatus{Path: p.source.Root(), Backend: string(p.source.Backend())},
		Target:    DirStatus{Path: p.target.Root(), Backend: string(p.target.Backend())},
		Contracts: make(map[string]ContractStatus, p.registry.Len()),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statusConcurrency)

	list := func(d *storage.Dir, into *DirStatus) func() error {
		return func() error {
			files, err := d.List(gctx)
			if err != nil {
				return &Error{Kind: ErrIO, Op: "list", Date: token, File: d.Root(), Err: err}
			}
			into.Files = files
			into.FileCount = len(files)
			return nil
		}
	}
	g.Go(list(p.source, &st.Source))
	g.Go(list(p.target, &st.Target))

	var mu sync.Mutex
	for _, c := range p.registry.All() {
		g.Go(func() error {
			cs := ContractStatus{InputExpected: c.InputName(token), OutputExpected: c.OutputName(token)}
			var err error
			if cs.InputExists, err = p.source.Exists(gctx, cs.InputExpected); err != nil {
				return &Error{Kind: ErrIO, Op: "status", Endpoint: c.Endpoint, Date: token, File: cs.InputExpected, Err: err}
			}
			if cs.OutputExists, err = p.target.Exists(gctx, cs.OutputExpected); err != nil {
				return &Error{Kind: ErrIO, Op: "status", Endpoint: c.Endpoint, Date: token, File: cs.OutputExpected, Err: err}
			}
			mu.Lock()
			st.Contracts[c.Endpoint] = cs
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return st, nil
}

// Health is a liveness summary. It never fails.
type Health struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	SourceAccessible bool   `json:"system_a_accessible"`
	TargetAccessible bool   `json:"system_b_accessible"`
	Date             string `json:"today_date"`
	ContractsLoaded  int    `json:"contracts_loaded"`
}

// Health probes both directories. Status is "healthy" when both are
// reachable and "degraded" otherwise.
func (p *Pipeline) Health(ctx context.Context) *Health {
	now := p.clock.Now()
	h := &Health{
		Timestamp:        clock.Timestamp(now),
		SourceAccessible: p.source.Ping(ctx) == nil,
		TargetAccessible: p.target.Ping(ctx) == nil,
		Date:             now.Format(clock.TokenLayout),
		ContractsLoaded:  p.registry.Len(),
	}
	h.Status = "healthy"
	if !h.SourceAccessible || !h.TargetAccessible {
		h.Status = "degraded"
	}
	return h
}
