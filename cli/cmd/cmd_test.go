package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/filebridge/adapter/redis"
	"github.com/justapithecus/filebridge/adapter/webhook"
	"github.com/justapithecus/filebridge/cli/config"
	"github.com/justapithecus/filebridge/clock"
	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/iox"
	"github.com/justapithecus/filebridge/pipeline"
	"github.com/justapithecus/filebridge/storage"
)

func TestReadOnlyFlags_IncludesTUI(t *testing.T) {
	hasTUI := false
	for _, f := range ReadOnlyFlags() {
		if f.Names()[0] == "tui" {
			hasTUI = true
			break
		}
	}
	if !hasTUI {
		t.Error("ReadOnlyFlags should include --tui flag for explicit error handling")
	}
}

func TestGlobalFlags_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range GlobalFlags() {
		for _, n := range f.Names() {
			if seen[n] {
				t.Errorf("duplicate flag name %q", n)
			}
			seen[n] = true
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"unknown endpoint", &pipeline.Error{Kind: pipeline.ErrUnknownEndpoint, Endpoint: "x"}, exitUsage},
		{"input missing", &pipeline.Error{Kind: pipeline.ErrInputNotFound, File: "a.csv"}, exitInputMissing},
		{"artifact missing", &pipeline.Error{Kind: pipeline.ErrArtifactNotFound, File: "b.csv"}, exitInputMissing},
		{"processing", &pipeline.Error{Kind: pipeline.ErrProcessing, Err: errors.New("bad")}, exitProcessing},
		{"io", fmt.Errorf("wrapped: %w", &pipeline.Error{Kind: pipeline.ErrIO, Err: errors.New("disk")}), exitIO},
		{"other", errors.New("boom"), exitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitErr_CarriesCode(t *testing.T) {
	if exitErr(nil) != nil {
		t.Error("exitErr(nil) should be nil")
	}
	err := exitErr(&pipeline.Error{Kind: pipeline.ErrProcessing, Err: errors.New("bad")})
	var ec cli.ExitCoder
	if !errors.As(err, &ec) || ec.ExitCode() != exitProcessing {
		t.Fatalf("expected exit code %d, got %v", exitProcessing, err)
	}
}

// newContext parses args against the global and output flags.
func newContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range append(GlobalFlags(), ReadOnlyFlags()...) {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newContext(t))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source.Path != config.DefaultSourcePath || cfg.Target.Path != config.DefaultTargetPath {
		t.Errorf("unexpected default paths: %+v %+v", cfg.Source, cfg.Target)
	}
	if cfg.Ledger.Disabled {
		t.Error("ledger should be enabled by default")
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	c := newContext(t,
		"--source", "in", "--source-backend", "memory",
		"--target", "bucket/out", "--target-backend", "s3",
		"--s3-region", "eu-west-1", "--s3-path-style",
		"--no-ledger", "--log-level", "debug",
		"--adapter", "redis", "--adapter-url", "redis://localhost:6379/0",
	)
	cfg, err := loadConfig(c)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source.Path != "in" || cfg.Source.Backend != "memory" {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Target.Path != "bucket/out" || cfg.Target.Backend != "s3" || cfg.Target.Region != "eu-west-1" || !cfg.Target.S3PathStyle {
		t.Errorf("target = %+v", cfg.Target)
	}
	if !cfg.Ledger.Disabled || cfg.Log.Level != "debug" {
		t.Errorf("ledger/log = %+v %+v", cfg.Ledger, cfg.Log)
	}
	if cfg.Adapter.Type != "redis" || cfg.Adapter.URL != "redis://localhost:6379/0" {
		t.Errorf("adapter = %+v", cfg.Adapter)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := loadConfig(newContext(t, "--config", "does-not-exist.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestBuildAdapter(t *testing.T) {
	negative := -1
	tests := []struct {
		name    string
		cfg     config.AdapterConfig
		wantNil bool
		wantErr bool
	}{
		{name: "none", cfg: config.AdapterConfig{}, wantNil: true},
		{name: "url without type", cfg: config.AdapterConfig{URL: "http://x"}, wantErr: true},
		{name: "unknown type", cfg: config.AdapterConfig{Type: "kafka", URL: "x"}, wantErr: true},
		{name: "webhook", cfg: config.AdapterConfig{Type: "webhook", URL: "http://localhost/hook"}},
		{name: "webhook no url", cfg: config.AdapterConfig{Type: "webhook"}, wantErr: true},
		{name: "webhook negative retries", cfg: config.AdapterConfig{Type: "webhook", URL: "http://x", Retries: &negative}, wantErr: true},
		{name: "redis", cfg: config.AdapterConfig{Type: "redis", URL: "redis://localhost:6379/0"}},
		{name: "redis bad url", cfg: config.AdapterConfig{Type: "redis", URL: "::nope"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := buildAdapter(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if a != nil {
					t.Errorf("adapter should be nil on error, got %T", a)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (a == nil) != tt.wantNil {
				t.Fatalf("adapter nil = %v, want %v", a == nil, tt.wantNil)
			}
			if a != nil {
				iox.DiscardClose(a)
			}
		})
	}
}

func TestBuildAdapter_Types(t *testing.T) {
	a, err := buildAdapter(config.AdapterConfig{Type: "webhook", URL: "http://localhost/hook"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.(*webhook.Adapter); !ok {
		t.Errorf("expected *webhook.Adapter, got %T", a)
	}
	r, err := buildAdapter(config.AdapterConfig{Type: "redis", URL: "redis://localhost:6379/0"})
	if err != nil {
		t.Fatal(err)
	}
	defer iox.DiscardClose(r)
	if _, ok := r.(*redis.Adapter); !ok {
		t.Errorf("expected *redis.Adapter, got %T", r)
	}
}

func TestOpenDir(t *testing.T) {
	d, err := openDir(context.Background(), config.DirConfig{Backend: "memory", Path: "a"})
	if err != nil {
		t.Fatalf("openDir memory: %v", err)
	}
	if d.Backend() != storage.BackendMemory {
		t.Errorf("backend = %s, want memory", d.Backend())
	}

	fs, err := openDir(context.Background(), config.DirConfig{Backend: "fs", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("openDir fs: %v", err)
	}
	if fs.Backend() != storage.BackendFS {
		t.Errorf("backend = %s, want fs", fs.Backend())
	}

	if _, err := openDir(context.Background(), config.DirConfig{Backend: "ftp", Path: "x"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(pipeline.Options{
		Registry: contract.Default(),
		Source:   storage.NewMemory("a"),
		Target:   storage.NewMemory("b"),
		Clock:    clock.Fixed{T: time.Date(2025, 7, 8, 10, 30, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return p
}

func TestContractRows(t *testing.T) {
	rows := contractRows(newTestPipeline(t))
	if len(rows) != contract.Default().Len() {
		t.Fatalf("got %d rows", len(rows))
	}
	for _, r := range rows {
		if r.Endpoint == "debitcardtxn" {
			if r.InputExpected != "debitcard_input_080725.csv" || r.Format != "csv" {
				t.Errorf("unexpected row %+v", r)
			}
			return
		}
	}
	t.Error("debitcardtxn row missing")
}

func TestStatusRows_SortedByEndpoint(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()
	if err := p.Source().Write(ctx, "text_input_080725.txt", []byte("hello\n")); err != nil {
		t.Fatal(err)
	}
	st, err := p.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	rows := statusRows(st)
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Endpoint > rows[i].Endpoint {
			t.Fatalf("rows not sorted: %s before %s", rows[i-1].Endpoint, rows[i].Endpoint)
		}
	}
	for _, r := range rows {
		if r.Endpoint == "txttest" && !r.InputExists {
			t.Error("txttest input should exist")
		}
		if r.OutputExists {
			t.Errorf("%s output should not exist", r.Endpoint)
		}
	}
}
