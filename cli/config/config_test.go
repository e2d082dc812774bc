package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_FullConfig(t *testing.T) {
	yaml := `contracts_file: ./contracts.yaml

source:
  backend: fs
  path: /data/system_a

target:
  backend: s3
  path: my-bucket/outbound
  region: eu-west-1
  endpoint: http://localhost:9000
  s3_path_style: true

ledger:
  path: /data/ledger

server:
  addr: ":8080"
  read_timeout: 15s
  write_timeout: 1m

log:
  level: debug

adapter:
  type: webhook
  url: https://hooks.example.com/filebridge
  headers:
    Authorization: Bearer token123
  timeout: 10s
  retries: 3
  backoff: 250ms
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	assertEqual(t, "contracts_file", cfg.ContractsFile, "./contracts.yaml")
	assertEqual(t, "source.backend", cfg.Source.Backend, "fs")
	assertEqual(t, "source.path", cfg.Source.Path, "/data/system_a")
	assertEqual(t, "target.backend", cfg.Target.Backend, "s3")
	assertEqual(t, "target.path", cfg.Target.Path, "my-bucket/outbound")
	assertEqual(t, "target.region", cfg.Target.Region, "eu-west-1")
	assertEqual(t, "target.endpoint", cfg.Target.Endpoint, "http://localhost:9000")
	if !cfg.Target.S3PathStyle {
		t.Error("expected target.s3_path_style=true")
	}
	assertEqual(t, "ledger.path", cfg.Ledger.Path, "/data/ledger")
	assertEqual(t, "server.addr", cfg.Server.Addr, ":8080")
	if cfg.Server.ReadTimeout.Duration != 15*time.Second || cfg.Server.WriteTimeout.Duration != time.Minute {
		t.Errorf("unexpected server timeouts %+v", cfg.Server)
	}
	assertEqual(t, "log.level", cfg.Log.Level, "debug")

	assertEqual(t, "adapter.type", cfg.Adapter.Type, "webhook")
	assertEqual(t, "adapter.headers", cfg.Adapter.Headers["Authorization"], "Bearer token123")
	if cfg.Adapter.Timeout.Duration != 10*time.Second {
		t.Errorf("expected adapter.timeout=10s, got %v", cfg.Adapter.Timeout)
	}
	if cfg.Adapter.Retries == nil || *cfg.Adapter.Retries != 3 {
		t.Errorf("expected adapter.retries=3, got %v", cfg.Adapter.Retries)
	}
	if cfg.Adapter.Backoff.Duration != 250*time.Millisecond {
		t.Errorf("expected adapter.backoff=250ms, got %v", cfg.Adapter.Backoff)
	}
}

func TestLoad_EmptyAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "source.path", cfg.Source.Path, DefaultSourcePath)
	assertEqual(t, "target.path", cfg.Target.Path, DefaultTargetPath)
	assertEqual(t, "ledger.path", cfg.Ledger.Path, DefaultLedgerPath)
	assertEqual(t, "server.addr", cfg.Server.Addr, DefaultServerAddr)
	assertEqual(t, "log.level", cfg.Log.Level, DefaultLogLevel)
	if cfg.Adapter.Retries != nil {
		t.Error("unset retries should stay nil")
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("FB_TEST_BUCKET", "env-bucket")
	cfg, err := Load(writeTemp(t, "target:\n  backend: s3\n  path: ${FB_TEST_BUCKET}/out\n  region: ${FB_TEST_REGION_UNSET:-us-east-1}\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "target.path", cfg.Target.Path, "env-bucket/out")
	assertEqual(t, "target.region", cfg.Target.Region, "us-east-1")
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
	if _, err := Load(writeTemp(t, "source: [unclosed")); err == nil || !strings.Contains(err.Error(), "invalid YAML") {
		t.Errorf("expected invalid YAML error, got %v", err)
	}
	if _, err := Load(writeTemp(t, "server:\n  read_timeout: soon\n")); err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("expected invalid duration error, got %v", err)
	}
}

func TestLoadEnvFiles_Precedence(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(".env", "FB_DOTENV_A=base\nFB_DOTENV_B=base\nFB_DOTENV_C=base\n")
	write(".env.staging", "FB_DOTENV_B=staging\nFB_DOTENV_C=staging\n")
	write(".env.local", "FB_DOTENV_C=local\n")

	t.Setenv("FILEBRIDGE_ENV", "staging")
	for _, k := range []string{"FB_DOTENV_A", "FB_DOTENV_B", "FB_DOTENV_C"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	if err := LoadEnvFiles(dir); err != nil {
		t.Fatalf("LoadEnvFiles: %v", err)
	}
	assertEqual(t, "A", os.Getenv("FB_DOTENV_A"), "base")
	assertEqual(t, "B", os.Getenv("FB_DOTENV_B"), "staging")
	assertEqual(t, "C", os.Getenv("FB_DOTENV_C"), "local")
}

func TestLoadEnvFiles_MissingFilesAreOptional(t *testing.T) {
	if err := LoadEnvFiles(t.TempDir()); err != nil {
		t.Fatalf("LoadEnvFiles on empty dir: %v", err)
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filebridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func assertEqual(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", field, got, want)
	}
}
