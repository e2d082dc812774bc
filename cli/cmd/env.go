package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/filebridge/adapter"
	"github.com/justapithecus/filebridge/adapter/redis"
	"github.com/justapithecus/filebridge/adapter/webhook"
	"github.com/justapithecus/filebridge/cli/config"
	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/iox"
	"github.com/justapithecus/filebridge/log"
	"github.com/justapithecus/filebridge/metrics"
	"github.com/justapithecus/filebridge/pipeline"
	"github.com/justapithecus/filebridge/storage"
)

// defaultConfigFile is loaded when present and --config is not given.
const defaultConfigFile = "filebridge.yaml"

// env is everything a command needs to run the bridge.
type env struct {
	cfg      *config.Config
	logger   *log.Logger
	metrics  *metrics.Collector
	pipeline *pipeline.Pipeline
	adapter  adapter.Adapter
}

// loadConfig reads .env files, the config file and flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadEnvFiles("."); err != nil {
		return nil, err
	}

	var cfg *config.Config
	path := c.String("config")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"contracts", &cfg.ContractsFile},
		{"source", &cfg.Source.Path},
		{"source-backend", &cfg.Source.Backend},
		{"target", &cfg.Target.Path},
		{"target-backend", &cfg.Target.Backend},
		{"ledger", &cfg.Ledger.Path},
		{"log-level", &cfg.Log.Level},
		{"adapter", &cfg.Adapter.Type},
		{"adapter-url", &cfg.Adapter.URL},
		{"adapter-channel", &cfg.Adapter.Channel},
	}
	for _, o := range overrides {
		if c.IsSet(o.flag) {
			*o.dst = c.String(o.flag)
		}
	}
	if c.IsSet("s3-region") {
		cfg.Source.Region = c.String("s3-region")
		cfg.Target.Region = c.String("s3-region")
	}
	if c.IsSet("s3-endpoint") {
		cfg.Source.Endpoint = c.String("s3-endpoint")
		cfg.Target.Endpoint = c.String("s3-endpoint")
	}
	if c.Bool("s3-path-style") {
		cfg.Source.S3PathStyle = true
		cfg.Target.S3PathStyle = true
	}
	if c.Bool("no-ledger") {
		cfg.Ledger.Disabled = true
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// setup builds the pipeline from flags and config. Callers must Close it.
func setup(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitUsage)
	}
	logger, err := log.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitUsage)
	}

	reg := contract.Default()
	if cfg.ContractsFile != "" {
		if reg, err = contract.Load(cfg.ContractsFile); err != nil {
			return nil, cli.Exit(err.Error(), exitUsage)
		}
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	source, err := openDir(ctx, cfg.Source)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("system A: %v", err), exitIO)
	}
	target, err := openDir(ctx, cfg.Target)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("system B: %v", err), exitIO)
	}

	var ledger *storage.Ledger
	if !cfg.Ledger.Disabled {
		if ledger, err = storage.NewLedgerFS(cfg.Ledger.Path); err != nil {
			return nil, cli.Exit(fmt.Sprintf("ledger: %v", err), exitIO)
		}
	}

	a, err := buildAdapter(cfg.Adapter)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitUsage)
	}

	m := metrics.NewCollector(string(source.Backend()), string(target.Backend()))
	p, err := pipeline.New(pipeline.Options{
		Registry: reg,
		Source:   source,
		Target:   target,
		Ledger:   ledger,
		Adapter:  a,
		Metrics:  m,
		Logger:   logger,
	})
	if err != nil {
		return nil, cli.Exit(err.Error(), exitUsage)
	}

	logger.Debug("bridge configured", map[string]any{
		"source":    source.Root(),
		"target":    target.Root(),
		"contracts": reg.Len(),
		"ledger":    !cfg.Ledger.Disabled,
		"adapter":   cfg.Adapter.Type,
	})
	return &env{cfg: cfg, logger: logger, metrics: m, pipeline: p, adapter: a}, nil
}

// Close releases the adapter and flushes the logger.
func (e *env) Close() error {
	var errs []error
	if e.adapter != nil {
		errs = append(errs, e.adapter.Close())
	}
	iox.DiscardErr(e.logger.Sync)
	return errors.Join(errs...)
}

func openDir(ctx context.Context, dc config.DirConfig) (*storage.Dir, error) {
	backend, err := storage.ParseBackend(dc.Backend)
	if err != nil {
		return nil, err
	}
	switch backend {
	case storage.BackendS3:
		bucket, prefix := storage.ParseS3Path(dc.Path)
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       dc.Region,
			Endpoint:     dc.Endpoint,
			UsePathStyle: dc.S3PathStyle,
		})
	case storage.BackendMemory:
		return storage.NewMemory(dc.Path), nil
	default:
		return storage.NewFS(dc.Path)
	}
}

// buildAdapter creates the notification adapter, or nil when none is
// configured.
func buildAdapter(ac config.AdapterConfig) (adapter.Adapter, error) {
	retries := 0
	if ac.Retries != nil {
		retries = *ac.Retries
	}
	switch ac.Type {
	case "":
		if ac.URL != "" {
			return nil, errors.New("adapter url set without adapter type")
		}
		return nil, nil
	case "webhook":
		a, err := webhook.New(webhook.Config{
			URL:     ac.URL,
			Headers: ac.Headers,
			Timeout: ac.Timeout.Duration,
			Retries: retries,
			Backoff: ac.Backoff.Duration,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "redis":
		a, err := redis.New(redis.Config{
			URL:     ac.URL,
			Channel:   ac.Channel,
			LatestKey: ac.LatestKey,
			Timeout:   ac.Timeout.Duration,
			Retries:   retries,
			Backoff:   ac.Backoff.Duration,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown adapter type %q (must be webhook or redis)", ac.Type)
	}
}
