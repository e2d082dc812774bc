// Package redis announces artifact-written events over Redis pub/sub.
//
// The channel may contain an {endpoint} placeholder so subscribers can listen
// to a single contract. When LatestKey is set the same payload is also stored
// in a hash keyed by endpoint, letting late consumers see the most recent
// artifact without having been subscribed.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/justapithecus/filebridge/adapter"
)

// DefaultChannel receives every endpoint's events.
const DefaultChannel = "filebridge:artifact_written"

// DefaultTimeout bounds one publish round trip.
const DefaultTimeout = 5 * time.Second

// EndpointPlaceholder is replaced with the event's endpoint in Channel.
const EndpointPlaceholder = "{endpoint}"

// Config configures the Redis adapter.
type Config struct {
	// URL is redis://[:password@]host:port[/db].
	URL string
	// Channel defaults to DefaultChannel.
	Channel string
	// LatestKey names the hash holding the last event per endpoint. Empty
	// disables it.
	LatestKey string
	Timeout   time.Duration
	Retries   int
	Backoff   time.Duration
}

// Adapter publishes events with PUBLISH.
type Adapter struct {
	config Config
	client *goredis.Client
}

// New parses the URL and builds the client. No connection is made until the
// first publish.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Adapter{config: cfg, client: goredis.NewClient(opts)}, nil
}

// ChannelFor returns the channel an endpoint's events go to.
func (a *Adapter) ChannelFor(endpoint string) string {
	return strings.ReplaceAll(a.config.Channel, EndpointPlaceholder, endpoint)
}

// Publish sends the event as JSON. The publish and the latest-hash update
// run in one MULTI/EXEC so the hash never lags a delivered message.
func (a *Adapter) Publish(ctx context.Context, event *adapter.ArtifactWrittenEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}
	channel := a.ChannelFor(event.Endpoint)

	return adapter.Retry(ctx, "redis", a.config.Retries, a.config.Backoff, func(ctx context.Context) error {
		opCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
		_, err := a.client.TxPipelined(opCtx, func(pipe goredis.Pipeliner) error {
			pipe.Publish(opCtx, channel, body)
			if a.config.LatestKey != "" {
				pipe.HSet(opCtx, a.config.LatestKey, event.Endpoint, body)
			}
			return nil
		})
		return err
	}, nil)
}

// Close releases the connection pool.
func (a *Adapter) Close() error {
	return a.client.Close()
}

var _ adapter.Adapter = (*Adapter)(nil)
