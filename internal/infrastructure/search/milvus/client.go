// Package milvus maintains the page-embedding vector index. The matcher can
// run fully in memory against the Postgres corpus; this adapter serves
// projects whose corpus is too large for that.
package milvus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"github.com/searchlens/gapintel/internal/config"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
)

// clientFactory allows mocking the SDK constructor in tests.
type clientFactory func(ctx context.Context, conf client.Config) (client.Client, error)

var newMilvusClient clientFactory = client.NewClient

var (
	ErrConnectionFailed = errors.New(errors.ErrCodeInternal, "milvus connection failed")
	ErrUnhealthy        = errors.New(errors.ErrCodeServiceUnavailable, "milvus unhealthy")
)

// ClientConfig holds connection parameters for the Milvus client.
type ClientConfig struct {
	Address             string
	Username            string
	Password            string
	DBName              string
	ConnectTimeout      time.Duration
	HealthCheckInterval time.Duration
}

// ClientFromConfig maps the application Milvus section onto a ClientConfig.
func ClientFromConfig(cfg config.MilvusConfig) ClientConfig {
	return ClientConfig{
		Address: cfg.Addr,
		DBName:  cfg.DBName,
	}
}

// Client manages the Milvus connection with a background health loop that
// reconnects after repeated failures.
type Client struct {
	milvusClient client.Client
	config       ClientConfig
	logger       logging.Logger
	healthy      atomic.Bool
	cancel       context.CancelFunc
	mu           sync.RWMutex
}

func NewClient(cfg ClientConfig, logger logging.Logger) (*Client, error) {
	if cfg.Address == "" {
		return nil, errors.New(errors.ErrCodeValidation, "address is required")
	}
	if cfg.DBName == "" {
		cfg.DBName = "default"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.HealthCheckInterval == 0 {
		cfg.HealthCheckInterval = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	mc, err := connect(ctx, cfg)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create milvus client")
	}

	c := &Client{
		milvusClient: mc,
		config:       cfg,
		logger:       logger,
		cancel:       cancel,
	}

	if err := c.CheckHealth(ctx); err != nil {
		c.Close()
		return nil, ErrConnectionFailed
	}

	go c.healthLoop(ctx)

	logger.Info("Milvus client connected", logging.String("address", cfg.Address))
	return c, nil
}

func connect(ctx context.Context, cfg ClientConfig) (client.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	return newMilvusClient(connectCtx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.DBName,
	})
}

func (c *Client) CheckHealth(ctx context.Context) error {
	c.mu.RLock()
	mc := c.milvusClient
	c.mu.RUnlock()

	if mc == nil {
		return ErrConnectionFailed
	}

	if _, err := mc.CheckHealth(ctx); err != nil {
		c.healthy.Store(false)
		c.logger.Warn("Milvus health check failed", logging.Err(err))
		return ErrUnhealthy
	}

	c.healthy.Store(true)
	return nil
}

func (c *Client) IsHealthy() bool {
	return c.healthy.Load()
}

// Raw returns the underlying SDK client.
func (c *Client) Raw() client.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.milvusClient
}

func (c *Client) Close() error {
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.milvusClient != nil {
		c.milvusClient.Close()
	}
	c.logger.Info("Milvus client closed")
	return nil
}

func (c *Client) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(c.config.HealthCheckInterval)
	defer ticker.Stop()

	failures := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.CheckHealth(ctx); err != nil {
				failures++
			} else {
				failures = 0
			}

			if failures >= 3 {
				c.logger.Warn("Milvus consecutive failures, attempting reconnect")
				if err := c.reconnect(ctx); err != nil {
					c.logger.Error("Milvus reconnect failed", logging.Err(err))
				} else {
					failures = 0
				}
			}
		}
	}
}

func (c *Client) reconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.milvusClient != nil {
		c.milvusClient.Close()
	}

	mc, err := connect(ctx, c.config)
	if err != nil {
		return err
	}

	c.milvusClient = mc
	c.logger.Info("Milvus client reconnected")
	return nil
}
