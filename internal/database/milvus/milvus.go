package milvus

import (
	"context"
	"fmt"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"ComplyCheck/internal/config"
)

var (
	instance *Client
	once     sync.Once
	initErr  error
)

// Client wraps the Milvus SDK client together with its configuration.
type Client struct {
	Client client.Client
	Config *config.MilvusConfig
}

// GetClient creates the Milvus connection once and returns the shared
// instance.
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*Client, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("failed to connect to milvus at %s: %w", cfg.Address, err)
			return
		}
		instance = &Client{Client: c, Config: cfg}
	})
	return instance, initErr
}

// Close shuts down the Milvus connection.
func (c *Client) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

// HealthCheck verifies the connection is usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("milvus client is nil")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}
