// Package mongodb implements the docdb backend over the official MongoDB
// driver.
package mongodb

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docstorehq/docstore-service/internal/core/docdb"
)

// Config holds MongoDB connection configuration.
type Config struct {
	URI string
}

// Connector implements docdb.Connector for MongoDB. Construction only
// stores the URI and performs no network I/O; the connection is
// established by Connect. Malformed URIs therefore surface on Connect,
// not on construction.
type Connector struct {
	uri string

	mu     sync.RWMutex
	client *mongo.Client
}

// NewConnector creates a new MongoDB connector.
func NewConnector(cfg *Config) (*Connector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}

	return &Connector{uri: cfg.URI}, nil
}

// Connect establishes the connection and verifies it with a ping.
func (c *Connector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.uri))
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	c.client = client
	return nil
}

// Disconnect closes the connection permanently.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}

	client := c.client
	c.client = nil
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}

// Ping verifies the connection to MongoDB.
func (c *Connector) Ping(ctx context.Context) error {
	client, err := c.currentClient()
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Database returns the named database. Pure lookup: the *mongo.Database
// is resolved lazily at operation time, so this is valid before Connect.
func (c *Connector) Database(name string) docdb.Database {
	return &Database{conn: c, name: name}
}

// currentClient returns the connected client or an error when Connect has
// not been called yet.
func (c *Connector) currentClient() (*mongo.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.client == nil {
		return nil, fmt.Errorf("mongodb: not connected")
	}
	return c.client, nil
}
