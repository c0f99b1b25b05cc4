// Package noop provides a disabled query cache. Every lookup misses and
// every write is discarded, so handlers can treat the cache as always
// present.
package noop

import (
	"context"
	"time"
)

// Client implements cache.Client without storing anything.
type Client struct{}

// NewClient creates a new no-op cache client.
func NewClient() *Client {
	return &Client{}
}

// Get always misses.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

// Set discards the value.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

// Delete reports the key as absent.
func (c *Client) Delete(ctx context.Context, key string) (bool, error) {
	return false, nil
}

// DeletePattern deletes nothing.
func (c *Client) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	return 0, nil
}

// Ping always succeeds.
func (c *Client) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (c *Client) Close() error {
	return nil
}
