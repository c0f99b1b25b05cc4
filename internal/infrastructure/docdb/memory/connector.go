// Package memory implements an embedded in-memory docdb backend. It
// backs the test suites and the DOCDB_TYPE=memory configuration; data
// lives only as long as the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/docstorehq/docstore-service/internal/core/docdb"
)

// Connector implements docdb.Connector with process-local storage.
type Connector struct {
	mu        sync.RWMutex
	databases map[string]*database
	connected bool
	closed    bool
}

// NewConnector creates a new in-memory connector.
func NewConnector() *Connector {
	return &Connector{
		databases: make(map[string]*database),
	}
}

// Connect marks the connector as connected.
func (c *Connector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("memory: connector is closed")
	}
	c.connected = true
	return nil
}

// Disconnect permanently closes the connector. The stored data is kept so
// late readers observe a clean error rather than an empty store.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	c.closed = true
	return nil
}

// Ping reports whether the connector is usable.
func (c *Connector) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("memory: not connected")
	}
	return nil
}

// Database returns the named database, creating it on first use.
func (c *Connector) Database(name string) docdb.Database {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, ok := c.databases[name]
	if !ok {
		db = newDatabase()
		c.databases[name] = db
	}
	return db
}

// database holds the named collections of one in-memory database.
type database struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

func newDatabase() *database {
	return &database{
		collections: make(map[string]*Collection),
	}
}

// Collection returns the named collection, creating it on first use.
func (d *database) Collection(name string) docdb.Collection {
	d.mu.Lock()
	defer d.mu.Unlock()

	col, ok := d.collections[name]
	if !ok {
		col = newCollection()
		d.collections[name] = col
	}
	return col
}

// ListCollectionNames lists all collection names in the database.
func (d *database) ListCollectionNames(ctx context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.collections))
	for name := range d.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
