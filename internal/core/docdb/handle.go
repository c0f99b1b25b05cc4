package docdb

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// handleState is the Handle lifecycle: idle until the first connection,
// connected after it, closed permanently after Close.
type handleState int

const (
	stateIdle handleState = iota
	stateConnected
	stateClosed
)

// Handle owns a single backend connector and exposes named, scoped CRUD
// passthrough operations. The connector reference is fixed for the
// Handle's lifetime; there is no reconnection to a different backend.
//
// Every data operation connects lazily on first use. The Handle adds no
// retry, no timeout, and no error translation of its own: backend
// failures surface to the caller as produced. The underlying client is
// assumed safe for concurrent use by multiple callers sharing one Handle;
// the Handle only serializes the connect/close transitions.
type Handle struct {
	conn   Connector
	logger zerolog.Logger

	mu    sync.Mutex
	state handleState
}

// HandleOption configures a Handle.
type HandleOption func(*Handle)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger zerolog.Logger) HandleOption {
	return func(h *Handle) {
		h.logger = logger
	}
}

// NewHandle creates a Handle around the given connector. No network I/O
// happens here; the connection is established by Connect or implicitly by
// the first data operation.
func NewHandle(conn Connector, opts ...HandleOption) *Handle {
	h := &Handle{
		conn:   conn,
		logger: zerolog.Nop(),
		state:  stateIdle,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Connector returns the underlying backend connector.
func (h *Handle) Connector() Connector {
	return h.conn
}

// Connect establishes the backend connection. Idempotent: calling it on
// an already-connected Handle is a no-op. Returns ErrHandleClosed after
// Close.
func (h *Handle) Connect(ctx context.Context) error {
	return h.ensureConnected(ctx)
}

// Close permanently closes the backend connection. There is no way to
// reconnect afterwards; every subsequent operation, Connect included,
// fails with ErrHandleClosed. Closing an idle Handle still closes the
// connector so backend resources are released.
func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == stateClosed {
		return ErrHandleClosed
	}
	h.state = stateClosed

	h.logger.Debug().Msg("closing docdb handle")
	return h.conn.Disconnect(ctx)
}

// Database resolves the named database. Pure lookup: no validation, no
// caching, no connection attempt.
func (h *Handle) Database(name string) Database {
	return h.conn.Database(name)
}

// Collection resolves a collection by database and collection name. Pure
// lookup, resolved fresh on every call.
func (h *Handle) Collection(database, collection string) Collection {
	return h.conn.Database(database).Collection(collection)
}

// Ping ensures the Handle is connected and verifies the connection.
func (h *Handle) Ping(ctx context.Context) error {
	if err := h.ensureConnected(ctx); err != nil {
		return err
	}
	return h.conn.Ping(ctx)
}

// Find returns every document matching the filter as a materialized
// slice, in the collection's natural return order. A nil filter matches
// every document in the collection.
func (h *Handle) Find(ctx context.Context, database, collection string, filter interface{}) ([]Document, error) {
	if err := h.ensureConnected(ctx); err != nil {
		return nil, err
	}
	return h.Collection(database, collection).Find(ctx, orMatchAll(filter), nil)
}

// Update applies the update document to every document matching the
// filter and returns the backend's result summary.
//
// A nil filter updates EVERY document in the collection. This default is
// inherited from the underlying client and kept deliberately; callers
// that want a guard must supply a filter.
func (h *Handle) Update(ctx context.Context, database, collection string, filter, update interface{}, opts *UpdateOptions) (*UpdateResult, error) {
	if err := h.ensureConnected(ctx); err != nil {
		return nil, err
	}
	return h.Collection(database, collection).UpdateMany(ctx, orMatchAll(filter), update, opts)
}

// Add inserts each item in order as a new document and returns the
// insertion summary. An empty item slice is a valid no-op.
func (h *Handle) Add(ctx context.Context, database, collection string, items []interface{}, opts *InsertOptions) (*InsertResult, error) {
	if err := h.ensureConnected(ctx); err != nil {
		return nil, err
	}
	return h.Collection(database, collection).InsertMany(ctx, items, opts)
}

// Remove deletes every document matching the filter and returns the
// deletion summary.
//
// A nil filter deletes EVERY document in the collection, same as the
// underlying client's delete-many with an empty filter.
func (h *Handle) Remove(ctx context.Context, database, collection string, filter interface{}, opts *DeleteOptions) (*DeleteResult, error) {
	if err := h.ensureConnected(ctx); err != nil {
		return nil, err
	}
	return h.Collection(database, collection).DeleteMany(ctx, orMatchAll(filter), opts)
}

// ensureConnected performs the lazy connect. The mutex closes the
// check-then-act race between concurrent first callers: exactly one of
// them runs Connect, the rest observe the connected state.
func (h *Handle) ensureConnected(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case stateConnected:
		return nil
	case stateClosed:
		return ErrHandleClosed
	}

	h.logger.Debug().Msg("connecting docdb handle")
	if err := h.conn.Connect(ctx); err != nil {
		return err
	}
	h.state = stateConnected
	return nil
}

// orMatchAll normalizes a nil filter to the match-everything document.
func orMatchAll(filter interface{}) interface{} {
	if filter == nil {
		return Document{}
	}
	return filter
}
