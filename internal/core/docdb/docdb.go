// Package docdb defines the document database interfaces and the Handle
// that wraps an underlying client behind a lazy-connect lifecycle.
package docdb

import (
	"context"
)

// Document is an opaque document or filter value. An empty (or nil)
// filter matches every document in a collection.
type Document map[string]interface{}

// FindOptions represents options for Find operations.
type FindOptions struct {
	Limit int64
	Skip  int64
	Sort  interface{}
}

// InsertOptions represents options for Add operations.
type InsertOptions struct {
	// Ordered stops the batch at the first failing document when true.
	Ordered *bool
}

// UpdateOptions represents options for Update operations.
type UpdateOptions struct {
	// Upsert inserts a new document when the filter matches nothing.
	Upsert bool
}

// DeleteOptions represents options for Remove operations.
type DeleteOptions struct{}

// InsertResult represents the result of an insert operation.
type InsertResult struct {
	InsertedCount int64
	InsertedIDs   []interface{}
}

// UpdateResult represents the result of an update operation.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedCount int64
	UpsertedID    interface{}
}

// DeleteResult represents the result of a delete operation.
type DeleteResult struct {
	DeletedCount int64
}

// Collection defines the interface for document collection operations.
// Filters and update documents are passed through to the backend
// unmodified; every error surfaces exactly as the backend produced it.
type Collection interface {
	// Find returns all documents matching the filter as a materialized
	// slice, in the collection's natural return order. A nil filter
	// matches everything.
	Find(ctx context.Context, filter interface{}, opts *FindOptions) ([]Document, error)

	// FindOne finds a single document matching the filter. Returns
	// ErrNoDocuments when nothing matches.
	FindOne(ctx context.Context, filter interface{}) (Document, error)

	// InsertMany inserts the given documents in order. An empty slice is
	// a valid no-op.
	InsertMany(ctx context.Context, documents []interface{}, opts *InsertOptions) (*InsertResult, error)

	// UpdateMany applies the update to every document matching the
	// filter. A nil filter updates the entire collection.
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *UpdateOptions) (*UpdateResult, error)

	// DeleteMany deletes every document matching the filter. A nil
	// filter deletes the entire collection.
	DeleteMany(ctx context.Context, filter interface{}, opts *DeleteOptions) (*DeleteResult, error)

	// CountDocuments counts documents matching the filter.
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

// Database defines the interface for database-scoped operations.
type Database interface {
	// Collection returns a collection by name. Pure lookup, no
	// validation of the name.
	Collection(name string) Collection

	// ListCollectionNames lists all collection names.
	ListCollectionNames(ctx context.Context) ([]string, error)
}

// Connector is the surface the Handle consumes from a backend: the
// connect/close lifecycle plus database resolution. Implementations must
// tolerate concurrent use once connected; Connect itself is serialized by
// the Handle.
type Connector interface {
	// Connect establishes the network connection.
	Connect(ctx context.Context) error

	// Disconnect closes the connection permanently.
	Disconnect(ctx context.Context) error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Database returns a database by name. Pure lookup; valid before
	// Connect has been called.
	Database(name string) Database
}
