// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docstorehq/docstore-service/internal/core/docdb"
)

// MockConnector is a mock implementation of docdb.Connector.
type MockConnector struct {
	mock.Mock
}

// Connect establishes the connection.
func (m *MockConnector) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Disconnect closes the connection.
func (m *MockConnector) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Ping verifies the connection.
func (m *MockConnector) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Database returns a database by name.
func (m *MockConnector) Database(name string) docdb.Database {
	args := m.Called(name)
	return args.Get(0).(docdb.Database)
}

// MockDatabase is a mock implementation of docdb.Database.
type MockDatabase struct {
	mock.Mock
}

// Collection returns a collection by name.
func (m *MockDatabase) Collection(name string) docdb.Collection {
	args := m.Called(name)
	return args.Get(0).(docdb.Collection)
}

// ListCollectionNames lists all collection names.
func (m *MockDatabase) ListCollectionNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockCollection is a mock implementation of docdb.Collection.
type MockCollection struct {
	mock.Mock
}

// Find finds all documents matching the filter.
func (m *MockCollection) Find(ctx context.Context, filter interface{}, opts *docdb.FindOptions) ([]docdb.Document, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]docdb.Document), args.Error(1)
}

// FindOne finds a single document matching the filter.
func (m *MockCollection) FindOne(ctx context.Context, filter interface{}) (docdb.Document, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(docdb.Document), args.Error(1)
}

// InsertMany inserts multiple documents.
func (m *MockCollection) InsertMany(ctx context.Context, documents []interface{}, opts *docdb.InsertOptions) (*docdb.InsertResult, error) {
	args := m.Called(ctx, documents, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docdb.InsertResult), args.Error(1)
}

// UpdateMany updates multiple documents.
func (m *MockCollection) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *docdb.UpdateOptions) (*docdb.UpdateResult, error) {
	args := m.Called(ctx, filter, update, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docdb.UpdateResult), args.Error(1)
}

// DeleteMany deletes multiple documents.
func (m *MockCollection) DeleteMany(ctx context.Context, filter interface{}, opts *docdb.DeleteOptions) (*docdb.DeleteResult, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docdb.DeleteResult), args.Error(1)
}

// CountDocuments counts documents matching the filter.
func (m *MockCollection) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
