package docdb

import "errors"

// Type represents the type of document database backend.
type Type string

const (
	// TypeMongoDB represents a MongoDB backend.
	TypeMongoDB Type = "mongodb"
	// TypeCosmosDB represents an Azure Cosmos DB backend (MongoDB protocol).
	TypeCosmosDB Type = "cosmosdb"
	// TypeMemory represents the embedded in-memory backend.
	TypeMemory Type = "memory"
)

// ErrNoDocuments is returned by FindOne when no document matches.
var ErrNoDocuments = errors.New("docdb: no documents in result")

// ErrHandleClosed is returned by any Handle operation after Close.
var ErrHandleClosed = errors.New("docdb: handle is closed")
