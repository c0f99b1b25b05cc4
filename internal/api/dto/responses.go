package dto

import (
	"github.com/docstorehq/docstore-service/internal/core/docdb"
)

// QueryResponse carries the materialized query results.
type QueryResponse struct {
	Documents []docdb.Document `json:"documents"`
	Count     int              `json:"count"`
	Cached    bool             `json:"cached"`
}

// InsertResponse carries the insertion summary.
type InsertResponse struct {
	InsertedCount int64         `json:"insertedCount"`
	InsertedIDs   []interface{} `json:"insertedIds"`
}

// UpdateResponse carries the update summary.
type UpdateResponse struct {
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId,omitempty"`
}

// DeleteResponse carries the deletion summary.
type DeleteResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

// CollectionsResponse lists the collection names of a database.
type CollectionsResponse struct {
	Collections []string `json:"collections"`
}
