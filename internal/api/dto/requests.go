// Package dto defines the API request and response shapes.
package dto

import (
	"github.com/docstorehq/docstore-service/internal/core/docdb"
)

// QueryRequest selects documents from a collection. An empty or omitted
// filter matches every document.
type QueryRequest struct {
	Filter docdb.Document `json:"filter"`
	Limit  int64          `json:"limit"`
	Skip   int64          `json:"skip"`
	Sort   docdb.Document `json:"sort"`
}

// InsertRequest inserts documents into a collection. An empty document
// list is a valid no-op.
type InsertRequest struct {
	Documents []docdb.Document `json:"documents"`
	Ordered   *bool            `json:"ordered,omitempty"`
}

// UpdateRequest applies an update to every document matching the filter.
// An empty filter updates the entire collection.
type UpdateRequest struct {
	Filter docdb.Document `json:"filter"`
	Update docdb.Document `json:"update" binding:"required"`
	Upsert bool           `json:"upsert"`
}

// DeleteRequest deletes every document matching the filter. An empty
// filter deletes the entire collection.
type DeleteRequest struct {
	Filter docdb.Document `json:"filter"`
}
