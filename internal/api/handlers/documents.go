package handlers

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docstorehq/docstore-service/internal/api/dto"
	"github.com/docstorehq/docstore-service/internal/api/middleware"
	"github.com/docstorehq/docstore-service/internal/core/cache"
	"github.com/docstorehq/docstore-service/internal/core/docdb"
	domainerrors "github.com/docstorehq/docstore-service/internal/domain/errors"
)

// DocumentsHandler exposes the document store CRUD passthrough over HTTP.
type DocumentsHandler struct {
	handle      *docdb.Handle
	cacheClient cache.Client
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(handle *docdb.Handle, cacheClient cache.Client) *DocumentsHandler {
	return &DocumentsHandler{
		handle:      handle,
		cacheClient: cacheClient,
	}
}

// Query handles document queries.
// @Summary Query documents
// @Description Returns every document matching the filter. An empty filter matches the whole collection.
// @Tags Documents
// @Accept json
// @Produce json
// @Param database path string true "Database name"
// @Param collection path string true "Collection name"
// @Param request body dto.QueryRequest true "Query"
// @Success 200 {object} dto.QueryResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /databases/{database}/collections/{collection}/query [post]
func (h *DocumentsHandler) Query(c *gin.Context) {
	database := c.Param("database")
	collection := c.Param("collection")

	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		middleware.HandleError(c, domainerrors.NewBadRequestError("invalid query request", err.Error()))
		return
	}

	ctx := c.Request.Context()
	logger := middleware.GetRequestLogger(c)

	key, err := queryCacheKey(database, collection, &req)
	if err == nil {
		if cached, cacheErr := h.cacheClient.Get(ctx, key); cacheErr == nil && cached != nil {
			var docs []docdb.Document
			if json.Unmarshal(cached, &docs) == nil {
				c.JSON(http.StatusOK, dto.QueryResponse{
					Documents: docs,
					Count:     len(docs),
					Cached:    true,
				})
				return
			}
		}
	}

	if err := h.handle.Connect(ctx); err != nil {
		middleware.HandleError(c, err)
		return
	}

	var opts *docdb.FindOptions
	if req.Limit > 0 || req.Skip > 0 || req.Sort != nil {
		opts = &docdb.FindOptions{Limit: req.Limit, Skip: req.Skip}
		if req.Sort != nil {
			opts.Sort = req.Sort
		}
	}

	filter := req.Filter
	if filter == nil {
		filter = docdb.Document{}
	}

	docs, err := h.handle.Collection(database, collection).Find(ctx, filter, opts)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	if key != "" {
		if encoded, marshalErr := json.Marshal(docs); marshalErr == nil {
			if cacheErr := h.cacheClient.Set(ctx, key, encoded, 0); cacheErr != nil {
				logger.Warn().Err(cacheErr).Msg("failed to cache query result")
			}
		}
	}

	c.JSON(http.StatusOK, dto.QueryResponse{
		Documents: docs,
		Count:     len(docs),
	})
}

// Insert handles document insertion.
// @Summary Insert documents
// @Description Inserts each document in order. An empty list is a valid no-op.
// @Tags Documents
// @Accept json
// @Produce json
// @Param database path string true "Database name"
// @Param collection path string true "Collection name"
// @Param request body dto.InsertRequest true "Documents"
// @Success 201 {object} dto.InsertResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /databases/{database}/collections/{collection}/documents [post]
func (h *DocumentsHandler) Insert(c *gin.Context) {
	database := c.Param("database")
	collection := c.Param("collection")

	var req dto.InsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, domainerrors.NewBadRequestError("invalid insert request", err.Error()))
		return
	}

	items := make([]interface{}, len(req.Documents))
	for i, doc := range req.Documents {
		items[i] = doc
	}

	var opts *docdb.InsertOptions
	if req.Ordered != nil {
		opts = &docdb.InsertOptions{Ordered: req.Ordered}
	}

	ctx := c.Request.Context()
	result, err := h.handle.Add(ctx, database, collection, items, opts)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	h.invalidateQueries(c, database, collection)

	c.JSON(http.StatusCreated, dto.InsertResponse{
		InsertedCount: result.InsertedCount,
		InsertedIDs:   result.InsertedIDs,
	})
}

// Update handles multi-document updates.
// @Summary Update documents
// @Description Applies the update to every document matching the filter. An EMPTY FILTER UPDATES THE ENTIRE COLLECTION.
// @Tags Documents
// @Accept json
// @Produce json
// @Param database path string true "Database name"
// @Param collection path string true "Collection name"
// @Param request body dto.UpdateRequest true "Filter and update"
// @Success 200 {object} dto.UpdateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /databases/{database}/collections/{collection}/documents [patch]
func (h *DocumentsHandler) Update(c *gin.Context) {
	database := c.Param("database")
	collection := c.Param("collection")

	var req dto.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, domainerrors.NewBadRequestError("invalid update request", err.Error()))
		return
	}

	logger := middleware.GetRequestLogger(c)
	if len(req.Filter) == 0 {
		logger.Warn().
			Str("database", database).
			Str("collection", collection).
			Msg("update with empty filter affects the entire collection")
	}

	var opts *docdb.UpdateOptions
	if req.Upsert {
		opts = &docdb.UpdateOptions{Upsert: true}
	}

	ctx := c.Request.Context()
	result, err := h.handle.Update(ctx, database, collection, req.Filter, req.Update, opts)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	h.invalidateQueries(c, database, collection)

	c.JSON(http.StatusOK, dto.UpdateResponse{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
		UpsertedCount: result.UpsertedCount,
		UpsertedID:    result.UpsertedID,
	})
}

// Delete handles multi-document deletion.
// @Summary Delete documents
// @Description Deletes every document matching the filter. An EMPTY FILTER DELETES THE ENTIRE COLLECTION.
// @Tags Documents
// @Accept json
// @Produce json
// @Param database path string true "Database name"
// @Param collection path string true "Collection name"
// @Param request body dto.DeleteRequest true "Filter"
// @Success 200 {object} dto.DeleteResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /databases/{database}/collections/{collection}/documents [delete]
func (h *DocumentsHandler) Delete(c *gin.Context) {
	database := c.Param("database")
	collection := c.Param("collection")

	var req dto.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		middleware.HandleError(c, domainerrors.NewBadRequestError("invalid delete request", err.Error()))
		return
	}

	logger := middleware.GetRequestLogger(c)
	if len(req.Filter) == 0 {
		logger.Warn().
			Str("database", database).
			Str("collection", collection).
			Msg("delete with empty filter removes the entire collection")
	}

	ctx := c.Request.Context()
	result, err := h.handle.Remove(ctx, database, collection, req.Filter, nil)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	h.invalidateQueries(c, database, collection)

	c.JSON(http.StatusOK, dto.DeleteResponse{
		DeletedCount: result.DeletedCount,
	})
}

// ListCollections lists the collections of a database.
// @Summary List collections
// @Description Lists all collection names in the database
// @Tags Collections
// @Produce json
// @Param database path string true "Database name"
// @Success 200 {object} dto.CollectionsResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /databases/{database}/collections [get]
func (h *DocumentsHandler) ListCollections(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.handle.Connect(ctx); err != nil {
		middleware.HandleError(c, err)
		return
	}

	names, err := h.handle.Database(c.Param("database")).ListCollectionNames(ctx)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, dto.CollectionsResponse{Collections: names})
}

// invalidateQueries drops every cached query for the collection after a
// write. Cache failures are logged, never surfaced to the caller.
func (h *DocumentsHandler) invalidateQueries(c *gin.Context, database, collection string) {
	pattern := fmt.Sprintf("docstore:q:%s:%s:*", database, collection)
	if _, err := h.cacheClient.DeletePattern(c.Request.Context(), pattern); err != nil {
		logger := middleware.GetRequestLogger(c)
		logger.Warn().Err(err).Msg("failed to invalidate query cache")
	}
}

// queryCacheKey derives a stable cache key from the query shape.
func queryCacheKey(database, collection string, req *dto.QueryRequest) (string, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return fmt.Sprintf("docstore:q:%s:%s:%x", database, collection, sum[:8]), nil
}
