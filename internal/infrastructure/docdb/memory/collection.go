package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docstorehq/docstore-service/internal/core/docdb"
)

// Collection implements docdb.Collection with an ordered in-memory
// document slice. Natural return order is insertion order. Filters match
// on top-level field equality; updates support $set, $unset and $inc plus
// whole-document replacement.
type Collection struct {
	mu   sync.RWMutex
	docs []docdb.Document
}

func newCollection() *Collection {
	return &Collection{}
}

// Find returns all matching documents in insertion order.
func (c *Collection) Find(ctx context.Context, filter interface{}, opts *docdb.FindOptions) ([]docdb.Document, error) {
	f, err := toDocument(filter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	results := []docdb.Document{}
	for _, doc := range c.docs {
		if matches(doc, f) {
			results = append(results, copyDocument(doc))
		}
	}
	c.mu.RUnlock()

	if opts != nil {
		if opts.Sort != nil {
			if err := sortDocuments(results, opts.Sort); err != nil {
				return nil, err
			}
		}
		if opts.Skip > 0 {
			if opts.Skip >= int64(len(results)) {
				results = []docdb.Document{}
			} else {
				results = results[opts.Skip:]
			}
		}
		if opts.Limit > 0 && int64(len(results)) > opts.Limit {
			results = results[:opts.Limit]
		}
	}

	return results, nil
}

// FindOne returns the first matching document in insertion order.
func (c *Collection) FindOne(ctx context.Context, filter interface{}) (docdb.Document, error) {
	f, err := toDocument(filter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, doc := range c.docs {
		if matches(doc, f) {
			return copyDocument(doc), nil
		}
	}
	return nil, docdb.ErrNoDocuments
}

// InsertMany appends the documents in order, assigning an _id to any
// document that lacks one. An empty slice is a valid no-op.
func (c *Collection) InsertMany(ctx context.Context, documents []interface{}, opts *docdb.InsertOptions) (*docdb.InsertResult, error) {
	if len(documents) == 0 {
		return &docdb.InsertResult{}, nil
	}

	inserted := make([]docdb.Document, 0, len(documents))
	ids := make([]interface{}, 0, len(documents))
	for _, item := range documents {
		doc, err := toDocument(item)
		if err != nil {
			return nil, err
		}
		doc = copyDocument(doc)
		if _, ok := doc["_id"]; !ok {
			doc["_id"] = primitive.NewObjectID()
		}
		inserted = append(inserted, doc)
		ids = append(ids, doc["_id"])
	}

	c.mu.Lock()
	c.docs = append(c.docs, inserted...)
	c.mu.Unlock()

	return &docdb.InsertResult{
		InsertedCount: int64(len(inserted)),
		InsertedIDs:   ids,
	}, nil
}

// UpdateMany applies the update to every matching document. With Upsert
// set and no match, a new document is built from the filter's equality
// fields plus the update.
func (c *Collection) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *docdb.UpdateOptions) (*docdb.UpdateResult, error) {
	f, err := toDocument(filter)
	if err != nil {
		return nil, err
	}
	u, err := toDocument(update)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result := &docdb.UpdateResult{}
	for i, doc := range c.docs {
		if !matches(doc, f) {
			continue
		}
		result.MatchedCount++

		updated, err := applyUpdate(doc, u)
		if err != nil {
			return nil, err
		}
		if !reflect.DeepEqual(doc, updated) {
			c.docs[i] = updated
			result.ModifiedCount++
		}
	}

	if result.MatchedCount == 0 && opts != nil && opts.Upsert {
		doc, err := applyUpdate(copyDocument(f), u)
		if err != nil {
			return nil, err
		}
		if _, ok := doc["_id"]; !ok {
			doc["_id"] = primitive.NewObjectID()
		}
		c.docs = append(c.docs, doc)
		result.UpsertedCount = 1
		result.UpsertedID = doc["_id"]
	}

	return result, nil
}

// DeleteMany removes every matching document.
func (c *Collection) DeleteMany(ctx context.Context, filter interface{}, opts *docdb.DeleteOptions) (*docdb.DeleteResult, error) {
	f, err := toDocument(filter)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.docs[:0]
	var deleted int64
	for _, doc := range c.docs {
		if matches(doc, f) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	c.docs = kept

	return &docdb.DeleteResult{DeletedCount: deleted}, nil
}

// CountDocuments counts documents matching the filter.
func (c *Collection) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	f, err := toDocument(filter)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var count int64
	for _, doc := range c.docs {
		if matches(doc, f) {
			count++
		}
	}
	return count, nil
}

// toDocument normalizes the opaque filter/document values accepted by the
// docdb interfaces.
func toDocument(v interface{}) (docdb.Document, error) {
	switch t := v.(type) {
	case nil:
		return docdb.Document{}, nil
	case docdb.Document:
		return t, nil
	case map[string]interface{}:
		return docdb.Document(t), nil
	default:
		return nil, fmt.Errorf("memory: unsupported document type %T", v)
	}
}

// matches reports whether every filter field equals the corresponding
// document field. An empty filter matches everything.
func matches(doc, filter docdb.Document) bool {
	for key, want := range filter {
		got, ok := doc[key]
		if !ok || !equalValues(got, want) {
			return false
		}
	}
	return true
}

// equalValues compares two opaque values, treating all numeric types as
// equivalent so JSON-decoded float64 filters match natively-typed
// documents.
func equalValues(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

// applyUpdate produces the updated document. Operator documents apply
// $set/$unset/$inc; a plain document replaces everything but the _id.
func applyUpdate(doc, update docdb.Document) (docdb.Document, error) {
	if !hasOperators(update) {
		replacement := copyDocument(update)
		if id, ok := doc["_id"]; ok {
			replacement["_id"] = id
		}
		return replacement, nil
	}

	updated := copyDocument(doc)
	for op, spec := range update {
		fields, err := toDocument(spec)
		if err != nil {
			return nil, fmt.Errorf("memory: invalid %s specification: %w", op, err)
		}

		switch op {
		case "$set":
			for key, value := range fields {
				updated[key] = value
			}
		case "$unset":
			for key := range fields {
				delete(updated, key)
			}
		case "$inc":
			for key, value := range fields {
				delta, ok := toFloat(value)
				if !ok {
					return nil, fmt.Errorf("memory: $inc requires a numeric value for %q", key)
				}
				current, _ := toFloat(updated[key])
				updated[key] = current + delta
			}
		default:
			return nil, fmt.Errorf("memory: unsupported update operator %q", op)
		}
	}
	return updated, nil
}

func hasOperators(update docdb.Document) bool {
	for key := range update {
		if strings.HasPrefix(key, "$") {
			return true
		}
	}
	return false
}

// sortDocuments orders the results by the given sort specification, a
// document of field -> 1 (ascending) or -1 (descending).
func sortDocuments(docs []docdb.Document, spec interface{}) error {
	s, err := toDocument(spec)
	if err != nil {
		return err
	}

	for field, direction := range s {
		dir, ok := toFloat(direction)
		if !ok {
			return fmt.Errorf("memory: invalid sort direction for %q", field)
		}
		sort.SliceStable(docs, func(i, j int) bool {
			a, aok := toFloat(docs[i][field])
			b, bok := toFloat(docs[j][field])
			if aok && bok {
				if dir < 0 {
					return a > b
				}
				return a < b
			}
			as := fmt.Sprintf("%v", docs[i][field])
			bs := fmt.Sprintf("%v", docs[j][field])
			if dir < 0 {
				return as > bs
			}
			return as < bs
		})
	}
	return nil
}

// copyDocument deep-copies a document so callers never alias stored data.
func copyDocument(doc docdb.Document) docdb.Document {
	out := make(docdb.Document, len(doc))
	for key, value := range doc {
		out[key] = copyValue(value)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case docdb.Document:
		return copyDocument(t)
	case map[string]interface{}:
		return map[string]interface{}(copyDocument(docdb.Document(t)))
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
