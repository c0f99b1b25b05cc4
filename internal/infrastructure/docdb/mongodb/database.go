package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docstorehq/docstore-service/internal/core/docdb"
)

// Database implements docdb.Database for MongoDB. It is a transient view
// resolved by name on each use, never cached by the connector.
type Database struct {
	conn *Connector
	name string
}

// Collection returns a collection from the database.
func (d *Database) Collection(name string) docdb.Collection {
	return &Collection{conn: d.conn, database: d.name, name: name}
}

// ListCollectionNames lists all collection names in the database.
func (d *Database) ListCollectionNames(ctx context.Context) ([]string, error) {
	db, err := d.resolve()
	if err != nil {
		return nil, err
	}

	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

func (d *Database) resolve() (*mongo.Database, error) {
	client, err := d.conn.currentClient()
	if err != nil {
		return nil, err
	}
	return client.Database(d.name), nil
}

// Collection implements docdb.Collection for MongoDB.
type Collection struct {
	conn     *Connector
	database string
	name     string
}

// Find returns all documents matching the filter, materialized into a
// slice in the cursor's natural order.
func (c *Collection) Find(ctx context.Context, filter interface{}, opts *docdb.FindOptions) ([]docdb.Document, error) {
	col, err := c.resolve()
	if err != nil {
		return nil, err
	}

	findOpts := options.Find()
	if opts != nil {
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
		if opts.Skip > 0 {
			findOpts.SetSkip(opts.Skip)
		}
		if opts.Sort != nil {
			findOpts.SetSort(opts.Sort)
		}
	}

	cursor, err := col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	results := []docdb.Document{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return results, nil
}

// FindOne finds a single document matching the filter.
func (c *Collection) FindOne(ctx context.Context, filter interface{}) (docdb.Document, error) {
	col, err := c.resolve()
	if err != nil {
		return nil, err
	}

	var doc docdb.Document
	if err := col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, docdb.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return doc, nil
}

// InsertMany inserts the documents in order. The driver rejects empty
// batches, so an empty slice short-circuits into a successful no-op.
func (c *Collection) InsertMany(ctx context.Context, documents []interface{}, opts *docdb.InsertOptions) (*docdb.InsertResult, error) {
	if len(documents) == 0 {
		return &docdb.InsertResult{}, nil
	}

	col, err := c.resolve()
	if err != nil {
		return nil, err
	}

	insertOpts := options.InsertMany()
	if opts != nil && opts.Ordered != nil {
		insertOpts.SetOrdered(*opts.Ordered)
	}

	result, err := col.InsertMany(ctx, documents, insertOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to insert documents: %w", err)
	}

	return &docdb.InsertResult{
		InsertedCount: int64(len(result.InsertedIDs)),
		InsertedIDs:   result.InsertedIDs,
	}, nil
}

// UpdateMany applies the update to all documents matching the filter.
func (c *Collection) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *docdb.UpdateOptions) (*docdb.UpdateResult, error) {
	col, err := c.resolve()
	if err != nil {
		return nil, err
	}

	updateOpts := options.Update()
	if opts != nil && opts.Upsert {
		updateOpts.SetUpsert(true)
	}

	result, err := col.UpdateMany(ctx, filter, update, updateOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to update documents: %w", err)
	}

	return &docdb.UpdateResult{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
		UpsertedCount: result.UpsertedCount,
		UpsertedID:    result.UpsertedID,
	}, nil
}

// DeleteMany deletes all documents matching the filter.
func (c *Collection) DeleteMany(ctx context.Context, filter interface{}, opts *docdb.DeleteOptions) (*docdb.DeleteResult, error) {
	col, err := c.resolve()
	if err != nil {
		return nil, err
	}

	result, err := col.DeleteMany(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to delete documents: %w", err)
	}

	return &docdb.DeleteResult{
		DeletedCount: result.DeletedCount,
	}, nil
}

// CountDocuments counts documents matching the filter.
func (c *Collection) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	col, err := c.resolve()
	if err != nil {
		return 0, err
	}

	count, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

func (c *Collection) resolve() (*mongo.Collection, error) {
	client, err := c.conn.currentClient()
	if err != nil {
		return nil, err
	}
	return client.Database(c.database).Collection(c.name), nil
}
