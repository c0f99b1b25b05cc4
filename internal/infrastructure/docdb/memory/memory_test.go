// Package memory_test exercises the in-memory backend through the Handle.
package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docstorehq/docstore-service/internal/core/docdb"
	"github.com/docstorehq/docstore-service/internal/infrastructure/docdb/memory"
)

const (
	testDB   = "appdb"
	testColl = "coll"
)

// seededHandle returns a handle whose collection holds the two standard
// fixture documents.
func seededHandle(t *testing.T) *docdb.Handle {
	t.Helper()

	handle := docdb.NewHandle(memory.NewConnector())
	_, err := handle.Add(context.Background(), testDB, testColl, []interface{}{
		docdb.Document{"id": 1, "name": "a"},
		docdb.Document{"id": 2, "name": "b"},
	}, nil)
	require.NoError(t, err)
	return handle
}

func names(docs []docdb.Document) []interface{} {
	out := make([]interface{}, len(docs))
	for i, doc := range docs {
		out[i] = doc["name"]
	}
	return out
}

func TestFind_ByField(t *testing.T) {
	handle := seededHandle(t)

	docs, err := handle.Find(context.Background(), testDB, testColl, docdb.Document{"name": "a"})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 1, docs[0]["id"])
	assert.Equal(t, "a", docs[0]["name"])
}

func TestFind_EmptyFilterReturnsAllInInsertionOrder(t *testing.T) {
	handle := seededHandle(t)

	docs, err := handle.Find(context.Background(), testDB, testColl, nil)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, []interface{}{"a", "b"}, names(docs))
}

func TestFind_NoMatchReturnsEmptySlice(t *testing.T) {
	handle := seededHandle(t)

	docs, err := handle.Find(context.Background(), testDB, testColl, docdb.Document{"name": "zzz"})

	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestFind_NumericFilterMatchesAcrossTypes(t *testing.T) {
	handle := seededHandle(t)

	// JSON-decoded filters arrive as float64; stored values are int.
	docs, err := handle.Find(context.Background(), testDB, testColl, docdb.Document{"id": float64(2)})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0]["name"])
}

func TestAdd_ThenFindReturnsAllThree(t *testing.T) {
	handle := seededHandle(t)
	ctx := context.Background()

	result, err := handle.Add(ctx, testDB, testColl, []interface{}{
		docdb.Document{"id": 3, "name": "c"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.InsertedCount)
	assert.Len(t, result.InsertedIDs, 1)

	docs, err := handle.Find(ctx, testDB, testColl, nil)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []interface{}{"a", "b", "c"}, names(docs))
}

func TestAdd_EmptySliceIsNoOp(t *testing.T) {
	handle := seededHandle(t)
	ctx := context.Background()

	result, err := handle.Add(ctx, testDB, testColl, []interface{}{}, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.InsertedCount)
	assert.Empty(t, result.InsertedIDs)

	docs, err := handle.Find(ctx, testDB, testColl, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestAdd_AssignsIDWhenMissing(t *testing.T) {
	handle := docdb.NewHandle(memory.NewConnector())

	result, err := handle.Add(context.Background(), testDB, testColl, []interface{}{
		docdb.Document{"name": "generated"},
	}, nil)

	require.NoError(t, err)
	require.Len(t, result.InsertedIDs, 1)
	assert.NotNil(t, result.InsertedIDs[0])
}

func TestRemove_ByFilter(t *testing.T) {
	handle := seededHandle(t)
	ctx := context.Background()

	result, err := handle.Remove(ctx, testDB, testColl, docdb.Document{"id": 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.DeletedCount)

	docs, err := handle.Find(ctx, testDB, testColl, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0]["name"])
}

func TestRemove_EmptyFilterDeletesEntireCollection(t *testing.T) {
	handle := seededHandle(t)
	ctx := context.Background()

	result, err := handle.Remove(ctx, testDB, testColl, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.DeletedCount)

	docs, err := handle.Find(ctx, testDB, testColl, nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestUpdate_EmptyFilterUpdatesEntireCollection(t *testing.T) {
	handle := seededHandle(t)
	ctx := context.Background()

	result, err := handle.Update(ctx, testDB, testColl, nil,
		docdb.Document{"$set": map[string]interface{}{"status": "archived"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.MatchedCount)
	assert.Equal(t, int64(2), result.ModifiedCount)

	docs, err := handle.Find(ctx, testDB, testColl, nil)
	require.NoError(t, err)
	for _, doc := range docs {
		assert.Equal(t, "archived", doc["status"])
	}
}

func TestUpdate_SetOnMatch(t *testing.T) {
	handle := seededHandle(t)
	ctx := context.Background()

	result, err := handle.Update(ctx, testDB, testColl, docdb.Document{"name": "a"},
		docdb.Document{"$set": map[string]interface{}{"name": "alpha"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.MatchedCount)
	assert.Equal(t, int64(1), result.ModifiedCount)

	docs, err := handle.Find(ctx, testDB, testColl, docdb.Document{"name": "alpha"})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUpdate_NoopSetDoesNotCountAsModified(t *testing.T) {
	handle := seededHandle(t)

	result, err := handle.Update(context.Background(), testDB, testColl,
		docdb.Document{"name": "a"},
		docdb.Document{"$set": map[string]interface{}{"name": "a"}}, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.MatchedCount)
	assert.Equal(t, int64(0), result.ModifiedCount)
}

func TestUpdate_IncAndUnset(t *testing.T) {
	handle := docdb.NewHandle(memory.NewConnector())
	ctx := context.Background()

	_, err := handle.Add(ctx, testDB, testColl, []interface{}{
		docdb.Document{"id": 1, "count": 10, "tmp": "x"},
	}, nil)
	require.NoError(t, err)

	_, err = handle.Update(ctx, testDB, testColl, docdb.Document{"id": 1}, docdb.Document{
		"$inc":   map[string]interface{}{"count": 5},
		"$unset": map[string]interface{}{"tmp": ""},
	}, nil)
	require.NoError(t, err)

	docs, err := handle.Find(ctx, testDB, testColl, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, float64(15), docs[0]["count"])
	assert.NotContains(t, docs[0], "tmp")
}

func TestUpdate_ReplacementKeepsID(t *testing.T) {
	handle := docdb.NewHandle(memory.NewConnector())
	ctx := context.Background()

	_, err := handle.Add(ctx, testDB, testColl, []interface{}{
		docdb.Document{"_id": "fixed", "name": "old", "extra": true},
	}, nil)
	require.NoError(t, err)

	_, err = handle.Update(ctx, testDB, testColl, docdb.Document{"_id": "fixed"},
		docdb.Document{"name": "new"}, nil)
	require.NoError(t, err)

	docs, err := handle.Find(ctx, testDB, testColl, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "fixed", docs[0]["_id"])
	assert.Equal(t, "new", docs[0]["name"])
	assert.NotContains(t, docs[0], "extra")
}

func TestUpdate_Upsert(t *testing.T) {
	handle := docdb.NewHandle(memory.NewConnector())
	ctx := context.Background()

	result, err := handle.Update(ctx, testDB, testColl, docdb.Document{"name": "fresh"},
		docdb.Document{"$set": map[string]interface{}{"status": "new"}},
		&docdb.UpdateOptions{Upsert: true})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.MatchedCount)
	assert.Equal(t, int64(1), result.UpsertedCount)
	assert.NotNil(t, result.UpsertedID)

	docs, err := handle.Find(ctx, testDB, testColl, docdb.Document{"name": "fresh"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "new", docs[0]["status"])
}

func TestUpdate_UnknownOperatorFails(t *testing.T) {
	handle := seededHandle(t)

	_, err := handle.Update(context.Background(), testDB, testColl, nil,
		docdb.Document{"$rename": map[string]interface{}{"name": "title"}}, nil)

	assert.Error(t, err)
}

func TestCollection_FindOptions(t *testing.T) {
	connector := memory.NewConnector()
	handle := docdb.NewHandle(connector)
	ctx := context.Background()

	_, err := handle.Add(ctx, testDB, testColl, []interface{}{
		docdb.Document{"id": 3},
		docdb.Document{"id": 1},
		docdb.Document{"id": 2},
	}, nil)
	require.NoError(t, err)

	col := handle.Collection(testDB, testColl)

	docs, err := col.Find(ctx, nil, &docdb.FindOptions{Sort: docdb.Document{"id": 1}})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, 1, docs[0]["id"])
	assert.Equal(t, 3, docs[2]["id"])

	docs, err = col.Find(ctx, nil, &docdb.FindOptions{Sort: docdb.Document{"id": -1}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 3, docs[0]["id"])

	docs, err = col.Find(ctx, nil, &docdb.FindOptions{Sort: docdb.Document{"id": 1}, Skip: 2})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 3, docs[0]["id"])

	docs, err = col.Find(ctx, nil, &docdb.FindOptions{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestCollection_FindOne(t *testing.T) {
	handle := seededHandle(t)
	ctx := context.Background()
	col := handle.Collection(testDB, testColl)

	doc, err := col.FindOne(ctx, docdb.Document{"name": "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, doc["id"])

	_, err = col.FindOne(ctx, docdb.Document{"name": "missing"})
	assert.ErrorIs(t, err, docdb.ErrNoDocuments)
}

func TestCollection_CountDocuments(t *testing.T) {
	handle := seededHandle(t)
	col := handle.Collection(testDB, testColl)

	count, err := col.CountDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = col.CountDocuments(context.Background(), docdb.Document{"name": "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestFind_ResultsDoNotAliasStoredDocuments(t *testing.T) {
	handle := seededHandle(t)
	ctx := context.Background()

	docs, err := handle.Find(ctx, testDB, testColl, docdb.Document{"name": "a"})
	require.NoError(t, err)
	docs[0]["name"] = "mutated"

	again, err := handle.Find(ctx, testDB, testColl, docdb.Document{"name": "a"})
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestDatabase_ListCollectionNames(t *testing.T) {
	handle := seededHandle(t)

	names, err := handle.Database(testDB).ListCollectionNames(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{testColl}, names)
}

func TestConnector_LifecycleAfterDisconnect(t *testing.T) {
	connector := memory.NewConnector()
	ctx := context.Background()

	require.NoError(t, connector.Connect(ctx))
	require.NoError(t, connector.Ping(ctx))
	require.NoError(t, connector.Disconnect(ctx))

	assert.Error(t, connector.Ping(ctx))
	assert.Error(t, connector.Connect(ctx))
}
