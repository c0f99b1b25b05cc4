// Package docdb_test provides unit tests for the Handle lifecycle.
package docdb_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docstorehq/docstore-service/internal/core/docdb"
	"github.com/docstorehq/docstore-service/tests/mocks"
)

func newMockedHandle() (*docdb.Handle, *mocks.MockConnector, *mocks.MockDatabase, *mocks.MockCollection) {
	conn := &mocks.MockConnector{}
	db := &mocks.MockDatabase{}
	col := &mocks.MockCollection{}
	return docdb.NewHandle(conn), conn, db, col
}

func TestNewHandle_PerformsNoIO(t *testing.T) {
	conn := &mocks.MockConnector{}

	handle := docdb.NewHandle(conn)

	require.NotNil(t, handle)
	assert.Same(t, docdb.Connector(conn), handle.Connector())
	conn.AssertNotCalled(t, "Connect", mock.Anything)
}

func TestHandle_Connect_Idempotent(t *testing.T) {
	handle, conn, _, _ := newMockedHandle()
	conn.On("Connect", mock.Anything).Return(nil)

	ctx := context.Background()
	require.NoError(t, handle.Connect(ctx))
	require.NoError(t, handle.Connect(ctx))
	require.NoError(t, handle.Connect(ctx))

	conn.AssertNumberOfCalls(t, "Connect", 1)
}

func TestHandle_Connect_Error(t *testing.T) {
	handle, conn, _, _ := newMockedHandle()
	conn.On("Connect", mock.Anything).Return(assert.AnError)

	err := handle.Connect(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
}

func TestHandle_Connect_ErrorDoesNotStick(t *testing.T) {
	handle, conn, _, _ := newMockedHandle()
	conn.On("Connect", mock.Anything).Return(assert.AnError).Once()
	conn.On("Connect", mock.Anything).Return(nil).Once()

	ctx := context.Background()
	require.Error(t, handle.Connect(ctx))
	require.NoError(t, handle.Connect(ctx))

	conn.AssertNumberOfCalls(t, "Connect", 2)
}

func TestHandle_Connect_Concurrent(t *testing.T) {
	handle, conn, _, _ := newMockedHandle()
	conn.On("Connect", mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, handle.Connect(context.Background()))
		}()
	}
	wg.Wait()

	conn.AssertNumberOfCalls(t, "Connect", 1)
}

func TestHandle_Find_ConnectsLazily(t *testing.T) {
	handle, conn, db, col := newMockedHandle()
	ctx := context.Background()

	conn.On("Connect", mock.Anything).Return(nil)
	conn.On("Database", "appdb").Return(db)
	db.On("Collection", "items").Return(col)
	col.On("Find", ctx, docdb.Document{}, (*docdb.FindOptions)(nil)).
		Return([]docdb.Document{{"name": "a"}}, nil)

	docs, err := handle.Find(ctx, "appdb", "items", nil)

	require.NoError(t, err)
	assert.Len(t, docs, 1)
	conn.AssertNumberOfCalls(t, "Connect", 1)
}

func TestHandle_Find_NilFilterMatchesAll(t *testing.T) {
	handle, conn, db, col := newMockedHandle()
	ctx := context.Background()

	conn.On("Connect", mock.Anything).Return(nil)
	conn.On("Database", "appdb").Return(db)
	db.On("Collection", "items").Return(col)
	col.On("Find", ctx, docdb.Document{}, (*docdb.FindOptions)(nil)).
		Return([]docdb.Document{}, nil)

	_, err := handle.Find(ctx, "appdb", "items", nil)

	require.NoError(t, err)
	// The nil filter must reach the collection as the match-all document.
	col.AssertCalled(t, "Find", ctx, docdb.Document{}, (*docdb.FindOptions)(nil))
}

func TestHandle_Update_NilFilterReachesBackendAsMatchAll(t *testing.T) {
	handle, conn, db, col := newMockedHandle()
	ctx := context.Background()
	update := docdb.Document{"$set": map[string]interface{}{"status": "done"}}

	conn.On("Connect", mock.Anything).Return(nil)
	conn.On("Database", "appdb").Return(db)
	db.On("Collection", "items").Return(col)
	col.On("UpdateMany", ctx, docdb.Document{}, update, (*docdb.UpdateOptions)(nil)).
		Return(&docdb.UpdateResult{MatchedCount: 5, ModifiedCount: 5}, nil)

	result, err := handle.Update(ctx, "appdb", "items", nil, update, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(5), result.MatchedCount)
}

func TestHandle_Add_EmptySliceIsValid(t *testing.T) {
	handle, conn, db, col := newMockedHandle()
	ctx := context.Background()

	conn.On("Connect", mock.Anything).Return(nil)
	conn.On("Database", "appdb").Return(db)
	db.On("Collection", "items").Return(col)
	col.On("InsertMany", ctx, []interface{}{}, (*docdb.InsertOptions)(nil)).
		Return(&docdb.InsertResult{}, nil)

	result, err := handle.Add(ctx, "appdb", "items", []interface{}{}, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.InsertedCount)
}

func TestHandle_Remove_PropagatesBackendError(t *testing.T) {
	handle, conn, db, col := newMockedHandle()
	ctx := context.Background()

	conn.On("Connect", mock.Anything).Return(nil)
	conn.On("Database", "appdb").Return(db)
	db.On("Collection", "items").Return(col)
	col.On("DeleteMany", ctx, docdb.Document{"id": 2}, (*docdb.DeleteOptions)(nil)).
		Return(nil, assert.AnError)

	_, err := handle.Remove(ctx, "appdb", "items", docdb.Document{"id": 2}, nil)

	// The wrapper adds no translation of its own.
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHandle_Close_FailsFastAfterwards(t *testing.T) {
	handle, conn, _, _ := newMockedHandle()
	ctx := context.Background()

	conn.On("Connect", mock.Anything).Return(nil)
	conn.On("Disconnect", mock.Anything).Return(nil)

	require.NoError(t, handle.Connect(ctx))
	require.NoError(t, handle.Close(ctx))

	assert.ErrorIs(t, handle.Connect(ctx), docdb.ErrHandleClosed)
	assert.ErrorIs(t, handle.Ping(ctx), docdb.ErrHandleClosed)

	_, err := handle.Find(ctx, "appdb", "items", nil)
	assert.ErrorIs(t, err, docdb.ErrHandleClosed)

	_, err = handle.Add(ctx, "appdb", "items", []interface{}{docdb.Document{"id": 1}}, nil)
	assert.ErrorIs(t, err, docdb.ErrHandleClosed)

	_, err = handle.Update(ctx, "appdb", "items", nil, docdb.Document{}, nil)
	assert.ErrorIs(t, err, docdb.ErrHandleClosed)

	_, err = handle.Remove(ctx, "appdb", "items", nil, nil)
	assert.ErrorIs(t, err, docdb.ErrHandleClosed)

	assert.ErrorIs(t, handle.Close(ctx), docdb.ErrHandleClosed)
	conn.AssertNumberOfCalls(t, "Disconnect", 1)
}

func TestHandle_Close_BeforeConnect(t *testing.T) {
	handle, conn, _, _ := newMockedHandle()
	conn.On("Disconnect", mock.Anything).Return(nil)

	require.NoError(t, handle.Close(context.Background()))

	conn.AssertNumberOfCalls(t, "Disconnect", 1)
	assert.ErrorIs(t, handle.Connect(context.Background()), docdb.ErrHandleClosed)
}

func TestHandle_Ping_EnsuresConnected(t *testing.T) {
	handle, conn, _, _ := newMockedHandle()
	conn.On("Connect", mock.Anything).Return(nil)
	conn.On("Ping", mock.Anything).Return(nil)

	require.NoError(t, handle.Ping(context.Background()))

	conn.AssertNumberOfCalls(t, "Connect", 1)
	conn.AssertNumberOfCalls(t, "Ping", 1)
}

func TestHandle_CollectionLookup_IsPure(t *testing.T) {
	handle, conn, db, col := newMockedHandle()

	conn.On("Database", "appdb").Return(db)
	db.On("Collection", "items").Return(col)

	got := handle.Collection("appdb", "items")

	assert.NotNil(t, got)
	conn.AssertNotCalled(t, "Connect", mock.Anything)
}
