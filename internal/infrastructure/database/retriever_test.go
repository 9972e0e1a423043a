package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"postbridge/internal/domain/repository/database"
)

func TestRetrieve(t *testing.T) {
	t.Parallel()
	uri := setupMongo(t)

	db, err := Connect(Config{
		URI:               uri,
		DBName:            TestDBName,
		ConnectionTimeout: 30000,
		QueryTimeout:      30000,
	})
	require.NoError(t, err)

	defer db.Stop() //nolint:errcheck

	retriever := NewFileRetriever(db)
	writer := NewFileWriter(db)
	ctx := context.Background()

	sunset := newTestFile("sunset")
	_, _, err = writer.Insert(ctx, sunset)
	require.NoError(t, err)

	sunset2 := newTestFile("sunset2")
	_, _, err = writer.Insert(ctx, sunset2)
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		got, err := retriever.FindByID(ctx, sunset.ID)
		require.NoError(t, err)
		require.Equal(t, sunset.Key(), got.Key())
		require.True(t, sunset.CreatedAt.Equal(got.CreatedAt))
		require.Equal(t, sunset.Size, got.Size)
	})

	t.Run("by composite key", func(t *testing.T) {
		got, err := retriever.FindByCompositeKey(ctx, sunset2.Key())
		require.NoError(t, err)
		require.Equal(t, sunset2.ID, got.ID)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := retriever.FindByID(ctx, "nonexistent")
		require.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("key differs in width", func(t *testing.T) {
		key := sunset.Key()
		key.Width = 0

		_, err := retriever.FindByCompositeKey(ctx, key)
		require.ErrorIs(t, err, database.ErrNotFound)
	})
}
