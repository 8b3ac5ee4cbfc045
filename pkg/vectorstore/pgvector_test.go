package vectorstore

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration test against a real Postgres with the pgvector extension.
// Skipped unless DB_CONNECTION_STRING is set.
func TestPGVectorStoreIntegration(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	s, err := NewPGVectorStore(dsn, "integration-test-model", 3)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Reset(ctx))

	t.Run("upsert and count", func(t *testing.T) {
		n, err := s.Upsert(ctx, []Entry{
			testEntry("pg1", []float32{1, 0, 0}),
			testEntry("pg2", []float32{0, 1, 0}),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		// Overlapping ids replace, not duplicate
		_, err = s.Upsert(ctx, []Entry{testEntry("pg1", []float32{0.9, 0.1, 0})})
		require.NoError(t, err)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("query ordering", func(t *testing.T) {
		matches, err := s.Query(ctx, []float32{1, 0, 0}, 2)
		require.NoError(t, err)
		require.NotEmpty(t, matches)
		assert.Equal(t, "pg1", matches[0].ID)
		for i := 1; i < len(matches); i++ {
			assert.GreaterOrEqual(t, matches[i-1].Similarity, matches[i].Similarity)
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := s.Upsert(ctx, []Entry{testEntry("bad", []float32{1, 0})})
		var dimErr *DimensionMismatchError
		require.ErrorAs(t, err, &dimErr)
	})
}
