package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

func setupCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *resultCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewResultCache(client, ttl).(*resultCache)
}

func TestResultCache_SetGet(t *testing.T) {
	mr, c := setupCache(t, time.Hour)
	ctx := context.Background()

	in := &entity.AnalysisResult{
		AnalysisID: uuid.New(),
		Disease:    "Leaf Blast",
		StatusCode: entity.StatusDisease,
		Report:     "report",
		Summary:    `{"final_prediction":"Leaf Blast"}`,
		Images:     map[string][]byte{"agreement_matrix.png": {0x89, 'P', 'N', 'G'}},
	}

	require.NoError(t, c.Set(ctx, "abc", in))
	assert.True(t, mr.Exists("analysis:abc"))
	assert.Equal(t, time.Hour, mr.TTL("analysis:abc"))

	out, err := c.Get(ctx, "abc")

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, out.Cached)
	assert.Equal(t, in.AnalysisID, out.AnalysisID)
	assert.Equal(t, in.Disease, out.Disease)
	assert.Equal(t, in.Images, out.Images)
}

func TestResultCache_Miss(t *testing.T) {
	_, c := setupCache(t, time.Minute)

	out, err := c.Get(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestResultCache_Expiry(t *testing.T) {
	mr, c := setupCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc", &entity.AnalysisResult{Disease: "x"}))
	mr.FastForward(2 * time.Minute)

	out, err := c.Get(ctx, "abc")
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestResultCache_CorruptEntry(t *testing.T) {
	mr, c := setupCache(t, time.Minute)
	require.NoError(t, mr.Set("analysis:bad", "{not json"))

	out, err := c.Get(context.Background(), "bad")

	assert.Error(t, err)
	assert.Nil(t, out)
}

func TestResultCache_Unavailable(t *testing.T) {
	mr, c := setupCache(t, time.Minute)
	mr.Close()

	_, err := c.Get(context.Background(), "abc")

	assert.Error(t, err)
}
