package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type review struct {
	User  string    `json:"user"`
	State string    `json:"state"`
	At    time.Time `json:"at"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	in := []review{{User: "bob", State: "APPROVED", At: at}}

	require.NoError(t, c.Set("k", in, 0))

	var out []review
	require.NoError(t, c.Get("k", &out))
	assert.Equal(t, in, out)

	// Mutating the result does not change the stored value.
	out[0].User = "mallory"
	var again []review
	require.NoError(t, c.Get("k", &again))
	assert.Equal(t, "bob", again[0].User)
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache()
	var out []review
	assert.ErrorIs(t, c.Get("absent", &out), ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("short", "v", time.Minute))
	require.NoError(t, c.Set("forever", "v", 0))

	var s string
	require.NoError(t, c.Get("short", &s))

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, c.Get("short", &s), ErrCacheMiss)
	require.NoError(t, c.Get("forever", &s))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_DeleteAndClose(t *testing.T) {
	c := NewMemoryCache()
	require.NoError(t, c.Set("a", 1, 0))
	require.NoError(t, c.Set("b", 2, 0))

	require.NoError(t, c.Delete("a"))
	var n int
	assert.ErrorIs(t, c.Get("a", &n), ErrCacheMiss)

	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_UnmarshalError(t *testing.T) {
	c := NewMemoryCache()
	require.NoError(t, c.Set("k", "text", 0))

	var n int
	err := c.Get("k", &n)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestCacheKeyBuilder(t *testing.T) {
	kb := NewCacheKeyBuilder("github")
	assert.Equal(t, "github:pr_reviews:acme:api:42", kb.PRReviewsKey("acme", "api", 42))
	assert.Equal(t, "github:pr:acme:api:7", kb.PRKey("acme", "api", 7))
	assert.Equal(t, "github:search:is:pr user:acme:3", kb.SearchPageKey("is:pr user:acme", 3))
}
