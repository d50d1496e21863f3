package automapper

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewSuggestionCache(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewSuggestionCache("", zerolog.Nop()))
	assert.Nil(t, NewSuggestionCache("not a url", zerolog.Nop()))
	assert.NotNil(t, NewSuggestionCache("redis://localhost:6379/0", zerolog.Nop()))
}

func TestCacheKey(t *testing.T) {
	t.Parallel()
	cache := &SuggestionCache{}

	base := cache.key("member_id", []string{"a", "b"})
	assert.Equal(t, base, cache.key("MEMBER_ID", []string{"a", "b"}), "column casing does not change the key")
	assert.NotEqual(t, base, cache.key("member_id", []string{"a", "c"}))
	assert.NotEqual(t, base, cache.key("member_id", []string{"ab"}))
	assert.Contains(t, base, "crosswalk:suggest:")
}
