package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedLists(t *testing.T) {
	d, err := load("")
	require.NoError(t, err)

	for n := MinLength; n <= MaxLength; n++ {
		assert.Greater(t, d.Count(n), 100, "length %d", n)
	}
}

func TestRandomWordHasRequestedLength(t *testing.T) {
	d, err := load("")
	require.NoError(t, err)

	for n := MinLength; n <= MaxLength; n++ {
		for i := 0; i < 10; i++ {
			w, err := d.RandomWord(n)
			require.NoError(t, err)
			assert.Len(t, w, n)
			assert.True(t, d.IsValid(w, n))
		}
	}

	_, err = d.RandomWord(3)
	assert.Error(t, err)
}

func TestIsValidNormalizesCase(t *testing.T) {
	d, err := load("")
	require.NoError(t, err)

	assert.True(t, d.IsValid("crane", 5))
	assert.True(t, d.IsValid("CRANE", 5))
	assert.False(t, d.IsValid("ZZZZZ", 5))
	assert.False(t, d.IsValid("CRANE", 6))
}

func TestLoadSharedDictionaryOnce(t *testing.T) {
	d1, err := Load()
	require.NoError(t, err)
	d2, err := Load()
	require.NoError(t, err)
	assert.Same(t, d1, d2)
}
