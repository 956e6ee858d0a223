package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkarpinos/shorty/internal/link"
)

func TestGenerateRandomShape(t *testing.T) {
	g := New(WithSeed(1, 2))

	for i := 0; i < 200; i++ {
		code, err := g.Generate("", nil)
		require.NoError(t, err)
		require.Len(t, code, DefaultLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(Base36, r), "unexpected rune %q in %q", r, code)
		}
	}
}

func TestGenerateNeverCollides(t *testing.T) {
	// A tiny alphabet forces frequent collisions
	g := New(WithSeed(7, 7), WithAlphabet("ab"), WithLength(4), WithAttempts(1000))
	existing := map[string]struct{}{}

	for i := 0; i < 16; i++ {
		code, err := g.Generate("", existing)
		require.NoError(t, err)
		_, taken := existing[code]
		require.False(t, taken, "collision on %q", code)
		existing[code] = struct{}{}
	}
	assert.Len(t, existing, 16)
}

func TestGenerateExhausted(t *testing.T) {
	g := New(WithAlphabet("a"), WithLength(1), WithAttempts(5))

	_, err := g.Generate("", map[string]struct{}{"a": {}})
	assert.ErrorIs(t, err, link.ErrGenerationExhausted)
}

func TestGenerateCustom(t *testing.T) {
	g := New()
	existing := map[string]struct{}{"taken": {}}

	code, err := g.Generate("  my-code_1 ", existing)
	require.NoError(t, err)
	assert.Equal(t, "my-code_1", code)

	_, err = g.Generate("taken", existing)
	assert.ErrorIs(t, err, link.ErrDuplicateShortcode)

	_, err = g.Generate("bad code!", existing)
	assert.ErrorIs(t, err, link.ErrValidation)
}

func TestGenerateTwoDiffer(t *testing.T) {
	g := New()
	existing := map[string]struct{}{}

	first, err := g.Generate("", existing)
	require.NoError(t, err)
	existing[first] = struct{}{}

	second, err := g.Generate("", existing)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
