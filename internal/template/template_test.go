package template

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BinaryInfix(t *testing.T) {
	tmpl, err := Parse("{0} = {1}")
	require.NoError(t, err)

	elems := tmpl.Elements()
	require.Len(t, elems, 3)

	assert.Equal(t, 0, elems[0].Index)
	assert.False(t, elems[0].AsText)
	assert.True(t, elems[1].IsStatic())
	assert.Equal(t, " = ", elems[1].Text)
	assert.Equal(t, 1, elems[2].Index)
	assert.False(t, elems[2].AsText)

	assert.Equal(t, []string{" = "}, tmpl.StaticText())
	assert.Equal(t, 1, tmpl.MaxIndex())
}

func TestParse_AsText(t *testing.T) {
	tmpl, err := Parse("{0!} IS NULL")
	require.NoError(t, err)

	elems := tmpl.Elements()
	require.Len(t, elems, 2)
	assert.Equal(t, 0, elems[0].Index)
	assert.True(t, elems[0].AsText, "element 0 must be literal text")
	assert.Equal(t, " IS NULL", elems[1].Text)
}

func TestParse_PatternOrderNotArgumentOrder(t *testing.T) {
	tmpl, err := Parse("substring({0},{1}+1,{2}-{1})")
	require.NoError(t, err)

	var indexes []int
	for _, e := range tmpl.Elements() {
		if !e.IsStatic() {
			indexes = append(indexes, e.Index)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 1}, indexes)
	assert.Equal(t, 2, tmpl.MaxIndex())
}

func TestParse_NoArguments(t *testing.T) {
	tmpl, err := Parse("count(*)")
	require.NoError(t, err)

	assert.Equal(t, -1, tmpl.MaxIndex())
	require.Len(t, tmpl.Elements(), 1)
	assert.NoError(t, tmpl.Bind(0))
}

func TestParse_LoneClosingBraceIsText(t *testing.T) {
	tmpl, err := Parse("a } b")
	require.NoError(t, err)
	require.Len(t, tmpl.Elements(), 1)
	assert.Equal(t, "a } b", tmpl.Elements()[0].Text)
}

func TestParse_RoundTripString(t *testing.T) {
	patterns := []string{"{0} = {1}", "{0!} IS NULL", "trim(both from {0})", ""}
	for _, p := range patterns {
		tmpl := MustParse(p)
		var rebuilt string
		for _, e := range tmpl.Elements() {
			rebuilt += e.String()
		}
		assert.Equal(t, p, rebuilt)
		assert.Equal(t, p, tmpl.String())
	}
}

func TestParse_Malformed(t *testing.T) {
	testCases := []struct {
		name    string
		pattern string
	}{
		{"unclosed brace", "{0} = {1"},
		{"empty index", "{} = {1}"},
		{"non-numeric index", "{a} = {1}"},
		{"negative index", "{-1}"},
		{"signed index", "{+1}"},
		{"double bang", "{0!!}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.pattern)
			require.Error(t, err)
			assert.True(t, IsMalformed(err), "expected MalformedError, got %T", err)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("{x}") })
}

func TestBind_OutOfRange(t *testing.T) {
	tmpl := MustParse("{0} between {1} and {2}")

	assert.NoError(t, tmpl.Bind(3))

	err := tmpl.Bind(2)
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.Contains(t, err.Error(), "out of range")
}

func TestCache_ReturnsSameTemplate(t *testing.T) {
	cache := NewCache(0)

	t1, err := cache.Parse("{0} like {1}")
	require.NoError(t, err)
	t2, err := cache.Parse("{0} like {1}")
	require.NoError(t, err)

	assert.Same(t, t1, t2)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_DoesNotCacheErrors(t *testing.T) {
	cache := NewCache(8)

	_, err := cache.Parse("{0")
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_Eviction(t *testing.T) {
	cache := NewCache(2)

	first, err := cache.Parse("{0}")
	require.NoError(t, err)
	_, err = cache.Parse("{0} + {1}")
	require.NoError(t, err)
	_, err = cache.Parse("{0} - {1}")
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())

	again, err := cache.Parse("{0}")
	require.NoError(t, err)
	assert.Equal(t, first.Elements(), again.Elements(), "re-parse after eviction is identical")
}

func TestCache_ConcurrentParse(t *testing.T) {
	cache := NewCache(16)
	patterns := []string{"{0} = {1}", "{0} <> {1}", "lower({0})", "upper({0})"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := patterns[i%len(patterns)]
			tmpl, err := cache.Parse(p)
			assert.NoError(t, err)
			assert.Equal(t, p, tmpl.Pattern())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(patterns), cache.Len())
}
