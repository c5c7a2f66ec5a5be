package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePatternPath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                "",
		".":               "",
		"  ./specs/a.sl2": "specs/a.sl2",
		"specs/../b.sl2":  "b.sl2",
		`specs\c.sl2`:     "specs/c.sl2",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizePatternPath(input), input)
	}
}

func TestHasPathPrefix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path, prefix string
		want         bool
	}{
		{"out/a.stl", "out", true},
		{"out", "out", true},
		{"output/a.stl", "out", false},
		{`out\nested\a.stl`, "out", true},
		{"./out/a.stl", "out", true},
		{"specs", "specs/out", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HasPathPrefix(tc.path, tc.prefix), "%s under %s", tc.path, tc.prefix)
	}
}

func TestContainsPathSeparator(t *testing.T) {
	t.Parallel()

	assert.True(t, ContainsPathSeparator("a/b"))
	assert.True(t, ContainsPathSeparator(`a\b`))
	assert.False(t, ContainsPathSeparator(".stl"))
}

func TestStem(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "engine", Stem("specs/engine.sl2"))
	assert.Equal(t, "archive.tar", Stem("archive.tar.gz"))
	assert.Equal(t, "noext", Stem("noext"))
}

func TestSortedStringKeys(t *testing.T) {
	t.Parallel()

	keys := SortedStringKeys(map[string]int{"b": 2, "a": 1, "c": 3})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestWriteStringWithDirs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "deeper", "prop.stl")
	require.NoError(t, WriteStringWithDirs(path, "(F (0 inf) x1)", 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "(F (0 inf) x1)", string(got))
}
