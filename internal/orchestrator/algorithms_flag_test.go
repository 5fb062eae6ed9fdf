package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithmsBasic(t *testing.T) {
	sel, err := ParseAlgorithms("go:quicksort,mergesort;rust:heapsort")
	require.NoError(t, err)

	want := Selection{
		{Language: "go", Functions: []string{"quicksort", "mergesort"}},
		{Language: "rust", Functions: []string{"heapsort"}},
	}
	assert.Equal(t, want, sel)
}

func TestParseAlgorithmsPreservesCallerOrder(t *testing.T) {
	sel, err := ParseAlgorithms("rust:x;go:y;c:z")
	require.NoError(t, err)

	require.Len(t, sel, 3)
	assert.Equal(t, "rust", sel[0].Language)
	assert.Equal(t, "go", sel[1].Language)
	assert.Equal(t, "c", sel[2].Language)
}

func TestParseAlgorithmsEmpty(t *testing.T) {
	sel, err := ParseAlgorithms("")
	require.NoError(t, err)
	assert.Empty(t, sel)
}

func TestParseAlgorithmsMissingColon(t *testing.T) {
	_, err := ParseAlgorithms("go-quicksort")
	assert.Error(t, err)
}

func TestParseAlgorithmsDuplicateLanguage(t *testing.T) {
	_, err := ParseAlgorithms("go:a;go:b")
	assert.Error(t, err)
}

func TestParseAlgorithmsEmptyFunctionName(t *testing.T) {
	_, err := ParseAlgorithms("go:a,,b")
	assert.Error(t, err)
}

func TestParseAlgorithmOverrides(t *testing.T) {
	out, err := ParseAlgorithmOverrides([]string{"go=/bin/go-algo", "rust=/bin/rust-algo"})
	require.NoError(t, err)
	assert.Equal(t, "/bin/go-algo", out["go"])
	assert.Equal(t, "/bin/rust-algo", out["rust"])
}

func TestParseAlgorithmOverridesInvalid(t *testing.T) {
	_, err := ParseAlgorithmOverrides([]string{"no-equals-sign"})
	assert.Error(t, err)
}
