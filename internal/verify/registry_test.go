package verify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	require.True(t, r.Has("all_non_empty"))
	require.True(t, r.Has("descriptions_match_counts"))
	require.False(t, r.Has("nope"))

	_, ok := r.Lookup("nope")
	require.False(t, ok)

	r.Register("always", func(answers map[string]string) (bool, string) { return true, "" })
	fn, ok := r.Lookup("always")
	require.True(t, ok)
	pass, _ := fn(nil)
	require.True(t, pass)
}

func TestAllNonEmpty(t *testing.T) {
	fn, _ := NewRegistry().Lookup("all_non_empty")

	ok, _ := fn(map[string]string{"a": "1", "b": "x"})
	require.True(t, ok)

	ok, msg := fn(map[string]string{"a": "1", "b": "  "})
	require.False(t, ok)
	require.Contains(t, msg, `"b"`)
}

func TestDescriptionsMatchCounts(t *testing.T) {
	fn, _ := NewRegistry().Lookup("descriptions_match_counts")

	ok, _ := fn(map[string]string{
		"Number of people":    "2",
		"Describe the people": "two runners",
	})
	require.True(t, ok)

	ok, _ = fn(map[string]string{
		"Number of people":    "0",
		"Describe the people": "",
	})
	require.True(t, ok)

	// A zero count forbids a description.
	ok, _ = fn(map[string]string{
		"Number of people":    "0",
		"Describe the people": "ghost",
	})
	require.False(t, ok)

	// A non-zero count requires one.
	ok, msg := fn(map[string]string{
		"Number of people":    "2",
		"Describe the people": " ",
	})
	require.False(t, ok)
	require.Contains(t, msg, "required")

	// Unpaired questions pass through untouched.
	ok, _ = fn(map[string]string{"Weather": "rain"})
	require.True(t, ok)
}
