package todo

import (
	"testing"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobRoundTrip(t *testing.T) {
	t.Parallel()

	collections := map[string][]model.Item{
		"empty": {},
		"nil":   nil,
		"mixed": {
			{ID: 1666000000000, Title: "Buy milk"},
			{ID: 1666000000001, Title: "Ünïcode ✓", Completed: true},
		},
	}

	for name, items := range collections {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			blob, err := EncodeItems(items)
			require.NoError(t, err)

			got, err := DecodeItems(blob)
			require.NoError(t, err)
			if diff := cmp.Diff(items, got, cmpEmptyEqual()); diff != "" {
				t.Fatalf("round trip (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeEmptyIsArray(t *testing.T) {
	t.Parallel()

	blob, err := EncodeItems(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(blob))
}

func TestBlobWireFormat(t *testing.T) {
	t.Parallel()

	got, err := DecodeItems([]byte(`[{"id":3,"title":"read","completed":true}]`))
	require.NoError(t, err)
	assert.Equal(t, []model.Item{{ID: 3, Title: "read", Completed: true}}, got)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := DecodeItems([]byte("<html>"))
	require.Error(t, err)
}

// cmpEmptyEqual treats nil and empty slices as equal.
func cmpEmptyEqual() cmp.Option {
	return cmp.FilterValues(func(a, b []model.Item) bool {
		return len(a) == 0 && len(b) == 0
	}, cmp.Comparer(func(_, _ []model.Item) bool { return true }))
}
