package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMap(t *testing.T) {
	t.Run("Should deep copy nested values", func(t *testing.T) {
		src := map[string]any{
			"source": "a.pdf",
			"nested": map[string]any{"page": 1},
			"tags":   []string{"x"},
		}

		dst := CloneMap(src)
		dst["nested"].(map[string]any)["page"] = 2
		dst["tags"].([]string)[0] = "y"

		assert.Equal(t, 1, src["nested"].(map[string]any)["page"])
		assert.Equal(t, "x", src["tags"].([]string)[0])
	})

	t.Run("Should return nil for nil map", func(t *testing.T) {
		assert.Nil(t, CloneMap(nil))
	})
}

func TestMergeMaps(t *testing.T) {
	t.Run("Should let later layers win without aliasing inputs", func(t *testing.T) {
		base := map[string]any{"source": "a.csv", "row": 1}
		extra := map[string]any{"row": 2, "chunk_index": 0}

		merged := MergeMaps(base, nil, extra)

		require.Len(t, merged, 3)
		assert.Equal(t, 2, merged["row"])
		merged["source"] = "changed"
		assert.Equal(t, "a.csv", base["source"])
	})
}
