package core

import (
	"maps"

	"github.com/mohae/deepcopy"
)

// CloneMap returns a deep copy of m. Nested maps and slices are not shared with the source.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	copied, ok := deepcopy.Copy(m).(map[string]any)
	if !ok {
		return maps.Clone(m)
	}
	return copied
}

// MergeMaps layers the given maps left to right into a fresh map. Later keys win.
func MergeMaps(layers ...map[string]any) map[string]any {
	size := 0
	for _, layer := range layers {
		size += len(layer)
	}
	out := make(map[string]any, size)
	for _, layer := range layers {
		for k, v := range CloneMap(layer) {
			out[k] = v
		}
	}
	return out
}
