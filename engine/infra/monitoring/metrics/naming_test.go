package metrics

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricName(t *testing.T) {
	t.Run("Should prefix bare names once", func(t *testing.T) {
		assert.Equal(t, "docsplit_documents_total", MetricName("documents_total"))
		assert.Equal(t, "docsplit_documents_total", MetricName("docsplit_documents_total"))
		assert.Equal(t, "docsplit_", MetricName(""))
	})
}

func TestMetricNameWithSubsystem(t *testing.T) {
	cases := []struct {
		subsystem string
		name      string
		expected  string
	}{
		{"ingest", "chunks_total", "docsplit_ingest_chunks_total"},
		{"_extract_", "duration_seconds", "docsplit_extract_duration_seconds"},
		{"ingest", "", "docsplit_ingest"},
		{"", "cache_lookups_total", "docsplit_cache_lookups_total"},
		{"ingest", "docsplit_legacy_total", "docsplit_legacy_total"},
	}
	t.Run("Should join prefix, subsystem and name", func(t *testing.T) {
		for _, tc := range cases {
			assert.Equal(t, tc.expected, MetricNameWithSubsystem(tc.subsystem, tc.name), "%q/%q", tc.subsystem, tc.name)
		}
	})
}

func TestBuckets(t *testing.T) {
	t.Run("Should keep bucket boundaries strictly increasing", func(t *testing.T) {
		for name, buckets := range map[string][]float64{
			"process": ProcessDurationBuckets,
			"extract": ExtractDurationBuckets,
			"chunks":  ChunkCountBuckets,
		} {
			assert.True(t, sort.Float64sAreSorted(buckets), name)
			for i := 1; i < len(buckets); i++ {
				assert.Greater(t, buckets[i], buckets[i-1], "%s bucket %d", name, i)
			}
		}
	})
}
