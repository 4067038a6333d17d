package metrics

// ProcessDurationBuckets defines latency buckets for document processing runs.
var ProcessDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// ExtractDurationBuckets defines latency buckets for format extraction.
var ExtractDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// ChunkCountBuckets defines buckets for chunks produced per document.
var ChunkCountBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1_000, 5_000}
