package chunk

// Chunk is one contiguous slice of a record's text.
type Chunk struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	Hash        string         `json:"hash"`
	Metadata    map[string]any `json:"metadata"`
	StartOffset int            `json:"start_offset"`
	EndOffset   int            `json:"end_offset"`
	RecordIndex int            `json:"record_index"`
}
