package chunk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/compozy/docsplit/engine/core"
	"github.com/compozy/docsplit/engine/knowledge/extract"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/schema"
)

const (
	MetaChunkIndex = "chunk_index"
	MetaSource     = "source"
)

var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/compozy/docsplit/chunk"))

// Processor turns extracted records into chunks using one splitter.
type Processor struct {
	splitter *Splitter
}

// NewProcessor wraps a splitter.
func NewProcessor(splitter *Splitter) *Processor {
	return &Processor{splitter: splitter}
}

// Splitter returns the splitter used by the processor.
func (p *Processor) Splitter() *Splitter {
	return p.splitter
}

// Process splits every record in order and flattens the chunks.
// Chunk metadata is a copy of the record metadata plus chunk_index.
func (p *Processor) Process(ctx context.Context, records []extract.Record) ([]Chunk, error) {
	if p.splitter == nil {
		return nil, fmt.Errorf("%w: processor has no splitter", ErrInvalidConfig)
	}
	chunks := make([]Chunk, 0, len(records))
	for ri := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record := records[ri]
		source := metadataString(record.Metadata, MetaSource)
		for ci, span := range p.splitter.Split(record.Text) {
			text := record.Text[span.Start:span.End]
			hash := hashText(text)
			metadata := core.MergeMaps(record.Metadata, map[string]any{MetaChunkIndex: ci})
			chunks = append(chunks, Chunk{
				ID:          chunkID(source, ri, ci, hash),
				Text:        text,
				Hash:        hash,
				Metadata:    metadata,
				StartOffset: span.Start,
				EndOffset:   span.End,
				RecordIndex: ri,
			})
		}
	}
	return chunks, nil
}

// ToDocuments converts chunks into langchaingo documents for vector stores.
func ToDocuments(chunks []Chunk) []schema.Document {
	docs := make([]schema.Document, len(chunks))
	for i := range chunks {
		docs[i] = schema.Document{
			PageContent: chunks[i].Text,
			Metadata:    core.MergeMaps(chunks[i].Metadata, map[string]any{"chunk_id": chunks[i].ID}),
		}
	}
	return docs
}

func chunkID(source string, recordIndex, chunkIndex int, hash string) string {
	key := strings.Join([]string{source, strconv.Itoa(recordIndex), strconv.Itoa(chunkIndex), hash}, "::")
	return uuid.NewSHA1(chunkNamespace, []byte(key)).String()
}

func hashText(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:16])
}

func metadataString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	value, ok := meta[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
