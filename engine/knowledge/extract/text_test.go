package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextAdapter(t *testing.T) {
	t.Run("Should load UTF-8 text as one record", func(t *testing.T) {
		opts := memOptions(t, map[string][]byte{"/notes.txt": []byte("first line\r\nsecond line\n")})

		records, err := NewTextAdapter(opts).Load(t.Context(), "/notes.txt")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "first line\nsecond line\n", records[0].Text)
		assert.Equal(t, "/notes.txt", records[0].Metadata[MetaSource])
		assert.Equal(t, "txt", records[0].Metadata[MetaFormat])
		assert.Equal(t, "utf-8", records[0].Metadata[MetaEncoding])
	})

	t.Run("Should strip the UTF-8 byte order mark", func(t *testing.T) {
		opts := memOptions(t, map[string][]byte{"/bom.txt": append([]byte{0xEF, 0xBB, 0xBF}, "héllo"...)})
		records, err := NewTextAdapter(opts).Load(t.Context(), "/bom.txt")
		require.NoError(t, err)
		assert.Equal(t, "héllo", records[0].Text)
	})

	t.Run("Should transcode UTF-16 with byte order mark", func(t *testing.T) {
		data := []byte{0xFF, 0xFE, 'h', 0, 'i', 0, 0xE9, 0}
		opts := memOptions(t, map[string][]byte{"/wide.txt": data})
		records, err := NewTextAdapter(opts).Load(t.Context(), "/wide.txt")
		require.NoError(t, err)
		assert.Equal(t, "hié", records[0].Text)
		assert.Equal(t, "utf-16le", records[0].Metadata[MetaEncoding])
	})

	t.Run("Should drop the big-endian byte order mark", func(t *testing.T) {
		data := []byte{0xFE, 0xFF, 0, 'o', 0, 'k', 0, '\r', 0, '\n', 0, '!'}
		opts := memOptions(t, map[string][]byte{"/be.txt": data})
		records, err := NewTextAdapter(opts).Load(t.Context(), "/be.txt")
		require.NoError(t, err)
		assert.Equal(t, "ok\n!", records[0].Text)
		assert.Equal(t, "utf-16be", records[0].Metadata[MetaEncoding])
	})

	t.Run("Should fall back to a legacy encoding for invalid UTF-8", func(t *testing.T) {
		data := []byte("caf\xe9 cr\xe8me br\xfbl\xe9e")
		opts := memOptions(t, map[string][]byte{"/latin.txt": data})
		records, err := NewTextAdapter(opts).Load(t.Context(), "/latin.txt")
		require.NoError(t, err)
		assert.Equal(t, "café crème brûlée", records[0].Text)
	})

	t.Run("Should return one empty record for an empty file", func(t *testing.T) {
		opts := memOptions(t, map[string][]byte{"/empty.txt": {}})
		records, err := NewTextAdapter(opts).Load(t.Context(), "/empty.txt")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Empty(t, records[0].Text)
	})

	t.Run("Should reject binary content", func(t *testing.T) {
		png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
		opts := memOptions(t, map[string][]byte{"/image.txt": png})
		_, err := NewTextAdapter(opts).Load(t.Context(), "/image.txt")
		assert.ErrorIs(t, err, ErrExtractionFailed)
		assert.ErrorContains(t, err, "binary content")
	})
}
