package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	calls int
}

func (s *stubAdapter) Load(_ context.Context, path string) ([]Record, error) {
	s.calls++
	return []Record{newRecord(path, "stub", "stub text")}, nil
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(DefaultOptions())

	t.Run("Should register the built-in formats", func(t *testing.T) {
		assert.Equal(t,
			[]string{".csv", ".doc", ".docx", ".pdf", ".txt", ".xls", ".xlsx"},
			registry.Extensions(),
		)
	})

	t.Run("Should resolve extensions case-insensitively", func(t *testing.T) {
		cases := map[string]any{
			".PDF":  &PDFAdapter{},
			"txt":   &TextAdapter{},
			".Csv":  &CSVAdapter{},
			".DOCX": &DOCXAdapter{},
			".doc":  &DOCAdapter{},
			".XlSx": &XLSXAdapter{},
			" .xls": &XLSAdapter{},
		}
		for ext, want := range cases {
			adapter, err := registry.Lookup(ext)
			require.NoError(t, err, ext)
			assert.IsType(t, want, adapter, ext)
			assert.True(t, registry.Supports(ext))
		}
	})

	t.Run("Should name the unsupported extension", func(t *testing.T) {
		_, err := registry.Lookup(".json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedFormat))
		var unsupported *UnsupportedFormatError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, ".json", unsupported.Extension)
		assert.Contains(t, err.Error(), ".json")
		assert.False(t, registry.Supports(".json"))
	})

	t.Run("Should accept new formats without touching existing ones", func(t *testing.T) {
		local := NewRegistry(DefaultOptions())
		stub := &stubAdapter{}
		local.Register("MD", func(Options) Adapter { return stub })

		adapter, err := local.Lookup(".md")
		require.NoError(t, err)
		records, err := adapter.Load(t.Context(), "notes.md")
		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, 1, stub.calls)
		assert.Len(t, local.Extensions(), 8)
		assert.Len(t, registry.Extensions(), 7)
	})

	t.Run("Should fill default options", func(t *testing.T) {
		opts := NewRegistry(Options{}).Options()
		assert.NotNil(t, opts.Fs)
		assert.Equal(t, ',', opts.CSVDelimiter)
	})
}

func TestReadFile(t *testing.T) {
	t.Run("Should wrap missing files as extraction failures", func(t *testing.T) {
		adapter := NewTextAdapter(memOptions(t, nil))
		_, err := adapter.Load(t.Context(), "/missing.txt")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExtractionFailed)
		var extractErr *ExtractionError
		require.ErrorAs(t, err, &extractErr)
		assert.Equal(t, "/missing.txt", extractErr.Path)
		assert.Equal(t, "txt", extractErr.Format)
		assert.NotNil(t, extractErr.Cause)
	})

	t.Run("Should enforce the maximum file size", func(t *testing.T) {
		opts := memOptions(t, map[string][]byte{"/big.txt": []byte("0123456789")})
		opts.MaxFileSize = 5
		_, err := NewTextAdapter(opts).Load(t.Context(), "/big.txt")
		assert.ErrorIs(t, err, ErrExtractionFailed)
		assert.ErrorContains(t, err, "exceeds limit")
	})

	t.Run("Should honor a canceled context", func(t *testing.T) {
		opts := memOptions(t, map[string][]byte{"/a.txt": []byte("a")})
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := NewTextAdapter(opts).Load(ctx, "/a.txt")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Should reject directories", func(t *testing.T) {
		opts := memOptions(t, nil)
		require.NoError(t, opts.Fs.MkdirAll("/dir.txt", 0o755))
		_, err := NewTextAdapter(opts).Load(t.Context(), "/dir.txt")
		assert.ErrorContains(t, err, "directory")
	})
}
