package chunk

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSplitter(t *testing.T, size, overlap int, separators []string, opts ...Option) *Splitter {
	t.Helper()
	s, err := NewSplitter(SplitterConfig{ChunkSize: size, ChunkOverlap: overlap, Separators: separators}, opts...)
	require.NoError(t, err)
	return s
}

func splitTexts(t *testing.T, s *Splitter, text string) []string {
	t.Helper()
	out, err := s.SplitText(text)
	require.NoError(t, err)
	return out
}

// assertCoverage checks that spans are ordered, gap-free and cover the whole text.
func assertCoverage(t *testing.T, text string, spans []Span) {
	t.Helper()
	require.NotEmpty(t, spans)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len(text), spans[len(spans)-1].End)
	for i := 1; i < len(spans); i++ {
		assert.LessOrEqual(t, spans[i].Start, spans[i-1].End, "gap before chunk %d", i)
		assert.Greater(t, spans[i].End, spans[i-1].End, "chunk %d does not advance", i)
	}
}

func TestSplitter_Scenarios(t *testing.T) {
	t.Run("Should keep separators at the end of each chunk", func(t *testing.T) {
		s := newTestSplitter(t, 4, 0, []string{". ", " ", ""})
		assert.Equal(t, []string{"A. ", "B. ", "C."}, splitTexts(t, s, "A. B. C."))
	})

	t.Run("Should return no chunks for empty text", func(t *testing.T) {
		s := newTestSplitter(t, 10, 2, nil)
		assert.Empty(t, splitTexts(t, s, ""))
		assert.Nil(t, s.Split(""))
	})

	t.Run("Should return text unchanged when it fits", func(t *testing.T) {
		s := newTestSplitter(t, 100, 10, nil)
		text := "  short text with trailing space \n"
		assert.Equal(t, []string{text}, splitTexts(t, s, text))
	})

	t.Run("Should produce three overlapping chunks for 2500 characters", func(t *testing.T) {
		s := newTestSplitter(t, 1000, 200, nil)
		for _, text := range []string{strings.Repeat("a", 2500), strings.Repeat("word ", 500)} {
			spans := s.Split(text)
			require.Len(t, spans, 3)
			assert.Equal(t, []Span{{0, 1000}, {800, 1800}, {1600, 2500}}, spans)
		}
	})

	t.Run("Should cut on blank lines first", func(t *testing.T) {
		s := newTestSplitter(t, 4, 0, nil)
		assert.Equal(t, []string{"ab\n\n", "cd\n\n", "ef"}, splitTexts(t, s, "ab\n\ncd\n\nef"))
	})

	t.Run("Should seed each chunk with whole trailing fragments", func(t *testing.T) {
		s := newTestSplitter(t, 6, 3, nil)
		assert.Equal(t,
			[]string{"aa bb ", "bb cc ", "cc dd ", "dd ee"},
			splitTexts(t, s, "aa bb cc dd ee"),
		)
	})

	t.Run("Should drop overlap that leaves no room for the next fragment", func(t *testing.T) {
		s := newTestSplitter(t, 9, 4, nil)
		assert.Equal(t, []string{"one two ", "three ", "four"}, splitTexts(t, s, "one two three four"))
	})

	t.Run("Should recurse into oversized fragments with finer separators", func(t *testing.T) {
		s := newTestSplitter(t, 5, 0, []string{"\n", " ", ""})
		assert.Equal(t,
			[]string{"hello", " ", "world", "\n", "hi"},
			splitTexts(t, s, "hello world\nhi"),
		)
	})

	t.Run("Should emit oversized fragment when no finer separator remains", func(t *testing.T) {
		s := newTestSplitter(t, 3, 0, []string{"\n"})
		assert.Equal(t, []string{"abcdef\n", "xy"}, splitTexts(t, s, "abcdef\nxy"))
	})

	t.Run("Should emit whole text when no separator occurs", func(t *testing.T) {
		s := newTestSplitter(t, 3, 0, []string{"|"})
		assert.Equal(t, []string{"abcdef"}, splitTexts(t, s, "abcdef"))
	})

	t.Run("Should measure code points and cut on rune boundaries", func(t *testing.T) {
		s := newTestSplitter(t, 2, 0, nil)
		text := "ééééé"
		spans := s.Split(text)
		assert.Equal(t, []Span{{0, 4}, {4, 8}, {8, 10}}, spans)
		for _, sp := range spans {
			assert.True(t, utf8.ValidString(text[sp.Start:sp.End]))
		}
	})

	t.Run("Should honor a custom length function", func(t *testing.T) {
		words := func(s string) int { return len(strings.Fields(s)) }
		s := newTestSplitter(t, 2, 0, nil, WithLengthFunc(words))
		assert.Equal(t, []string{"a b ", "c d"}, splitTexts(t, s, "a b c d"))
		assert.Equal(t, 4, s.Len("a b c d"))
	})
}

func TestSplitter_Properties(t *testing.T) {
	corpus := []string{
		strings.Repeat("The quick brown fox jumps over the lazy dog. ", 80),
		strings.Repeat("line one\nline two\n\nparagraph break\n", 40),
		strings.Repeat("ünïcödé wörds ", 120),
		strings.Repeat("x", 3333),
	}
	configs := []struct{ size, overlap int }{{50, 0}, {50, 10}, {200, 50}, {1000, 200}, {7, 3}}

	for _, cfg := range configs {
		s := newTestSplitter(t, cfg.size, cfg.overlap, nil)
		for _, text := range corpus {
			spans := s.Split(text)

			t.Run("Should cover the text without gaps", func(t *testing.T) {
				assertCoverage(t, text, spans)
			})

			t.Run("Should keep every chunk within the size bound", func(t *testing.T) {
				for _, sp := range spans {
					assert.LessOrEqual(t, RuneLength(text[sp.Start:sp.End]), cfg.size)
				}
			})

			t.Run("Should never overlap more than the configured overlap", func(t *testing.T) {
				for i := 1; i < len(spans); i++ {
					shared := 0
					if spans[i].Start < spans[i-1].End {
						shared = RuneLength(text[spans[i].Start:spans[i-1].End])
					}
					assert.LessOrEqual(t, shared, cfg.overlap)
				}
			})

			t.Run("Should reproduce the text when overlaps are removed", func(t *testing.T) {
				var b strings.Builder
				end := 0
				for _, sp := range spans {
					b.WriteString(text[max(sp.Start, end):sp.End])
					end = sp.End
				}
				assert.Equal(t, text, b.String())
			})

			t.Run("Should be deterministic", func(t *testing.T) {
				assert.Equal(t, spans, s.Split(text))
			})
		}
	}
}

func TestSplitter_OverlapSeeding(t *testing.T) {
	text := strings.Repeat("ab ", 200)

	t.Run("Should share trailing fragments between consecutive chunks", func(t *testing.T) {
		s := newTestSplitter(t, 50, 10, nil)
		spans := s.Split(text)

		require.Greater(t, len(spans), 1)
		for i := 1; i < len(spans); i++ {
			require.Less(t, spans[i].Start, spans[i-1].End, "chunk %d shares nothing with its predecessor", i)
			assert.Greater(t, spans[i].Start, spans[i-1].Start)
			shared := RuneLength(text[spans[i].Start:spans[i-1].End])
			assert.Positive(t, shared)
			assert.LessOrEqual(t, shared, 10)
		}
	})

	t.Run("Should not share text when overlap is zero", func(t *testing.T) {
		s := newTestSplitter(t, 50, 0, nil)
		spans := s.Split(text)

		require.Greater(t, len(spans), 1)
		for i := 1; i < len(spans); i++ {
			assert.Equal(t, spans[i-1].End, spans[i].Start)
		}
	})
}

func TestSplitterConfig_Validate(t *testing.T) {
	cases := []struct {
		name  string
		cfg   SplitterConfig
		field string
	}{
		{"zero size", SplitterConfig{ChunkSize: 0}, "chunk_size"},
		{"negative overlap", SplitterConfig{ChunkSize: 10, ChunkOverlap: -1}, "chunk_overlap"},
		{"overlap equal to size", SplitterConfig{ChunkSize: 10, ChunkOverlap: 10}, "chunk_overlap"},
		{"duplicate separators", SplitterConfig{ChunkSize: 10, Separators: []string{" ", " "}}, "separators"},
		{"unknown length function", SplitterConfig{ChunkSize: 10, LengthFunction: "words"}, "length_function"},
	}
	for _, tc := range cases {
		t.Run("Should reject "+tc.name, func(t *testing.T) {
			_, err := NewSplitter(tc.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}

	t.Run("Should accept defaults", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
		s, err := NewSplitter(SplitterConfig{ChunkSize: 10})
		require.NoError(t, err)
		cfg := s.Config()
		assert.Equal(t, DefaultSeparators, cfg.Separators)
		assert.Equal(t, LengthCharacters, cfg.LengthFunction)
		assert.Equal(t, DefaultEncoding, cfg.Encoding)
	})

	t.Run("Should not share separators with the caller", func(t *testing.T) {
		seps := []string{"\n", ""}
		s, err := NewSplitter(SplitterConfig{ChunkSize: 10, Separators: seps})
		require.NoError(t, err)
		seps[0] = "x"
		cfg := s.Config()
		cfg.Separators[1] = "y"
		assert.Equal(t, []string{"\n", ""}, s.Config().Separators)
	})
}

func TestLengthFunctions(t *testing.T) {
	t.Run("Should count code points rather than bytes", func(t *testing.T) {
		assert.Equal(t, 5, RuneLength("héllo"))
		assert.Equal(t, 0, RuneLength(""))
	})

	t.Run("Should measure chunks in code points by default", func(t *testing.T) {
		s := newTestSplitter(t, 3, 0, []string{""})
		assert.Equal(t, []string{"héé", "llo"}, splitTexts(t, s, "hééllo"))
	})

	t.Run("Should reject an unknown tiktoken encoding", func(t *testing.T) {
		_, err := NewSplitter(SplitterConfig{
			ChunkSize:      10,
			LengthFunction: LengthTokens,
			Encoding:       "no_such_encoding",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
		assert.Contains(t, err.Error(), "no_such_encoding")
	})
	t.Run("Should measure chunks in tiktoken tokens", func(t *testing.T) {
		tokens, err := TokenLength(DefaultEncoding)
		if err != nil {
			t.Skipf("tiktoken encoding %s unavailable: %v", DefaultEncoding, err)
		}
		assert.Equal(t, 2, tokens("hello world"))

		s, err := NewSplitter(SplitterConfig{
			ChunkSize:      6,
			ChunkOverlap:   2,
			LengthFunction: LengthTokens,
			Encoding:       DefaultEncoding,
		})
		require.NoError(t, err)
		text := strings.Repeat("hello world ", 20)
		spans := s.Split(text)

		require.Greater(t, len(spans), 1)
		assertCoverage(t, text, spans)
		for _, sp := range spans {
			assert.LessOrEqual(t, tokens(text[sp.Start:sp.End]), 6)
			assert.Equal(t, tokens(text[sp.Start:sp.End]), s.Len(text[sp.Start:sp.End]))
		}
	})
}
