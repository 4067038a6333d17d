package chunk

import (
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

var _ textsplitter.TextSplitter = (*Splitter)(nil)

// Span is a half-open byte range [Start, End) into the split text.
type Span struct {
	Start int
	End   int
}

// Splitter cuts text with a recursive separator cascade and merges fragments
// into overlapping chunks. It is immutable and safe for concurrent use.
type Splitter struct {
	cfg    SplitterConfig
	length LengthFunc
}

// Option customizes a Splitter.
type Option func(*Splitter)

// WithLengthFunc overrides the length function derived from the config.
func WithLengthFunc(fn LengthFunc) Option {
	return func(s *Splitter) {
		if fn != nil {
			s.length = fn
		}
	}
}

// NewSplitter validates cfg and builds a splitter.
func NewSplitter(cfg SplitterConfig, opts ...Option) (*Splitter, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Splitter{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.length == nil {
		fn, err := resolveLength(cfg)
		if err != nil {
			return nil, err
		}
		s.length = fn
	}
	return s, nil
}

// Config returns a copy of the splitter configuration.
func (s *Splitter) Config() SplitterConfig {
	cfg := s.cfg
	cfg.Separators = append([]string(nil), s.cfg.Separators...)
	return cfg
}

// Len measures text with the splitter's length function.
func (s *Splitter) Len(text string) int {
	return s.length(text)
}

// SplitText returns the chunk texts in order.
func (s *Splitter) SplitText(text string) ([]string, error) {
	spans := s.Split(text)
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = text[sp.Start:sp.End]
	}
	return out, nil
}

// Split returns the byte spans of every chunk of text in order.
func (s *Splitter) Split(text string) []Span {
	if text == "" {
		return nil
	}
	if s.length(text) <= s.cfg.ChunkSize {
		return []Span{{Start: 0, End: len(text)}}
	}
	return s.splitRecursive(text, 0, s.cfg.Separators, nil)
}

// piece is a fragment of the text under split, relative to that text.
type piece struct {
	start  int
	end    int
	length int
}

func (s *Splitter) splitRecursive(text string, base int, separators []string, out []Span) []Span {
	sep, finer, found := chooseSeparator(text, separators)
	if !found {
		return append(out, Span{Start: base, End: base + len(text)})
	}
	fits := make([]piece, 0, 16)
	for _, frag := range splitKeepSeparator(text, sep) {
		frag.length = s.length(text[frag.start:frag.end])
		if frag.length <= s.cfg.ChunkSize {
			fits = append(fits, frag)
			continue
		}
		out = s.merge(fits, base, out)
		fits = fits[:0]
		if len(finer) == 0 {
			out = append(out, Span{Start: base + frag.start, End: base + frag.end})
			continue
		}
		out = s.splitRecursive(text[frag.start:frag.end], base+frag.start, finer, out)
	}
	return s.merge(fits, base, out)
}

// chooseSeparator picks the first separator present in text and the finer ones after it.
func chooseSeparator(text string, separators []string) (string, []string, bool) {
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			return sep, separators[i+1:], true
		}
	}
	return "", nil, false
}

// splitKeepSeparator cuts text after every occurrence of sep, so each fragment
// but the last ends with sep. An empty sep yields one fragment per rune.
func splitKeepSeparator(text, sep string) []piece {
	var frags []piece
	if sep == "" {
		for i := 0; i < len(text); {
			_, size := utf8.DecodeRuneInString(text[i:])
			frags = append(frags, piece{start: i, end: i + size})
			i += size
		}
		return frags
	}
	start := 0
	for {
		idx := strings.Index(text[start:], sep)
		if idx < 0 {
			break
		}
		end := start + idx + len(sep)
		frags = append(frags, piece{start: start, end: end})
		start = end
	}
	if start < len(text) {
		frags = append(frags, piece{start: start, end: len(text)})
	}
	return frags
}
