package chunk

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// LengthFunc measures text in the unit used for ChunkSize and ChunkOverlap.
type LengthFunc func(string) int

// RuneLength counts Unicode code points.
func RuneLength(s string) int {
	return utf8.RuneCountInString(s)
}

var encoders sync.Map // encoding name -> *tiktoken.Tiktoken

// TokenLength returns a LengthFunc counting tiktoken tokens for the named encoding.
func TokenLength(encoding string) (LengthFunc, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	if cached, ok := encoders.Load(encoding); ok {
		return encodeLen(cached.(*tiktoken.Tiktoken)), nil
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, invalid("encoding", "load tiktoken encoding %q: %v", encoding, err)
	}
	actual, _ := encoders.LoadOrStore(encoding, enc)
	return encodeLen(actual.(*tiktoken.Tiktoken)), nil
}

func encodeLen(enc *tiktoken.Tiktoken) LengthFunc {
	return func(s string) int {
		return len(enc.Encode(s, nil, nil))
	}
}

func resolveLength(cfg SplitterConfig) (LengthFunc, error) {
	switch cfg.LengthFunction {
	case "", LengthCharacters:
		return RuneLength, nil
	case LengthTokens:
		return TokenLength(cfg.Encoding)
	default:
		return nil, fmt.Errorf("%w: unknown length function %q", ErrInvalidConfig, cfg.LengthFunction)
	}
}
