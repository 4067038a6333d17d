package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const formatText = "txt"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextAdapter loads a plain text file as a single record.
type TextAdapter struct {
	opts Options
}

func NewTextAdapter(opts Options) Adapter {
	return &TextAdapter{opts: opts.withDefaults()}
}

func (a *TextAdapter) Load(ctx context.Context, path string) ([]Record, error) {
	data, err := readFile(ctx, a.opts, path, formatText)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 && !isTextual(data) {
		return nil, failedf(path, formatText, "binary content detected (%s)", detectMIME(data))
	}
	text, charsetName, err := decodeText(data)
	if err != nil {
		return nil, failed(path, formatText, err)
	}
	record := newRecord(path, formatText, text)
	record.Metadata[MetaEncoding] = charsetName
	return []Record{record}, nil
}

// decodeText returns data as UTF-8, transcoding other encodings detected from BOMs or content.
func decodeText(data []byte) (string, string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		data = data[len(utf8BOM):]
		if !utf8.Valid(data) {
			return "", "", fmt.Errorf("invalid utf-8 after byte order mark")
		}
		return normalizeNewlines(string(data)), "utf-8", nil
	}
	var (
		decoder *encoding.Decoder
		name    string
	)
	switch {
	case hasUTF16BOM(data):
		endianness, label := unicode.LittleEndian, "utf-16le"
		if data[0] == 0xFE {
			endianness, label = unicode.BigEndian, "utf-16be"
		}
		decoder, name = unicode.UTF16(endianness, unicode.ExpectBOM).NewDecoder(), label
	case utf8.Valid(data):
		return normalizeNewlines(string(data)), "utf-8", nil
	default:
		var enc encoding.Encoding
		enc, name, _ = charset.DetermineEncoding(data, "text/plain")
		decoder = enc.NewDecoder()
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), decoder))
	if err != nil {
		return "", "", fmt.Errorf("transcode from %s: %w", name, err)
	}
	if !utf8.Valid(decoded) {
		return "", "", fmt.Errorf("transcoded result invalid utf-8")
	}
	return normalizeNewlines(string(decoded)), name, nil
}

func hasUTF16BOM(data []byte) bool {
	return len(data) >= 2 && ((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF))
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
