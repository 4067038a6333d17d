package extract

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	formatDOC = "doc"

	streamWordDocument = "WordDocument"
	streamTable0       = "0Table"
	streamTable1       = "1Table"

	fibIdent          = 0xA5EC
	fibFlagsOffset    = 0x0A
	fibFlagEncrypted  = 0x0100
	fibFlagWhichTable = 0x0200
	fibBaseSize       = 32
	fibClxPairIndex   = 33
	fibCcpTextIndex   = 3
	pieceCompressed   = 0x40000000
	clxPrc            = 0x01
	clxPcdt           = 0x02
	pcdSize           = 8
	cpSize            = 4
)

var errNotWordBinary = errors.New("not a Word 97-2003 binary document")

// DOCAdapter loads legacy Word documents. OOXML packages saved with a .doc
// extension are delegated to the DOCX reader.
type DOCAdapter struct {
	opts Options
}

func NewDOCAdapter(opts Options) Adapter {
	return &DOCAdapter{opts: opts.withDefaults()}
}

func (a *DOCAdapter) Load(ctx context.Context, path string) ([]Record, error) {
	data, err := readFile(ctx, a.opts, path, formatDOC)
	if err != nil {
		return nil, err
	}
	var text string
	switch {
	case isZip(data):
		text, err = docxText(ctx, data)
	case isOLE2(data):
		text, err = wordBinaryText(data)
	default:
		err = fmt.Errorf("%w: detected %s", errNotWordBinary, detectMIME(data))
	}
	if err != nil {
		return nil, failed(path, formatDOC, err)
	}
	return []Record{newRecord(path, formatDOC, text)}, nil
}

// wordBinaryText reads the OLE2 container and decodes the main document text.
func wordBinaryText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt compound file: %v", r)
		}
	}()
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open compound file: %w", err)
	}
	streams := make(map[string][]byte, 3)
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if len(entry.Path) > 0 {
			continue
		}
		switch entry.Name {
		case streamWordDocument, streamTable0, streamTable1:
			buf, err := io.ReadAll(entry)
			if err != nil {
				return "", fmt.Errorf("read stream %s: %w", entry.Name, err)
			}
			streams[entry.Name] = buf
		}
	}
	return decodeWordStreams(streams[streamWordDocument], streams[streamTable0], streams[streamTable1])
}

type fib struct {
	encrypted bool
	useTable1 bool
	ccpText   uint32
	fcClx     uint32
	lcbClx    uint32
}

func parseFIB(wordDoc []byte) (fib, error) {
	if len(wordDoc) < fibBaseSize+2 {
		return fib{}, fmt.Errorf("%w: WordDocument stream too short", errNotWordBinary)
	}
	if binary.LittleEndian.Uint16(wordDoc) != fibIdent {
		return fib{}, fmt.Errorf("%w: bad FIB identifier", errNotWordBinary)
	}
	flags := binary.LittleEndian.Uint16(wordDoc[fibFlagsOffset:])
	out := fib{
		encrypted: flags&fibFlagEncrypted != 0,
		useTable1: flags&fibFlagWhichTable != 0,
	}
	pos := fibBaseSize
	csw := int(binary.LittleEndian.Uint16(wordDoc[pos:]))
	pos += 2 + csw*2
	if pos+2 > len(wordDoc) {
		return fib{}, fmt.Errorf("FIB truncated in fibRgW")
	}
	cslw := int(binary.LittleEndian.Uint16(wordDoc[pos:]))
	lwStart := pos + 2
	pos = lwStart + cslw*4
	if pos+2 > len(wordDoc) {
		return fib{}, fmt.Errorf("FIB truncated in fibRgLw")
	}
	if cslw > fibCcpTextIndex {
		out.ccpText = binary.LittleEndian.Uint32(wordDoc[lwStart+fibCcpTextIndex*4:])
	}
	pairs := int(binary.LittleEndian.Uint16(wordDoc[pos:]))
	blob := pos + 2
	if pairs <= fibClxPairIndex || blob+(fibClxPairIndex+1)*8 > len(wordDoc) {
		return fib{}, fmt.Errorf("FIB has no piece table location")
	}
	clx := blob + fibClxPairIndex*8
	out.fcClx = binary.LittleEndian.Uint32(wordDoc[clx:])
	out.lcbClx = binary.LittleEndian.Uint32(wordDoc[clx+4:])
	return out, nil
}

func decodeWordStreams(wordDoc, table0, table1 []byte) (string, error) {
	if wordDoc == nil {
		return "", fmt.Errorf("%w: missing %s stream", errNotWordBinary, streamWordDocument)
	}
	header, err := parseFIB(wordDoc)
	if err != nil {
		return "", err
	}
	if header.encrypted {
		return "", fmt.Errorf("document is encrypted")
	}
	table, name := table0, streamTable0
	if header.useTable1 {
		table, name = table1, streamTable1
	}
	if table == nil {
		return "", fmt.Errorf("missing %s stream", name)
	}
	end := uint64(header.fcClx) + uint64(header.lcbClx)
	if header.lcbClx == 0 || end > uint64(len(table)) {
		return "", fmt.Errorf("piece table out of range")
	}
	plc, err := pieceTable(table[header.fcClx:end])
	if err != nil {
		return "", err
	}
	raw, err := decodePieces(wordDoc, plc, header.ccpText)
	if err != nil {
		return "", err
	}
	return cleanWordText(raw), nil
}

// pieceTable skips Prc entries and returns the PlcPcd payload of the Pcdt.
func pieceTable(clx []byte) ([]byte, error) {
	for i := 0; i < len(clx); {
		switch clx[i] {
		case clxPrc:
			if i+3 > len(clx) {
				return nil, fmt.Errorf("truncated Prc")
			}
			cb := int(int16(binary.LittleEndian.Uint16(clx[i+1:])))
			if cb < 0 {
				return nil, fmt.Errorf("negative Prc size")
			}
			i += 3 + cb
		case clxPcdt:
			if i+5 > len(clx) {
				return nil, fmt.Errorf("truncated Pcdt")
			}
			lcb := int(binary.LittleEndian.Uint32(clx[i+1:]))
			if i+5+lcb > len(clx) {
				return nil, fmt.Errorf("PlcPcd exceeds CLX")
			}
			return clx[i+5 : i+5+lcb], nil
		default:
			return nil, fmt.Errorf("unexpected CLX entry 0x%02x", clx[i])
		}
	}
	return nil, fmt.Errorf("CLX has no piece table")
}

// decodePieces concatenates the text of every piece up to ccpText characters.
// A zero ccpText keeps all pieces.
func decodePieces(wordDoc, plc []byte, ccpText uint32) (string, error) {
	if (len(plc)-cpSize)%(cpSize+pcdSize) != 0 || len(plc) < cpSize {
		return "", fmt.Errorf("malformed PlcPcd of %d bytes", len(plc))
	}
	n := (len(plc) - cpSize) / (cpSize + pcdSize)
	cp := func(i int) uint32 { return binary.LittleEndian.Uint32(plc[i*cpSize:]) }
	pcds := plc[(n+1)*cpSize:]
	cp1252 := charmap.Windows1252.NewDecoder()
	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	var b strings.Builder
	for k := 0; k < n; k++ {
		start, stop := cp(k), cp(k+1)
		if stop < start {
			return "", fmt.Errorf("piece %d has inverted bounds", k)
		}
		if ccpText > 0 {
			if start >= ccpText {
				break
			}
			stop = min(stop, ccpText)
		}
		count := uint64(stop - start)
		fc := binary.LittleEndian.Uint32(pcds[k*pcdSize+2:])
		if fc&pieceCompressed != 0 {
			offset := uint64(fc&^pieceCompressed) / 2
			if offset+count > uint64(len(wordDoc)) {
				return "", fmt.Errorf("piece %d out of range", k)
			}
			text, err := cp1252.Bytes(wordDoc[offset : offset+count])
			if err != nil {
				return "", fmt.Errorf("decode piece %d: %w", k, err)
			}
			b.Write(text)
			continue
		}
		offset := uint64(fc)
		if offset+2*count > uint64(len(wordDoc)) {
			return "", fmt.Errorf("piece %d out of range", k)
		}
		text, err := utf16.Bytes(wordDoc[offset : offset+2*count])
		if err != nil {
			return "", fmt.Errorf("decode piece %d: %w", k, err)
		}
		b.Write(text)
	}
	return b.String(), nil
}

// cleanWordText maps Word control characters to plain text and drops field codes.
func cleanWordText(raw string) string {
	var (
		b     strings.Builder
		field []bool // true while inside a field instruction
	)
	inInstruction := func() bool {
		for _, instr := range field {
			if instr {
				return true
			}
		}
		return false
	}
	for _, r := range raw {
		switch r {
		case 0x13:
			field = append(field, true)
			continue
		case 0x14:
			if len(field) > 0 {
				field[len(field)-1] = false
			}
			continue
		case 0x15:
			if len(field) > 0 {
				field = field[:len(field)-1]
			}
			continue
		}
		if inInstruction() {
			continue
		}
		switch {
		case r == '\r' || r == 0x0B || r == 0x0C:
			b.WriteByte('\n')
		case r == 0x07:
			b.WriteByte('\t')
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r < 0x20:
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), "\n\t ")
}
