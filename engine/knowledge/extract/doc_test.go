package extract

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

type testPiece struct {
	text       string
	compressed bool
}

type wordFixture struct {
	pieces    []testPiece
	useTable1 bool
	encrypted bool
	ccpText   uint32
}

const (
	fixtureFIBEnd    = 898
	fixtureTextStart = 1024
	fixtureClxOffset = 16
)

// build lays out a minimal Word 97 FIB, the piece text and a CLX table stream.
func (f wordFixture) build(t *testing.T) ([]byte, []byte) {
	t.Helper()
	word := make([]byte, fixtureTextStart)
	binary.LittleEndian.PutUint16(word[0:], fibIdent)
	var flags uint16
	if f.useTable1 {
		flags |= fibFlagWhichTable
	}
	if f.encrypted {
		flags |= fibFlagEncrypted
	}
	binary.LittleEndian.PutUint16(word[fibFlagsOffset:], flags)
	binary.LittleEndian.PutUint16(word[32:], 14)
	binary.LittleEndian.PutUint16(word[62:], 22)
	binary.LittleEndian.PutUint16(word[152:], 93)
	require.Equal(t, fixtureFIBEnd, 154+93*8)

	cps := []uint32{0}
	fcs := make([]uint32, 0, len(f.pieces))
	total := uint32(0)
	for _, p := range f.pieces {
		offset := uint32(len(word))
		if p.compressed {
			encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(p.text))
			require.NoError(t, err)
			word = append(word, encoded...)
			fcs = append(fcs, (offset*2)|pieceCompressed)
			total += uint32(len(encoded))
		} else {
			encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(p.text))
			require.NoError(t, err)
			word = append(word, encoded...)
			fcs = append(fcs, offset)
			total += uint32(len(encoded) / 2)
		}
		cps = append(cps, total)
	}
	ccp := f.ccpText
	if ccp == 0 {
		ccp = total
	}
	binary.LittleEndian.PutUint32(word[64+fibCcpTextIndex*4:], ccp)

	plc := make([]byte, 0, len(cps)*cpSize+len(fcs)*pcdSize)
	for _, cp := range cps {
		plc = binary.LittleEndian.AppendUint32(plc, cp)
	}
	for _, fc := range fcs {
		pcd := make([]byte, pcdSize)
		binary.LittleEndian.PutUint32(pcd[2:], fc)
		plc = append(plc, pcd...)
	}
	table := make([]byte, fixtureClxOffset)
	table = append(table, clxPrc, 2, 0, 0xAA, 0xBB)
	table = append(table, clxPcdt)
	table = binary.LittleEndian.AppendUint32(table, uint32(len(plc)))
	table = append(table, plc...)

	clx := 154 + fibClxPairIndex*8
	binary.LittleEndian.PutUint32(word[clx:], fixtureClxOffset)
	binary.LittleEndian.PutUint32(word[clx+4:], uint32(len(table)-fixtureClxOffset))
	return word, table
}

func TestDecodeWordStreams(t *testing.T) {
	t.Run("Should decode compressed and unicode pieces in order", func(t *testing.T) {
		word, table := wordFixture{pieces: []testPiece{
			{text: "Café menu\r", compressed: true},
			{text: "Żółw – turtle\r"},
		}}.build(t)

		text, err := decodeWordStreams(word, table, nil)

		require.NoError(t, err)
		assert.Equal(t, "Café menu\nŻółw – turtle", text)
	})

	t.Run("Should map cell marks and drop field instructions", func(t *testing.T) {
		word, table := wordFixture{pieces: []testPiece{
			{text: "A\x07B\x07\x07\rPage \x13 PAGE \\* MERGEFORMAT \x143\x15 of 9\x0bnext\x01\r", compressed: true},
		}}.build(t)

		text, err := decodeWordStreams(word, table, nil)

		require.NoError(t, err)
		assert.Equal(t, "A\tB\t\t\nPage 3 of 9\nnext", text)
	})

	t.Run("Should stop at the end of the main document text", func(t *testing.T) {
		word, table := wordFixture{
			pieces:  []testPiece{{text: "Body text\r", compressed: true}, {text: "footnote", compressed: true}},
			ccpText: 10,
		}.build(t)

		text, err := decodeWordStreams(word, table, nil)

		require.NoError(t, err)
		assert.Equal(t, "Body text", text)
	})

	t.Run("Should read the table stream selected by the FIB", func(t *testing.T) {
		word, table := wordFixture{pieces: []testPiece{{text: "from 1Table", compressed: true}}, useTable1: true}.build(t)

		text, err := decodeWordStreams(word, nil, table)
		require.NoError(t, err)
		assert.Equal(t, "from 1Table", text)

		_, err = decodeWordStreams(word, table, nil)
		assert.ErrorContains(t, err, "missing 1Table")
	})

	t.Run("Should reject encrypted documents", func(t *testing.T) {
		word, table := wordFixture{pieces: []testPiece{{text: "secret", compressed: true}}, encrypted: true}.build(t)
		_, err := decodeWordStreams(word, table, nil)
		assert.ErrorContains(t, err, "encrypted")
	})

	t.Run("Should reject streams without a Word FIB", func(t *testing.T) {
		_, err := decodeWordStreams(make([]byte, 64), nil, nil)
		assert.ErrorIs(t, err, errNotWordBinary)
		_, err = decodeWordStreams(nil, nil, nil)
		assert.ErrorIs(t, err, errNotWordBinary)
	})

	t.Run("Should reject a piece table pointing past the stream", func(t *testing.T) {
		word, table := wordFixture{pieces: []testPiece{{text: "short", compressed: true}}}.build(t)
		_, err := decodeWordStreams(word[:fixtureTextStart+2], table, nil)
		assert.ErrorContains(t, err, "out of range")
	})
}

func TestCleanWordText(t *testing.T) {
	t.Run("Should handle nested fields", func(t *testing.T) {
		raw := "x\x13 IF \x13 PAGE \x141\x15 = 1 \x14yes\x15z"
		assert.Equal(t, "xyesz", cleanWordText(raw))
	})
}

func TestDOCAdapter(t *testing.T) {
	t.Run("Should read OOXML content saved with a .doc extension", func(t *testing.T) {
		data := buildDOCX(t, map[string]string{"word/document.xml": docxBody})
		opts := memOptions(t, map[string][]byte{"/renamed.doc": data})

		records, err := NewDOCAdapter(opts).Load(t.Context(), "/renamed.doc")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Contains(t, records[0].Text, "Quarterly report")
		assert.Equal(t, "doc", records[0].Metadata[MetaFormat])
	})

	t.Run("Should reject files that are not Word documents", func(t *testing.T) {
		opts := memOptions(t, map[string][]byte{"/note.doc": []byte("just some text")})
		_, err := NewDOCAdapter(opts).Load(t.Context(), "/note.doc")
		assert.ErrorIs(t, err, ErrExtractionFailed)
		assert.ErrorIs(t, err, errNotWordBinary)
		assert.ErrorContains(t, err, "text/plain")
	})

	t.Run("Should fail on a corrupt compound file", func(t *testing.T) {
		data := append(append([]byte{}, oleSignature...), make([]byte, 600)...)
		opts := memOptions(t, map[string][]byte{"/corrupt.doc": data})
		_, err := NewDOCAdapter(opts).Load(t.Context(), "/corrupt.doc")
		assert.ErrorIs(t, err, ErrExtractionFailed)
	})
}
