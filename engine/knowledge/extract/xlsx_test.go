package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T) []byte {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close()
	require.NoError(t, book.SetCellValue("Sheet1", "A1", "Part"))
	require.NoError(t, book.SetCellValue("Sheet1", "B1", "Qty"))
	require.NoError(t, book.SetCellValue("Sheet1", "A2", "Bolt"))
	require.NoError(t, book.SetCellValue("Sheet1", "B2", 10))
	require.NoError(t, book.SetCellValue("Sheet1", "A4", "Nut"))
	_, err := book.NewSheet("Empty")
	require.NoError(t, err)
	_, err = book.NewSheet("Totals")
	require.NoError(t, err)
	require.NoError(t, book.SetCellValue("Totals", "B1", "42"))
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestXLSXAdapter(t *testing.T) {
	t.Run("Should emit one record per non-empty sheet", func(t *testing.T) {
		opts := memOptions(t, map[string][]byte{"/stock.xlsx": buildXLSX(t)})

		records, err := NewXLSXAdapter(opts).Load(t.Context(), "/stock.xlsx")

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Part\tQty\nBolt\t10\nNut", records[0].Text)
		assert.Equal(t, "Sheet1", records[0].Metadata[MetaSheet])
		assert.Equal(t, 0, records[0].Metadata[MetaSheetIndex])
		assert.Equal(t, "\t42", records[1].Text)
		assert.Equal(t, "Totals", records[1].Metadata[MetaSheet])
		assert.Equal(t, 2, records[1].Metadata[MetaSheetIndex])
		assert.Equal(t, "xlsx", records[1].Metadata[MetaFormat])
		assert.Equal(t, "/stock.xlsx", records[1].Metadata[MetaSource])
	})

	t.Run("Should fail on input that is not a workbook", func(t *testing.T) {
		opts := memOptions(t, map[string][]byte{"/bad.xlsx": []byte("plain text")})
		_, err := NewXLSXAdapter(opts).Load(t.Context(), "/bad.xlsx")
		var extractErr *ExtractionError
		require.ErrorAs(t, err, &extractErr)
		assert.Equal(t, "xlsx", extractErr.Format)
	})
}

func TestJoinRows(t *testing.T) {
	t.Run("Should trim trailing empty cells and skip blank rows", func(t *testing.T) {
		rows := [][]string{{"a", "b", "", " "}, {}, {"", " "}, {"", "c"}}
		assert.Equal(t, "a\tb\n\tc", joinRows(rows))
	})
}

func TestXLSAdapter(t *testing.T) {
	t.Run("Should reject files without an OLE2 header", func(t *testing.T) {
		opts := memOptions(t, map[string][]byte{"/sheet.xls": buildXLSX(t)})
		_, err := NewXLSAdapter(opts).Load(t.Context(), "/sheet.xls")
		assert.ErrorIs(t, err, ErrExtractionFailed)
		assert.ErrorContains(t, err, "not an OLE2 workbook")
	})
}
