package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/sells-group/underwrite-cli/internal/model"
)

const bareDoc = `{"financials":[{"nature":"STANDALONE","pnl":{"lineItems":{"net_revenue":60000000}},"bs":{"lineItems":{"longTermBorrowings":1000000}}}]}`

func TestDecode_Bare(t *testing.T) {
	doc, err := Decode(strings.NewReader(bareDoc))
	require.NoError(t, err)
	require.Len(t, doc.Financials, 1)
	assert.Equal(t, model.NatureStandalone, doc.Financials[0].Nature)
	assert.Equal(t, 60_000_000.0, doc.Financials[0].PnL.LineItems[model.ItemNetRevenue])
}

func TestDecode_EnvelopeMatchesBare(t *testing.T) {
	bare, err := DecodeBytes([]byte(bareDoc))
	require.NoError(t, err)

	wrapped, err := DecodeBytes([]byte(`{"data":` + bareDoc + `,"meta":{"source":"upload"}}`))
	require.NoError(t, err)

	assert.Equal(t, bare, wrapped)
}

func TestDecode_EnvelopeWithoutFinancials(t *testing.T) {
	doc, err := DecodeBytes([]byte(`{"data":{}}`))
	require.NoError(t, err, "shape problems inside data are for the rules to report")
	assert.Nil(t, doc.Financials)
}

func TestDecode_LenientLineItems(t *testing.T) {
	doc, err := DecodeBytes([]byte(`{"financials":[{"pnl":{"lineItems":{"net_revenue":"12","depreciation":null,"interest":4,"notes":{"a":1},"flag":true}}}]}`))
	require.NoError(t, err)

	assert.Equal(t, model.LineItems{"interest": 4}, doc.Financials[0].PnL.LineItems)
	assert.Nil(t, doc.Financials[0].BS)
}

func TestDecode_ByteOrderMarks(t *testing.T) {
	t.Run("utf8 bom", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, bareDoc...)
		doc, err := DecodeBytes(data)
		require.NoError(t, err)
		assert.Len(t, doc.Financials, 1)
	})

	t.Run("utf16 le bom", func(t *testing.T) {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		data, err := enc.Bytes([]byte(bareDoc))
		require.NoError(t, err)

		doc, err := DecodeBytes(data)
		require.NoError(t, err)
		assert.Len(t, doc.Financials, 1)
	})
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{name: "empty", in: "", msg: "empty document"},
		{name: "whitespace", in: "  \n\t", msg: "empty document"},
		{name: "not json", in: "financials: []", msg: "invalid character"},
		{name: "array", in: `[1,2]`, msg: "cannot unmarshal"},
		{name: "no known key", in: `{"foo":1}`, msg: `"data" or "financials"`},
		{name: "null", in: `null`, msg: `"data" or "financials"`},
		{name: "trailing", in: bareDoc + `{}`, msg: "unexpected content"},
		{name: "bad financials type", in: `{"financials":{"nature":"STANDALONE"}}`, msg: "cannot unmarshal"},
		{name: "bad line items type", in: `{"financials":[{"pnl":{"lineItems":[1]}}]}`, msg: "line items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes([]byte(tt.in))
			require.Error(t, err)
			assert.True(t, IsParseError(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDecode_TooLarge(t *testing.T) {
	r := bytes.NewReader(make([]byte, MaxDocumentBytes+1))

	_, err := Decode(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.True(t, IsParseError(err))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data":`+bareDoc+`}`), 0644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.Financials, 1)
}

func TestLoadFile_ParseErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"financials":`), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, path, pe.Source)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.False(t, IsParseError(err))
	assert.Contains(t, err.Error(), "ingest: open")
}
