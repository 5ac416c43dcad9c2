// Package ingest loads financial-statement documents from JSON. It accepts the
// upload envelope {"data": {...}} as well as a bare {"financials": [...]}.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/underwrite-cli/internal/model"
)

// MaxDocumentBytes bounds how much of a single document is read.
const MaxDocumentBytes = 32 << 20

// ErrTooLarge is returned when a document exceeds MaxDocumentBytes.
var ErrTooLarge = errors.New("document too large")

// ParseError reports a document that could not be decoded. It is surfaced
// before any rule runs.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("ingest: %v", e.Err)
	}
	return fmt.Sprintf("ingest: %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if err (or any error in its chain) is a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Decode reads one document from r. A UTF-8 or UTF-16 byte-order mark is
// honored and stripped.
func Decode(r io.Reader) (*model.FinancialDocument, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes a document already held in memory.
func DecodeBytes(data []byte) (*model.FinancialDocument, error) {
	data, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &ParseError{Err: errors.New("empty document")}
	}

	var top map[string]json.RawMessage
	if err := decodeStrict(data, &top); err != nil {
		return nil, &ParseError{Err: err}
	}

	body := data
	if raw, ok := top["data"]; ok {
		body = raw
	} else if _, ok := top["financials"]; !ok {
		return nil, &ParseError{Err: errors.New(`expected a "data" or "financials" key`)}
	}

	var doc model.FinancialDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &doc, nil
}

// LoadFile reads and decodes the document at path.
func LoadFile(path string) (*model.FinancialDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	data, err := readAll(f)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	doc, err := DecodeBytes(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = path
		}
		return nil, err
	}
	return doc, nil
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDocumentBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// decodeStrict decodes a single JSON value and rejects trailing content.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected content after document")
	}
	return nil
}
