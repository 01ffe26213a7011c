package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/kailas-cloud/teammaker/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// candidate delimiters in preference order
var delimiters = []rune{',', ';', '\t'}

// ParseOptions controls how raw table bytes are decoded and split.
type ParseOptions struct {
	// Charset is an IANA charset name. Empty means UTF-8.
	Charset string
	// Delimiter is the field separator. 0 sniffs it from the header line.
	Delimiter rune
	// MaxRows limits the data rows accepted; 0 means unlimited.
	MaxRows int
}

// Parse decodes raw delimited text into a Table.
func Parse(data []byte, opts ParseOptions) (Table, error) {
	text, err := decode(data, opts.Charset)
	if err != nil {
		return Table{}, err
	}

	first, _, _ := bytes.Cut(text, []byte{'\n'})
	first = bytes.TrimRight(first, "\r")
	if len(bytes.TrimSpace(first)) == 0 {
		return Table{}, fmt.Errorf("%w: header line is empty", domain.ErrMalformedInput)
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(string(first))
	}
	if !strings.ContainsRune(string(first), delim) {
		return Table{}, fmt.Errorf("%w: header line has no %q delimiter", domain.ErrMalformedInput, delim)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return Table{}, fmt.Errorf("%w: read header: %w", domain.ErrMalformedInput, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.Trim(h, "\r\n"))
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
		}
		if len(rec) != len(header) {
			line, _ := r.FieldPos(0)
			return Table{}, fmt.Errorf("%w: line %d has %d fields, header has %d",
				domain.ErrMalformedInput, line, len(rec), len(header))
		}
		records = append(records, rec)
		if opts.MaxRows > 0 && len(records) > opts.MaxRows {
			return Table{}, fmt.Errorf("%w: more than %d rows", domain.ErrMalformedInput, opts.MaxRows)
		}
	}

	return New(header, records)
}

// decode converts data in the declared charset to validated UTF-8.
func decode(data []byte, charset string) ([]byte, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	if name == "" || name == "utf-8" || name == "utf8" {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: invalid UTF-8 byte sequence", domain.ErrEncoding)
		}
		return data, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: unsupported charset %q", domain.ErrEncoding, charset)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrEncoding, name, err)
	}
	// x/text decoders substitute U+FFFD for bytes the charset does not define.
	if bytes.ContainsRune(out, utf8.RuneError) || !utf8.Valid(out) {
		return nil, fmt.Errorf("%w: invalid byte sequence for %s", domain.ErrEncoding, name)
	}
	return bytes.TrimPrefix(out, utf8BOM), nil
}

// ParseDelimiter accepts a single character or the name "tab".
// Empty means the delimiter is sniffed from the header line.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("delimiter %q must be a single character", s)
	}
	return r, nil
}

func sniffDelimiter(header string) rune {
	for _, d := range delimiters {
		if strings.ContainsRune(header, d) {
			return d
		}
	}
	return ','
}
