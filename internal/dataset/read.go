package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultDropPattern matches the index columns a dataframe export leaves
// behind ("Unnamed: 0", "Unnamed: 7", ...).
const DefaultDropPattern = `^Unnamed`

// Spec describes one input file.
type Spec struct {
	// Path to a delimited text file, or to an .xlsx workbook.
	Path string
	// Delimiter separates fields in text files. Zero means ','.
	Delimiter rune
	// Encoding of text files by WHATWG label ("utf-8", "windows-1251", ...).
	// Empty means UTF-8.
	Encoding string
	// Sheet to read from a workbook. Empty means the first sheet.
	Sheet string
}

// IsWorkbook reports whether the spec points at an Excel workbook.
func (s Spec) IsWorkbook() bool {
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// ReadRecords reads the raw rows of a file, header first.
// Header cells are trimmed and a UTF-8 byte order mark is removed.
func ReadRecords(spec Spec) ([][]string, error) {
	var (
		records [][]string
		err     error
	)
	if spec.IsWorkbook() {
		records, err = readSheet(spec)
	} else {
		records, err = readDelimited(spec)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: no header row", ErrLoad, spec.Path)
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return records, nil
}

func readDelimited(spec Spec) ([][]string, error) {
	f, err := os.Open(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer func() { _ = f.Close() }()

	r, err := decodeReader(f, spec.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, spec.Path, err)
	}

	cr := csv.NewReader(r)
	cr.Comma = spec.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ','
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, spec.Path, err)
	}
	return records, nil
}

// decodeReader wraps r so it yields UTF-8.
func decodeReader(r io.Reader, label string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return r, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(r), nil
}

func readSheet(spec Spec) ([][]string, error) {
	f, err := excelize.OpenFile(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer func() { _ = f.Close() }()

	sheet := spec.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s: workbook has no sheets", ErrLoad, spec.Path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: sheet %q: %w", ErrLoad, spec.Path, sheet, err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	// GetRows trims trailing empty cells; pad every row to the header width.
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows, nil
}

// DropGeneratedColumns removes every column whose header is blank or matches
// pattern. It returns the remaining records and the dropped header names.
// The input is not modified.
func DropGeneratedColumns(records [][]string, pattern *regexp.Regexp) ([][]string, []string) {
	if len(records) == 0 {
		return records, nil
	}

	var (
		keep    []int
		dropped []string
	)
	for i, name := range records[0] {
		if strings.TrimSpace(name) == "" || (pattern != nil && pattern.MatchString(name)) {
			dropped = append(dropped, name)
			continue
		}
		keep = append(keep, i)
	}
	if len(dropped) == 0 {
		return records, nil
	}

	out := make([][]string, len(records))
	for r, rec := range records {
		row := make([]string, len(keep))
		for j, i := range keep {
			if i < len(rec) {
				row[j] = rec[i]
			}
		}
		out[r] = row
	}
	return out, dropped
}

// columnIndex maps each required column to its position in header.
func columnIndex(path string, header []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing columns %s", ErrLoad, path, strings.Join(missing, ", "))
	}
	return idx, nil
}
