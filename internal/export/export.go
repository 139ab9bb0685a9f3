// Package export writes displayed passenger rows to spreadsheet files.
// Measures are written as numbers; a missing measure is an empty cell.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written to workbooks.
const SheetName = "Passengers"

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatXLSX, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want xlsx or csv)", name)
	}
}

// ContentType returns the MIME type for downloads.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Write encodes rows in the given format.
func Write(w io.Writer, format Format, rows []dataset.PassengerRecord) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile writes rows to path, choosing the format by extension.
func WriteFile(path string, rows []dataset.PassengerRecord) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return WriteFileAs(path, format, rows)
}

// WriteFileAs writes rows to path in the given format, whatever the extension.
func WriteFileAs(path string, format Format, rows []dataset.PassengerRecord) error {
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, format, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteXLSX writes a workbook with a single Passengers sheet.
func WriteXLSX(w io.Writer, rows []dataset.PassengerRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header := make([]any, len(dataset.PassengerColumns))
	for i, name := range dataset.PassengerColumns {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.Line, r.NameOfStation, r.Year, r.Quarter, measure(r.IncomingPassengers, r.HasIncoming()), measure(r.OutgoingPassengers, r.HasOutgoing())}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func measure(v float64, ok bool) any {
	if !ok {
		return nil
	}
	return v
}

// WriteCSV writes a comma-separated file with a header row.
func WriteCSV(w io.Writer, rows []dataset.PassengerRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dataset.PassengerColumns); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Line,
			r.NameOfStation,
			strconv.Itoa(r.Year),
			r.Quarter,
			formatMeasure(r.IncomingPassengers, r.HasIncoming()),
			formatMeasure(r.OutgoingPassengers, r.HasOutgoing()),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatMeasure(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
