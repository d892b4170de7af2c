// Package workbook serves the spreadsheet service's read endpoints from a local .xlsx file.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/sheetkit/internal/sheetapi"
	"github.com/klytics/sheetkit/internal/sheetid"
)

// ErrReadOnly is returned by the write endpoints; local workbooks are only read.
var ErrReadOnly = errors.New("local workbooks are read-only — point --server at the sheet service to write")

// Workbook answers bounds/cell/column requests from an .xlsx file.
// The sheet ID selects a worksheet by name; empty selects the first one.
// The file is re-read on every request so edits on disk are picked up.
type Workbook struct {
	Path string

	mu sync.Mutex
}

// Open checks that path is a readable workbook.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s — check that the path is correct", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return nil, fmt.Errorf("expected an .xlsx file, got %q", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s — is this a valid .xlsx file? %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("could not close %s: %w", path, err)
	}
	return &Workbook{Path: path}, nil
}

// rows loads the named sheet, or the first sheet when name is empty.
func (w *Workbook) rows(name string) (_ [][]string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.Path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", w.Path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close %s: %w", w.Path, cerr)
		}
	}()

	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s has no sheets", w.Path)
		}
		name = sheets[0]
	} else if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found — available sheets: %v", name, f.GetSheetList())
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", name, err)
	}
	return rows, nil
}

// Bounds reports the last row holding any non-blank cell and the header width.
func (w *Workbook) Bounds(_ context.Context, sheetID string) (*sheetapi.Bounds, error) {
	start := time.Now()
	rows, err := w.rows(sheetID)
	if err != nil {
		return nil, err
	}

	lastRow := 0
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				lastRow = i + 1
				break
			}
		}
	}

	var headers []string
	if len(rows) > 0 {
		headers = append(headers, rows[0]...)
	}
	return &sheetapi.Bounds{
		SheetID: sheetID,
		LastRow: lastRow,
		LastCol: len(headers),
		Headers: headers,
		MS:      time.Since(start).Milliseconds(),
	}, nil
}

// Cell reads one cell and its header.
func (w *Workbook) Cell(_ context.Context, sheetID string, row int, col string) (*sheetapi.Cell, error) {
	start := time.Now()
	if err := sheetid.ValidateRow(row); err != nil {
		return nil, err
	}
	c, err := sheetid.Column(col)
	if err != nil {
		return nil, err
	}
	rows, err := w.rows(sheetID)
	if err != nil {
		return nil, err
	}

	idx := sheetid.Index(c) - 1
	feature := at(rows, 0, idx)
	if feature == "" {
		feature = "(no header)"
	}
	value := at(rows, row-1, idx)
	return &sheetapi.Cell{
		Row:         row,
		Col:         c,
		FeatureName: feature,
		Value:       sheetapi.CellValue(value),
		Type:        Classify(value),
		MS:          time.Since(start).Milliseconds(),
	}, nil
}

// Column returns the values below the header row.
func (w *Workbook) Column(_ context.Context, sheetID, col string) (*sheetapi.Column, error) {
	start := time.Now()
	c, err := sheetid.Column(col)
	if err != nil {
		return nil, err
	}
	rows, err := w.rows(sheetID)
	if err != nil {
		return nil, err
	}

	idx := sheetid.Index(c) - 1
	out := &sheetapi.Column{Col: c, Header: c}
	if len(rows) == 0 {
		return out, nil
	}
	if h := at(rows, 0, idx); idx < len(rows[0]) {
		out.Header = h
	}
	for r := 1; r < len(rows); r++ {
		out.Values = append(out.Values, sheetapi.CellValue(at(rows, r, idx)))
	}
	out.N = len(out.Values)
	out.MS = time.Since(start).Milliseconds()
	return out, nil
}

// AddCols is not supported on local workbooks.
func (w *Workbook) AddCols(context.Context, string) (*sheetapi.AddColsResult, error) {
	return nil, ErrReadOnly
}

// SetCell is not supported on local workbooks.
func (w *Workbook) SetCell(context.Context, string, int, string, string) (*sheetapi.WriteResult, error) {
	return nil, ErrReadOnly
}

func at(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) || c < 0 || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

// Classify names the type a cell's text would be stored as:
// blank, boolean, number or string.
func Classify(v string) string {
	s := strings.TrimSpace(v)
	switch {
	case s == "":
		return "blank"
	case strings.EqualFold(s, "true") || strings.EqualFold(s, "false"):
		return "boolean"
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return "number"
	}
	return "string"
}
