package controller

import (
	"context"
	"time"

	"github.com/klytics/sheetkit/internal/sheetapi"
	"github.com/klytics/sheetkit/internal/workbook"
)

// Service is the spreadsheet backend the controller drives.
// *sheetapi.Client and *workbook.Workbook implement it.
type Service interface {
	Bounds(ctx context.Context, sheetID string) (*sheetapi.Bounds, error)
	AddCols(ctx context.Context, sheetID string) (*sheetapi.AddColsResult, error)
	Cell(ctx context.Context, sheetID string, row int, col string) (*sheetapi.Cell, error)
	SetCell(ctx context.Context, sheetID string, row int, col, value string) (*sheetapi.WriteResult, error)
	Column(ctx context.Context, sheetID, col string) (*sheetapi.Column, error)
}

// Backend selects where sheet data comes from.
type Backend struct {
	ServerURL string
	Workbook  string // path to a local .xlsx; takes precedence over ServerURL
	Timeout   time.Duration
}

// Local reports whether the backend reads a local workbook.
func (b Backend) Local() bool { return b.Workbook != "" }

// Open returns the Service for b.
func (b Backend) Open() (Service, error) {
	if b.Local() {
		wb, err := workbook.Open(b.Workbook)
		if err != nil {
			return nil, err
		}
		return wb, nil
	}
	return sheetapi.New(b.ServerURL, b.Timeout), nil
}
