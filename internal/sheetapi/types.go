// Package sheetapi is a client for the spreadsheet service's GET endpoints.
package sheetapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Envelope is the part of every response the client inspects before decoding the rest.
type Envelope struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
	MS     int64  `json:"ms,omitempty"`
}

// Bounds describes the used area of a sheet.
type Bounds struct {
	SheetID string   `json:"sheetId"`
	LastRow int      `json:"lastRow"`
	LastCol int      `json:"lastCol"`
	Headers []string `json:"headers"`
	MS      int64    `json:"ms,omitempty"`
}

// AddColsResult is returned by the add-cols endpoint.
type AddColsResult struct {
	Message string `json:"message"`
	MS      int64  `json:"ms,omitempty"`
}

// Cell is a single cell read.
type Cell struct {
	Row         int       `json:"row"`
	Col         string    `json:"col"`
	FeatureName string    `json:"featureName"`
	Value       CellValue `json:"value"`
	Type        string    `json:"type"`
	MS          int64     `json:"ms,omitempty"`
}

// WriteResult is returned by set-cell and echoes the value the sheet stored.
type WriteResult struct {
	Row          int       `json:"row"`
	Col          string    `json:"col"`
	WrittenValue CellValue `json:"writtenValue"`
	WrittenType  string    `json:"writtenType"`
	MS           int64     `json:"ms,omitempty"`
}

// Column is a whole column below the header row.
type Column struct {
	Col    string      `json:"col"`
	Header string      `json:"header"`
	Values []CellValue `json:"values"`
	N      int         `json:"n"`
	MS     int64       `json:"ms,omitempty"`
}

// Strings returns the column values as plain strings.
func (c *Column) Strings() []string {
	out := make([]string, len(c.Values))
	for i, v := range c.Values {
		out[i] = string(v)
	}
	return out
}

// CellValue holds any JSON scalar the service returns for a cell, as text.
// null decodes to "".
type CellValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *CellValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = CellValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = CellValue(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported cell value %s", data)
		}
		*v = CellValue(n.String())
	}
	return nil
}
