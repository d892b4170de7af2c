package sheetapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is where the service listens when run locally.
const DefaultBaseURL = "http://localhost:8000"

// APIError is returned when the service answers with ok=false or a non-2xx status.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("%s: service returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// Client talks to the spreadsheet service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client for baseURL. A zero timeout leaves requests bounded only by ctx.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Bounds returns the used extent and header row of a sheet.
func (c *Client) Bounds(ctx context.Context, sheetID string) (*Bounds, error) {
	var out Bounds
	if err := c.get(ctx, "bounds", url.Values{"sheet_id": {sheetID}}, &out); err != nil {
		return nil, err
	}
	out.SheetID = sheetID
	return &out, nil
}

// AddCols asks the service to write the derived sum column.
func (c *Client) AddCols(ctx context.Context, sheetID string) (*AddColsResult, error) {
	var out AddColsResult
	if err := c.get(ctx, "add-cols", url.Values{"sheet_id": {sheetID}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cell reads a single cell.
func (c *Client) Cell(ctx context.Context, sheetID string, row int, col string) (*Cell, error) {
	params := url.Values{
		"sheet_id": {sheetID},
		"row":      {strconv.Itoa(row)},
		"col":      {col},
	}
	var out Cell
	if err := c.get(ctx, "cell", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetCell writes value to a single cell. The service decides the stored type.
func (c *Client) SetCell(ctx context.Context, sheetID string, row int, col, value string) (*WriteResult, error) {
	params := url.Values{
		"sheet_id": {sheetID},
		"row":      {strconv.Itoa(row)},
		"col":      {col},
		"value":    {value},
	}
	var out WriteResult
	if err := c.get(ctx, "set-cell", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Column reads every data value of a column (header excluded).
func (c *Client) Column(ctx context.Context, sheetID, col string) (*Column, error) {
	params := url.Values{
		"sheet_id": {sheetID},
		"col":      {col},
	}
	var out Column
	if err := c.get(ctx, "column", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	endpointURL := c.BaseURL + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read %s response: %w", endpoint, err)
	}

	var env Envelope
	jsonErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if jsonErr == nil {
			if env.Error != "" {
				msg = env.Error
			} else if env.Detail != "" {
				msg = env.Detail
			}
		}
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: msg}
	}
	if jsonErr != nil {
		return fmt.Errorf("could not parse %s response: %w", endpoint, jsonErr)
	}
	if !env.OK {
		msg := env.Error
		if msg == "" {
			msg = "request failed"
		}
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("could not parse %s response: %w", endpoint, err)
	}
	return nil
}
