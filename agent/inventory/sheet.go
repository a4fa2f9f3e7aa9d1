package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/metroequip/rental-desk/agent/contract"
)

const maxSheetResponseBytes = 2 << 20

type SheetConfig struct {
	URL     string        `split_words:"true" required:"true"`
	Token   string        `split_words:"true" required:"true"`
	SheetID string        `split_words:"true" required:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// SheetOption customizes SheetBackend.
type SheetOption func(*SheetBackend)

func WithHTTPClient(client *http.Client) SheetOption {
	return func(b *SheetBackend) {
		if client != nil {
			b.httpClient = client
		}
	}
}

// SheetBackend reads and writes the catalog through a spreadsheet REST
// service. One worksheet, one row per equipment id.
type SheetBackend struct {
	baseURL    string
	token      string
	sheetID    string
	httpClient *http.Client
}

type sheetRow struct {
	EquipmentID          string `json:"equipment_id"`
	EquipmentName        string `json:"equipment_name"`
	Category             string `json:"category"`
	DailyRate            int    `json:"daily_rate"`
	MinimumRate          int    `json:"minimum_rate,omitempty"`
	OperatorCertRequired string `json:"operator_cert_required"`
	MinInsurance         int    `json:"min_insurance"`
	StorageLocation      string `json:"storage_location"`
	WeightClass          string `json:"weight_class"`
	Status               string `json:"status"`
}

type sheetListResponse struct {
	Rows  []sheetRow `json:"rows"`
	Error string     `json:"error"`
}

type sheetUpdateResponse struct {
	Updated bool   `json:"updated"`
	Error   string `json:"error"`
}

func NewSheetBackend(cfg SheetConfig, opts ...SheetOption) (*SheetBackend, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("sheet service url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid sheet service url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("sheet service token is required")
	}
	sheetID := strings.TrimSpace(cfg.SheetID)
	if sheetID == "" {
		return nil, errors.New("sheet id is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	backend := &SheetBackend{
		baseURL: baseURL,
		token:   token,
		sheetID: sheetID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(backend)
		}
	}
	return backend, nil
}

func (b *SheetBackend) Name() string { return "sheet" }

func (b *SheetBackend) ReadAll(ctx context.Context) ([]EquipmentRecord, error) {
	raw, err := b.do(ctx, http.MethodGet, b.rowsURL(), nil)
	if err != nil {
		return nil, err
	}

	var parsed sheetListResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode sheet response: %v", contractx.ErrBackendUnavailable, err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: %s", contractx.ErrBackendUnavailable, parsed.Error)
	}

	records := make([]EquipmentRecord, 0, len(parsed.Rows))
	for i, row := range parsed.Rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("sheet row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (b *SheetBackend) WriteStatus(ctx context.Context, id string, status Status) (bool, error) {
	body, err := json.Marshal(map[string]string{"status": string(status)})
	if err != nil {
		return false, fmt.Errorf("%w: marshal status update: %v", contractx.ErrBackendUnavailable, err)
	}

	raw, err := b.do(ctx, http.MethodPatch, b.rowURL(id), body)
	if err != nil {
		if errors.Is(err, errSheetRowMissing) {
			return false, nil
		}
		return false, err
	}

	var parsed sheetUpdateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return false, fmt.Errorf("%w: decode sheet response: %v", contractx.ErrBackendUnavailable, err)
	}
	if parsed.Error != "" {
		return false, fmt.Errorf("%w: %s", contractx.ErrBackendUnavailable, parsed.Error)
	}
	return parsed.Updated, nil
}

var errSheetRowMissing = errors.New("sheet row missing")

func (b *SheetBackend) rowsURL() string {
	return fmt.Sprintf("%s/sheets/%s/rows", b.baseURL, url.PathEscape(b.sheetID))
}

func (b *SheetBackend) rowURL(id string) string {
	return fmt.Sprintf("%s/sheets/%s/rows/%s", b.baseURL, url.PathEscape(b.sheetID), url.PathEscape(id))
}

func (b *SheetBackend) do(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build sheet request: %v", contractx.ErrBackendUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+b.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute sheet request: %v", contractx.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet response: %v", contractx.ErrBackendUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, errSheetRowMissing
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: sheet http status=%d", contractx.ErrBackendUnavailable, resp.StatusCode)
	}
	return raw, nil
}

func (r sheetRow) toRecord() (EquipmentRecord, error) {
	status, err := ParseStatus(r.Status)
	if err != nil {
		return EquipmentRecord{}, err
	}
	rec := EquipmentRecord{
		ID:                   strings.TrimSpace(r.EquipmentID),
		Name:                 strings.TrimSpace(r.EquipmentName),
		Category:             strings.TrimSpace(r.Category),
		WeightClass:          strings.TrimSpace(r.WeightClass),
		StorageLocation:      strings.TrimSpace(r.StorageLocation),
		DailyRate:            r.DailyRate,
		MinimumRate:          r.MinimumRate,
		OperatorCertRequired: strings.TrimSpace(r.OperatorCertRequired),
		MinInsurance:         r.MinInsurance,
		Status:               status,
	}
	if err := rec.Normalize(); err != nil {
		return EquipmentRecord{}, err
	}
	return rec, nil
}
