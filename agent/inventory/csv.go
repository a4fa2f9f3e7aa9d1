package inventory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	contractx "github.com/metroequip/rental-desk/agent/contract"
)

// Column headers of the flat inventory file. Minimum Rate may be absent;
// Normalize fills the default.
const (
	colID           = "Equipment ID"
	colName         = "Equipment Name"
	colCategory     = "Category"
	colDailyRate    = "Daily Rate"
	colMinimumRate  = "Minimum Rate"
	colOperatorCert = "Operator Cert Required"
	colMinInsurance = "Min Insurance"
	colStorage      = "Storage Location"
	colWeightClass  = "Weight Class"
	colStatus       = "Status"
)

type CSVConfig struct {
	Path string `split_words:"true" required:"true"`
}

// CSVBackend keeps the catalog in a flat tabular file. Writes rewrite the
// whole file under a lock; the file is small and contention is low.
type CSVBackend struct {
	path string
	mu   sync.Mutex
}

func NewCSVBackend(cfg CSVConfig) (*CSVBackend, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("inventory csv path is required")
	}
	return &CSVBackend{path: path}, nil
}

func (b *CSVBackend) Name() string { return "csv" }

func (b *CSVBackend) ReadAll(ctx context.Context) ([]EquipmentRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	records, _, _, err := b.readFile(ctx)
	return records, err
}

func (b *CSVBackend) WriteStatus(ctx context.Context, id string, status Status) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, header, rows, err := b.readFile(ctx)
	if err != nil {
		return false, err
	}

	statusIdx := columnIndex(header, colStatus)
	idIdx := columnIndex(header, colID)
	if statusIdx < 0 || idIdx < 0 {
		return false, fmt.Errorf("%w: csv header missing %q or %q", contractx.ErrBackendUnavailable, colID, colStatus)
	}

	found := false
	for _, row := range rows {
		if idIdx < len(row) && strings.TrimSpace(row[idIdx]) == id {
			row[statusIdx] = string(status)
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	if err := b.writeFile(header, rows); err != nil {
		return false, err
	}
	return true, nil
}

func (b *CSVBackend) readFile(ctx context.Context) ([]EquipmentRecord, []string, [][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", contractx.ErrBackendUnavailable, err)
	}

	f, err := os.Open(b.path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: open %s: %v", contractx.ErrBackendUnavailable, b.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: read %s: %v", contractx.ErrBackendUnavailable, b.path, err)
	}
	if len(all) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: %s is empty", contractx.ErrBackendUnavailable, b.path)
	}

	header := all[0]
	rows := all[1:]

	records := make([]EquipmentRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := recordFromRow(header, row)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, header, rows, nil
}

func (b *CSVBackend) writeFile(header []string, rows [][]string) error {
	tmp := b.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", contractx.ErrBackendUnavailable, tmp, err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err == nil {
		err = writer.WriteAll(rows)
	}
	writer.Flush()
	if err := firstErr(writer.Error(), f.Close()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: write %s: %v", contractx.ErrBackendUnavailable, tmp, err)
	}

	if err := os.Rename(tmp, b.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: replace %s: %v", contractx.ErrBackendUnavailable, b.path, err)
	}
	return nil
}

func recordFromRow(header, row []string) (EquipmentRecord, error) {
	cell := func(col string) string {
		idx := columnIndex(header, col)
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	dailyRate, err := cellInt(cell(colDailyRate))
	if err != nil {
		return EquipmentRecord{}, fmt.Errorf("%w: bad %s: %v", contractx.ErrValidation, colDailyRate, err)
	}
	minimumRate := 0
	if raw := cell(colMinimumRate); raw != "" {
		if minimumRate, err = cellInt(raw); err != nil {
			return EquipmentRecord{}, fmt.Errorf("%w: bad %s: %v", contractx.ErrValidation, colMinimumRate, err)
		}
	}
	minInsurance := 0
	if raw := cell(colMinInsurance); raw != "" {
		if minInsurance, err = cellInt(raw); err != nil {
			return EquipmentRecord{}, fmt.Errorf("%w: bad %s: %v", contractx.ErrValidation, colMinInsurance, err)
		}
	}

	status, err := ParseStatus(cell(colStatus))
	if err != nil {
		return EquipmentRecord{}, err
	}

	rec := EquipmentRecord{
		ID:                   cell(colID),
		Name:                 cell(colName),
		Category:             cell(colCategory),
		WeightClass:          cell(colWeightClass),
		StorageLocation:      cell(colStorage),
		DailyRate:            dailyRate,
		MinimumRate:          minimumRate,
		OperatorCertRequired: cell(colOperatorCert),
		MinInsurance:         minInsurance,
		Status:               status,
	}
	if err := rec.Normalize(); err != nil {
		return EquipmentRecord{}, err
	}
	return rec, nil
}

func columnIndex(header []string, col string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), col) {
			return i
		}
	}
	return -1
}

func cellInt(raw string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
