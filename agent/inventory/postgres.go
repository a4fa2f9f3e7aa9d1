package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/metroequip/rental-desk/agent/contract"
)

type PostgresConfig struct {
	DSN string `split_words:"true" required:"true"`
}

type equipmentRow struct {
	bun.BaseModel `bun:"table:equipment,alias:eq"`

	EquipmentID          string `bun:"equipment_id,pk"`
	EquipmentName        string `bun:"equipment_name"`
	Category             string `bun:"category"`
	DailyRate            int    `bun:"daily_rate"`
	MinimumRate          int    `bun:"minimum_rate,nullzero"`
	OperatorCertRequired string `bun:"operator_cert_required"`
	MinInsurance         int    `bun:"min_insurance"`
	StorageLocation      string `bun:"storage_location"`
	WeightClass          string `bun:"weight_class"`
	Status               string `bun:"status"`
}

// PostgresBackend keeps the catalog in an equipment table.
type PostgresBackend struct {
	db *bun.DB
}

func NewPostgresBackend(cfg PostgresConfig) (*PostgresBackend, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &PostgresBackend{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// NewPostgresBackendFromDB wraps an existing bun handle; used by tests.
func NewPostgresBackendFromDB(db *bun.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) ReadAll(ctx context.Context) ([]EquipmentRecord, error) {
	var rows []equipmentRow
	if err := b.db.NewSelect().Model(&rows).Order("equipment_id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: select equipment: %v", contractx.ErrBackendUnavailable, err)
	}

	records := make([]EquipmentRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (b *PostgresBackend) WriteStatus(ctx context.Context, id string, status Status) (bool, error) {
	res, err := b.db.NewUpdate().
		Model((*equipmentRow)(nil)).
		Set("status = ?", string(status)).
		Where("equipment_id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: update equipment status: %v", contractx.ErrBackendUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %v", contractx.ErrBackendUnavailable, err)
	}
	return affected > 0, nil
}

func (row equipmentRow) toRecord() (EquipmentRecord, error) {
	status, err := ParseStatus(row.Status)
	if err != nil {
		return EquipmentRecord{}, err
	}
	rec := EquipmentRecord{
		ID:                   row.EquipmentID,
		Name:                 row.EquipmentName,
		Category:             row.Category,
		WeightClass:          row.WeightClass,
		StorageLocation:      row.StorageLocation,
		DailyRate:            row.DailyRate,
		MinimumRate:          row.MinimumRate,
		OperatorCertRequired: row.OperatorCertRequired,
		MinInsurance:         row.MinInsurance,
		Status:               status,
	}
	if err := rec.Normalize(); err != nil {
		return EquipmentRecord{}, err
	}
	return rec, nil
}
