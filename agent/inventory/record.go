package inventory

import (
	"fmt"
	"strings"

	contractx "github.com/metroequip/rental-desk/agent/contract"
)

type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusRented      Status = "RENTED"
	StatusMaintenance Status = "MAINTENANCE"
	StatusReserved    Status = "RESERVED"
)

// ParseStatus normalizes a raw status cell. Unknown values are rejected so a
// corrupt row cannot masquerade as rentable.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusAvailable:
		return StatusAvailable, nil
	case StatusRented:
		return StatusRented, nil
	case StatusMaintenance:
		return StatusMaintenance, nil
	case StatusReserved:
		return StatusReserved, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", contractx.ErrValidation, raw)
	}
}

// EquipmentRecord is one row of the rental catalog. MinimumRate is the
// confidential floor and must never reach customer-facing text.
type EquipmentRecord struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Category             string `json:"category"`
	WeightClass          string `json:"weight_class"`
	StorageLocation      string `json:"storage_location"`
	DailyRate            int    `json:"daily_rate"`
	MinimumRate          int    `json:"minimum_rate"`
	OperatorCertRequired string `json:"operator_cert_required"`
	MinInsurance         int    `json:"min_insurance"`
	Status               Status `json:"status"`
}

// Normalize applies the floor default and enforces MinimumRate <= DailyRate.
// Rows that omit the minimum rate get 80% of the daily rate.
func (r *EquipmentRecord) Normalize() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: equipment id is empty", contractx.ErrValidation)
	}
	if r.DailyRate <= 0 {
		return fmt.Errorf("%w: equipment %s has non-positive daily rate", contractx.ErrValidation, r.ID)
	}
	if r.MinimumRate <= 0 {
		r.MinimumRate = r.DailyRate * 8 / 10
	}
	if r.MinimumRate > r.DailyRate {
		return fmt.Errorf("%w: equipment %s minimum rate %d exceeds daily rate %d",
			contractx.ErrValidation, r.ID, r.MinimumRate, r.DailyRate)
	}
	if r.Status == "" {
		r.Status = StatusAvailable
	}
	return nil
}

// ReplacementValue approximates what the unit is worth for insurance checks.
// The original system wavered between DailyRate*30 and reusing MinInsurance;
// this codebase fixes the rule as thirty days of rental.
func (r EquipmentRecord) ReplacementValue() int {
	return r.DailyRate * 30
}
