package inventory

import "context"

// Backend is the pluggable record store behind the inventory Store. The
// store never assumes the backend can do an atomic compare-and-swap; the
// check-then-write sequence is guarded at the store level.
type Backend interface {
	// Name identifies the backend in logs only; it must never appear in
	// customer-facing text.
	Name() string

	// ReadAll returns every catalog row.
	ReadAll(ctx context.Context) ([]EquipmentRecord, error)

	// WriteStatus updates the status column for one row. The bool reports
	// whether the id was found and written.
	WriteStatus(ctx context.Context, id string, status Status) (bool, error)
}
