package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/metroequip/rental-desk/agent/contract"
)

type StoreConfig struct {
	FreshnessWindow time.Duration `split_words:"true" default:"30s"`
	CallTimeout     time.Duration `split_words:"true" default:"5s"`
}

// StoreOption customizes Store.
type StoreOption func(*Store)

// WithMirror configures a secondary backend. Reads fall back to it when the
// primary is unavailable; successful writes are mirrored to it best-effort.
func WithMirror(backend Backend) StoreOption {
	return func(s *Store) {
		s.secondary = backend
	}
}

// WithClock overrides the snapshot clock; used by tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// snapshot is an immutable full copy of the catalog. It is replaced whole,
// never patched, so readers cannot observe a torn catalog.
type snapshot struct {
	records []EquipmentRecord
	byID    map[string]int
	taken   time.Time
}

// Store serves cached catalog reads and race-safe status transitions over a
// pluggable backend. One Store is shared by all conversation sessions.
type Store struct {
	primary   Backend
	secondary Backend

	window  time.Duration
	timeout time.Duration
	now     func() time.Time

	snap atomic.Pointer[snapshot]

	// writeMu serializes the check-then-write sequence in SetStatus. The
	// backend is not assumed to provide compare-and-swap.
	writeMu sync.Mutex

	// refreshMu collapses concurrent reload attempts into one backend call.
	refreshMu sync.Mutex
}

func NewStore(primary Backend, cfg StoreConfig, opts ...StoreOption) (*Store, error) {
	if primary == nil {
		return nil, errors.New("primary inventory backend is required")
	}

	window := cfg.FreshnessWindow
	if window <= 0 {
		window = 30 * time.Second
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &Store{
		primary: primary,
		window:  window,
		timeout: timeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// ListAvailable returns every record whose status is AVAILABLE. When no
// backend can be reached the catalog is surfaced as empty; the outage is
// logged, not propagated.
func (s *Store) ListAvailable(ctx context.Context) []EquipmentRecord {
	snap, err := s.current(ctx)
	if err != nil {
		log.Error().Err(err).Msg("inventory read failed, serving empty catalog")
		return []EquipmentRecord{}
	}

	available := make([]EquipmentRecord, 0, len(snap.records))
	for _, rec := range snap.records {
		if rec.Status == StatusAvailable {
			available = append(available, rec)
		}
	}
	return available
}

// GetByID returns one record through the cache.
func (s *Store) GetByID(ctx context.Context, id string) (EquipmentRecord, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return EquipmentRecord{}, err
	}

	idx, ok := snap.byID[id]
	if !ok {
		return EquipmentRecord{}, fmt.Errorf("%w: %s", contractx.ErrNotFound, id)
	}
	return snap.records[idx], nil
}

// SetStatus transitions one record's status. Before applying RENTED it
// re-reads the authoritative backend under the write lock; losing the race
// yields ErrConflict and no change. A successful write always invalidates
// the snapshot so the next read observes the post-write state.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if status == StatusRented {
		current, err := s.authoritativeStatus(ctx, id)
		if err != nil {
			return err
		}
		if current != StatusAvailable {
			return fmt.Errorf("%w: %s is %s", contractx.ErrConflict, id, current)
		}
	}

	written, err := s.writeStatus(ctx, s.primary, id, status)
	if err != nil {
		return err
	}
	if !written {
		return fmt.Errorf("%w: %s", contractx.ErrNotFound, id)
	}

	if s.secondary != nil {
		if mirrored, err := s.writeStatus(ctx, s.secondary, id, status); err != nil || !mirrored {
			log.Warn().Err(err).
				Str("equipment_id", id).
				Str("backend", s.secondary.Name()).
				Msg("mirror write failed")
		}
	}

	s.snap.Store(nil)
	log.Info().Str("equipment_id", id).Str("status", string(status)).Msg("equipment status updated")
	return nil
}

// Invalidate drops the cached snapshot; the next read reloads.
func (s *Store) Invalidate() {
	s.snap.Store(nil)
}

func (s *Store) current(ctx context.Context) (*snapshot, error) {
	if snap := s.snap.Load(); snap != nil && s.now().Sub(snap.taken) <= s.window {
		return snap, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Another session may have reloaded while we waited.
	if snap := s.snap.Load(); snap != nil && s.now().Sub(snap.taken) <= s.window {
		return snap, nil
	}

	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(records))
	for i, rec := range records {
		byID[rec.ID] = i
	}
	snap := &snapshot{records: records, byID: byID, taken: s.now()}
	s.snap.Store(snap)
	return snap, nil
}

func (s *Store) readAll(ctx context.Context) ([]EquipmentRecord, error) {
	records, err := s.readAllFrom(ctx, s.primary)
	if err == nil {
		return records, nil
	}
	if s.secondary == nil {
		return nil, err
	}

	log.Warn().Err(err).
		Str("backend", s.primary.Name()).
		Msg("primary inventory backend unavailable, falling back")

	records, fallbackErr := s.readAllFrom(ctx, s.secondary)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w: secondary also failed: %v", err, fallbackErr)
	}
	return records, nil
}

func (s *Store) readAllFrom(ctx context.Context, backend Backend) ([]EquipmentRecord, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records, err := backend.ReadAll(cctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s read timed out", contractx.ErrBackendUnavailable, backend.Name())
		}
		return nil, err
	}
	return records, nil
}

func (s *Store) writeStatus(ctx context.Context, backend Backend, id string, status Status) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	written, err := backend.WriteStatus(cctx, id, status)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return false, fmt.Errorf("%w: %s write timed out", contractx.ErrBackendUnavailable, backend.Name())
		}
		return false, err
	}
	return written, nil
}

// authoritativeStatus bypasses the cache and reads the current status from
// the primary backend.
func (s *Store) authoritativeStatus(ctx context.Context, id string) (Status, error) {
	records, err := s.readAllFrom(ctx, s.primary)
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.Status, nil
		}
	}
	return "", fmt.Errorf("%w: %s", contractx.ErrNotFound, id)
}
