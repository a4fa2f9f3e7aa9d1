package inventory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	contractx "github.com/metroequip/rental-desk/agent/contract"
)

const csvFixture = `Equipment ID,Equipment Name,Category,Daily Rate,Minimum Rate,Operator Cert Required,Min Insurance,Storage Location,Weight Class,Status
EQ001,Excavator,Earthmoving,1000,800,Heavy Equipment,50000,Yard A,Heavy,AVAILABLE
EQ002,Scissor Lift,Aerial,400,,Aerial Lift,25000,Yard B,Medium,RENTED
`

func writeCSVFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.csv")
	if err := os.WriteFile(path, []byte(csvFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestCSVBackendReadAll(t *testing.T) {
	t.Parallel()

	backend, err := NewCSVBackend(CSVConfig{Path: writeCSVFixture(t)})
	if err != nil {
		t.Fatalf("NewCSVBackend() error = %v", err)
	}

	records, err := backend.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ReadAll() returned %d records, want 2", len(records))
	}

	if records[0].ID != "EQ001" || records[0].MinimumRate != 800 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	// Missing Minimum Rate cell defaults to 80% of the daily rate.
	if records[1].MinimumRate != 320 {
		t.Fatalf("records[1].MinimumRate = %d, want 320", records[1].MinimumRate)
	}
	if records[1].Status != StatusRented {
		t.Fatalf("records[1].Status = %s, want %s", records[1].Status, StatusRented)
	}
}

func TestCSVBackendWriteStatus(t *testing.T) {
	t.Parallel()

	backend, err := NewCSVBackend(CSVConfig{Path: writeCSVFixture(t)})
	if err != nil {
		t.Fatalf("NewCSVBackend() error = %v", err)
	}

	written, err := backend.WriteStatus(context.Background(), "EQ001", StatusRented)
	if err != nil {
		t.Fatalf("WriteStatus() error = %v", err)
	}
	if !written {
		t.Fatal("WriteStatus() = false, want true")
	}

	records, err := backend.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if records[0].Status != StatusRented {
		t.Fatalf("records[0].Status = %s, want %s", records[0].Status, StatusRented)
	}
}

func TestCSVBackendWriteStatusUnknownID(t *testing.T) {
	t.Parallel()

	backend, err := NewCSVBackend(CSVConfig{Path: writeCSVFixture(t)})
	if err != nil {
		t.Fatalf("NewCSVBackend() error = %v", err)
	}

	written, err := backend.WriteStatus(context.Background(), "EQ999", StatusRented)
	if err != nil {
		t.Fatalf("WriteStatus() error = %v", err)
	}
	if written {
		t.Fatal("WriteStatus() = true for unknown id, want false")
	}
}

func TestCSVBackendMissingFile(t *testing.T) {
	t.Parallel()

	backend, err := NewCSVBackend(CSVConfig{Path: filepath.Join(t.TempDir(), "missing.csv")})
	if err != nil {
		t.Fatalf("NewCSVBackend() error = %v", err)
	}

	_, err = backend.ReadAll(context.Background())
	if !errors.Is(err, contractx.ErrBackendUnavailable) {
		t.Fatalf("ReadAll() error = %v, want ErrBackendUnavailable", err)
	}
}
