package tool

import (
	"context"
	"strings"
	"testing"

	inventoryx "github.com/metroequip/rental-desk/agent/inventory"
	rentalx "github.com/metroequip/rental-desk/agent/rental"
	verificationx "github.com/metroequip/rental-desk/agent/verification"
)

type staticBackend struct {
	records []inventoryx.EquipmentRecord
}

func (b *staticBackend) Name() string { return "static" }

func (b *staticBackend) ReadAll(ctx context.Context) ([]inventoryx.EquipmentRecord, error) {
	out := make([]inventoryx.EquipmentRecord, len(b.records))
	copy(out, b.records)
	return out, nil
}

func (b *staticBackend) WriteStatus(ctx context.Context, id string, status inventoryx.Status) (bool, error) {
	for i := range b.records {
		if b.records[i].ID == id {
			b.records[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

func newCatalogFixture(t *testing.T) (Executor, *rentalx.Session) {
	t.Helper()

	backend := &staticBackend{records: []inventoryx.EquipmentRecord{
		{ID: "EQ001", Name: "Excavator", Category: "Earthmoving", WeightClass: "Heavy",
			StorageLocation: "Yard A", DailyRate: 1000, MinimumRate: 800,
			OperatorCertRequired: "Heavy Equipment", MinInsurance: 50000,
			Status: inventoryx.StatusAvailable},
	}}
	store, err := inventoryx.NewStore(backend, inventoryx.StoreConfig{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	svc, err := rentalx.NewService(store, verificationx.NewStubVerifier())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	sess := rentalx.NewSession()
	return NewExecutor(svc, sess), sess
}

func TestInfosDeclaresEveryTool(t *testing.T) {
	t.Parallel()

	want := []string{
		ToolGetCurrentStage,
		ToolGetStageInstructions,
		ToolMoveToNextStage,
		ToolVerifyBusinessLicense,
		ToolListAvailableEquipment,
		ToolGetEquipmentDetails,
		ToolNegotiatePrice,
		ToolVerifySiteSafety,
		ToolVerifyOperatorCredentials,
		ToolVerifyInsuranceCoverage,
		ToolBookEquipment,
		ToolEndConversation,
	}

	infos := Infos()
	if len(infos) != len(want) {
		t.Fatalf("Infos() declared %d tools, want %d", len(infos), len(want))
	}

	declared := make(map[string]bool, len(infos))
	for _, info := range infos {
		if info.Desc == "" {
			t.Errorf("tool %s has no description", info.Name)
		}
		declared[info.Name] = true
	}
	for _, name := range want {
		if !declared[name] {
			t.Errorf("tool %s not declared", name)
		}
	}
}

func TestExecutorDispatchesStageTools(t *testing.T) {
	t.Parallel()

	exec, _ := newCatalogFixture(t)
	ctx := context.Background()

	res, err := exec(ctx, ToolGetCurrentStage, nil)
	if err != nil {
		t.Fatalf("executor error = %v", err)
	}
	if res.Error != "" {
		t.Fatalf("unexpected tool error: %s", res.Error)
	}
	if !strings.Contains(res.Result, "Current Stage: 1/7") {
		t.Fatalf("unexpected result: %q", res.Result)
	}

	res, _ = exec(ctx, ToolMoveToNextStage, nil)
	if !strings.Contains(res.Result, "Moved to Stage 2") {
		t.Fatalf("unexpected result: %q", res.Result)
	}
}

func TestExecutorMissingArgumentReportsError(t *testing.T) {
	t.Parallel()

	exec, _ := newCatalogFixture(t)

	res, err := exec(context.Background(), ToolGetEquipmentDetails, map[string]any{})
	if err != nil {
		t.Fatalf("executor error = %v", err)
	}
	if res.Error == "" {
		t.Fatal("missing equipment_id should surface through the Error field")
	}
	if !strings.Contains(res.Error, "equipment_id") {
		t.Fatalf("error should name the missing argument, got %q", res.Error)
	}
}

func TestExecutorWrongArgumentTypeReportsError(t *testing.T) {
	t.Parallel()

	exec, _ := newCatalogFixture(t)

	res, err := exec(context.Background(), ToolGetEquipmentDetails, map[string]any{"equipment_id": 42})
	if err != nil {
		t.Fatalf("executor error = %v", err)
	}
	if !strings.Contains(res.Error, "must be a string") {
		t.Fatalf("unexpected error: %q", res.Error)
	}
}

func TestExecutorUnknownToolReportsError(t *testing.T) {
	t.Parallel()

	exec, _ := newCatalogFixture(t)

	res, err := exec(context.Background(), "teleport_equipment", nil)
	if err != nil {
		t.Fatalf("executor error = %v", err)
	}
	if !strings.Contains(res.Error, "not available") {
		t.Fatalf("unexpected error: %q", res.Error)
	}
	if res.Tool != "teleport_equipment" {
		t.Fatalf("result tool = %q", res.Tool)
	}
}

func TestExecutorNegotiateDefaultsOptionalArgs(t *testing.T) {
	t.Parallel()

	exec, sess := newCatalogFixture(t)

	res, err := exec(context.Background(), ToolNegotiatePrice, map[string]any{"equipment_id": "EQ001"})
	if err != nil {
		t.Fatalf("executor error = %v", err)
	}
	if res.Error != "" {
		t.Fatalf("unexpected tool error: %s", res.Error)
	}
	// Absent intent degrades to neutral: the offer is stated, nothing moves.
	if !strings.Contains(res.Result, "$1000") {
		t.Fatalf("unexpected result: %q", res.Result)
	}
	if sess.Negotiation.NegotiationCount != 0 {
		t.Fatalf("NegotiationCount = %d, want 0", sess.Negotiation.NegotiationCount)
	}
}

func TestExecutorBookingFlow(t *testing.T) {
	t.Parallel()

	exec, sess := newCatalogFixture(t)
	ctx := context.Background()

	res, _ := exec(ctx, ToolBookEquipment, map[string]any{"equipment_id": "EQ001"})
	if !strings.Contains(res.Result, "Booking confirmed") {
		t.Fatalf("unexpected result: %q", res.Result)
	}
	if sess.SelectedEquipment() != "EQ001" {
		t.Fatalf("SelectedEquipment() = %q, want EQ001", sess.SelectedEquipment())
	}

	res, _ = exec(ctx, ToolListAvailableEquipment, nil)
	if strings.Contains(res.Result, "EQ001") {
		t.Fatalf("booked equipment still listed as available: %q", res.Result)
	}
}

func TestBuildForSessionReturnsBothHalves(t *testing.T) {
	t.Parallel()

	backend := &staticBackend{}
	store, err := inventoryx.NewStore(backend, inventoryx.StoreConfig{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	svc, err := rentalx.NewService(store, verificationx.NewStubVerifier())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	infos, exec := BuildForSession(svc, rentalx.NewSession())
	if len(infos) == 0 {
		t.Fatal("BuildForSession() returned no tool declarations")
	}
	if exec == nil {
		t.Fatal("BuildForSession() returned a nil executor")
	}
}
