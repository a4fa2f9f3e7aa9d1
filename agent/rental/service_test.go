package rental

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	inventoryx "github.com/metroequip/rental-desk/agent/inventory"
	verificationx "github.com/metroequip/rental-desk/agent/verification"
	workflowx "github.com/metroequip/rental-desk/agent/workflow"
)

type memoryBackend struct {
	mu      sync.Mutex
	records []inventoryx.EquipmentRecord
}

func (m *memoryBackend) Name() string { return "memory" }

func (m *memoryBackend) ReadAll(ctx context.Context) ([]inventoryx.EquipmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]inventoryx.EquipmentRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memoryBackend) WriteStatus(ctx context.Context, id string, status inventoryx.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

type fakeVerifier struct {
	licenseOK   bool
	operatorOK  bool
	siteOK      bool
	insuranceOK bool
}

func (f fakeVerifier) VerifyBusinessLicense(string) bool             { return f.licenseOK }
func (f fakeVerifier) VerifyOperatorCredentials(string, string) bool { return f.operatorOK }
func (f fakeVerifier) VerifySiteSafety(string, string, string) bool  { return f.siteOK }
func (f fakeVerifier) VerifyInsuranceCoverage(string, int, int) bool { return f.insuranceOK }

func catalogFixture() []inventoryx.EquipmentRecord {
	return []inventoryx.EquipmentRecord{
		{ID: "EQ001", Name: "Excavator", Category: "Earthmoving", WeightClass: "Heavy",
			StorageLocation: "Yard A", DailyRate: 1000, MinimumRate: 817,
			OperatorCertRequired: "Heavy Equipment", MinInsurance: 50000,
			Status: inventoryx.StatusAvailable},
		{ID: "EQ002", Name: "Scissor Lift", Category: "Aerial", WeightClass: "Medium",
			StorageLocation: "Yard B", DailyRate: 400, MinimumRate: 320,
			OperatorCertRequired: "Aerial Lift", MinInsurance: 25000,
			Status: inventoryx.StatusMaintenance},
	}
}

func newTestService(t *testing.T) (*Service, *memoryBackend) {
	t.Helper()

	backend := &memoryBackend{records: catalogFixture()}
	store, err := inventoryx.NewStore(backend, inventoryx.StoreConfig{
		FreshnessWindow: 30 * time.Second,
		CallTimeout:     time.Second,
	})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	svc, err := NewService(store, verificationx.NewStubVerifier())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, backend
}

func TestGetEquipmentDetailsNeverRevealsFloor(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	text := svc.GetEquipmentDetails(context.Background(), "EQ001")

	if !strings.Contains(text, "Excavator") {
		t.Fatalf("details missing name: %q", text)
	}
	if !strings.Contains(text, "$1000") {
		t.Fatalf("details missing daily rate: %q", text)
	}
	// 817 is the confidential floor; 817 appears nowhere else in the record.
	if strings.Contains(text, strconv.Itoa(817)) {
		t.Fatalf("details leaked minimum rate: %q", text)
	}
}

func TestGetEquipmentDetailsNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	text := svc.GetEquipmentDetails(context.Background(), "EQ999")
	if text != "Equipment EQ999 not found." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestListAvailableEquipmentFiltersStatus(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	text := svc.ListAvailableEquipment(context.Background())

	if !strings.Contains(text, "EQ001") {
		t.Fatalf("available catalog missing EQ001: %q", text)
	}
	if strings.Contains(text, "EQ002") {
		t.Fatalf("catalog includes equipment under maintenance: %q", text)
	}
}

func TestBookEquipmentConfirmation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	sess := NewSession()

	text := svc.BookEquipment(context.Background(), sess, "EQ001")
	if !strings.Contains(text, "Booking confirmed") {
		t.Fatalf("unexpected booking text: %q", text)
	}
	if !strings.Contains(text, "Yard A") {
		t.Fatalf("booking text missing pickup location: %q", text)
	}
	if sess.SelectedEquipment() != "EQ001" {
		t.Fatalf("SelectedEquipment() = %q, want EQ001", sess.SelectedEquipment())
	}
}

func TestBookEquipmentConflictMessage(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	first := NewSession()
	second := NewSession()

	svc.BookEquipment(context.Background(), first, "EQ001")
	text := svc.BookEquipment(context.Background(), second, "EQ001")

	if !strings.Contains(text, "no longer available") {
		t.Fatalf("conflict should read as unavailability, got %q", text)
	}
	if !strings.Contains(text, "another customer") {
		t.Fatalf("conflict text should mention another customer, got %q", text)
	}
}

func TestBookEquipmentUnknownID(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	text := svc.BookEquipment(context.Background(), NewSession(), "EQ999")
	if text != "Equipment EQ999 not found." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestNegotiatePriceUnknownTokensDegradeGracefully(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	sess := NewSession()

	text := svc.NegotiatePrice(context.Background(), sess, "EQ001", "mumble", "whenever")
	if !strings.Contains(text, "$1000") {
		t.Fatalf("unknown intent should restate the current offer, got %q", text)
	}
	if sess.Negotiation.NegotiationCount != 0 {
		t.Fatalf("NegotiationCount = %d, want 0", sess.Negotiation.NegotiationCount)
	}
}

func TestNegotiatePriceRecordsSelectedEquipment(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	sess := NewSession()

	svc.NegotiatePrice(context.Background(), sess, "EQ001", "request_discount", "high")
	if sess.SelectedEquipment() != "EQ001" {
		t.Fatalf("SelectedEquipment() = %q, want EQ001", sess.SelectedEquipment())
	}
	if sess.Negotiation.CurrentOffer >= 1000 {
		t.Fatalf("CurrentOffer = %d, want a concession below 1000", sess.Negotiation.CurrentOffer)
	}
}

func TestVerificationFailureTexts(t *testing.T) {
	t.Parallel()

	backend := &memoryBackend{records: catalogFixture()}
	store, err := inventoryx.NewStore(backend, inventoryx.StoreConfig{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	svc, err := NewService(store, fakeVerifier{})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	sess := NewSession()

	if text := svc.VerifyBusinessLicense(sess, "BL-1"); !strings.Contains(text, "could not be verified") {
		t.Fatalf("unexpected text: %q", text)
	}
	if sess.BusinessLicense() != "" {
		t.Fatal("failed verification must not record the license")
	}
	if text := svc.VerifyOperatorCredentials(sess, "OP-1", "Heavy Equipment"); !strings.Contains(text, "could not be verified") {
		t.Fatalf("unexpected text: %q", text)
	}
	if text := svc.VerifySiteSafety(sess, "12 Main St", "Earthmoving", "Heavy"); !strings.Contains(text, "could not be verified") {
		t.Fatalf("unexpected text: %q", text)
	}
	if text := svc.VerifyInsuranceCoverage(context.Background(), sess, "POL-1", "EQ001"); !strings.Contains(text, "could not be verified") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestVerifyInsuranceCoverageUsesEquipmentMinimum(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	sess := NewSession()

	text := svc.VerifyInsuranceCoverage(context.Background(), sess, "POL-7", "EQ001")
	if !strings.Contains(text, "$50000") {
		t.Fatalf("insurance text should cite the equipment minimum, got %q", text)
	}
	if sess.InsurancePolicy() != "POL-7" {
		t.Fatalf("InsurancePolicy() = %q, want POL-7", sess.InsurancePolicy())
	}
}

func TestStageFlowThroughService(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	sess := NewSession()

	if text := svc.CurrentStage(sess); !strings.Contains(text, "Current Stage: 1/7") {
		t.Fatalf("unexpected overview: %q", text)
	}
	if text := svc.StageInstructions(sess); !strings.Contains(text, "business license") {
		t.Fatalf("stage 1 instructions should mention the business license, got %q", text)
	}

	for i := 0; i < workflowx.StageCount-1; i++ {
		svc.MoveToNextStage(sess)
	}
	if text := svc.MoveToNextStage(sess); !strings.Contains(text, "Already at the final stage") {
		t.Fatalf("unexpected ceiling text: %q", text)
	}
	if sess.Workflow.CurrentStage() != workflowx.StageCount {
		t.Fatalf("stage = %d, want %d", sess.Workflow.CurrentStage(), workflowx.StageCount)
	}
}

func TestEndConversationIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	sess := NewSession()

	first := svc.EndConversation(sess)
	second := svc.EndConversation(sess)
	if first != second {
		t.Fatalf("EndConversation not idempotent: %q vs %q", first, second)
	}
	if !sess.Workflow.Completed() {
		t.Fatal("completion flag not set")
	}
}

func TestSessionFieldsAreWriteOnce(t *testing.T) {
	t.Parallel()

	sess := NewSession()
	sess.RecordBusinessLicense("BL-1")
	sess.RecordBusinessLicense("BL-2")
	if sess.BusinessLicense() != "BL-1" {
		t.Fatalf("BusinessLicense() = %q, want first write BL-1", sess.BusinessLicense())
	}

	sess.RecordSelectedEquipment("EQ001")
	sess.RecordSelectedEquipment("EQ002")
	if sess.SelectedEquipment() != "EQ001" {
		t.Fatalf("SelectedEquipment() = %q, want EQ001", sess.SelectedEquipment())
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	t.Parallel()

	a := NewSession()
	b := NewSession()
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("session ids must be unique and non-empty: %q vs %q", a.ID, b.ID)
	}
}
