package rental

import (
	"github.com/google/uuid"

	negotiationx "github.com/metroequip/rental-desk/agent/negotiation"
	workflowx "github.com/metroequip/rental-desk/agent/workflow"
)

// Session is the explicit per-conversation state object. The orchestrator
// creates one per conversation and threads it through every tool call;
// nothing here is shared across conversations or persisted.
type Session struct {
	ID string

	Workflow    *workflowx.Session
	Negotiation *negotiationx.Session

	// Customer facts collected stage by stage, write-once each.
	businessLicense   string
	selectedEquipment string
	jobAddress        string
	operatorLicense   string
	insurancePolicy   string
}

func NewSession() *Session {
	return &Session{
		ID:          uuid.NewString(),
		Workflow:    workflowx.NewSession(),
		Negotiation: &negotiationx.Session{},
	}
}

// setOnce keeps the first non-empty value written.
func setOnce(field *string, value string) {
	if *field == "" && value != "" {
		*field = value
	}
}

func (s *Session) RecordBusinessLicense(license string) { setOnce(&s.businessLicense, license) }
func (s *Session) RecordSelectedEquipment(id string)    { setOnce(&s.selectedEquipment, id) }
func (s *Session) RecordJobAddress(address string)      { setOnce(&s.jobAddress, address) }
func (s *Session) RecordOperatorLicense(license string) { setOnce(&s.operatorLicense, license) }
func (s *Session) RecordInsurancePolicy(policy string)  { setOnce(&s.insurancePolicy, policy) }

func (s *Session) BusinessLicense() string   { return s.businessLicense }
func (s *Session) SelectedEquipment() string { return s.selectedEquipment }
func (s *Session) JobAddress() string        { return s.jobAddress }
func (s *Session) OperatorLicense() string   { return s.operatorLicense }
func (s *Session) InsurancePolicy() string   { return s.insurancePolicy }
