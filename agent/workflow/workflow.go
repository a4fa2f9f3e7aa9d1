package workflow

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	StageCustomerVerification  = 1
	StageEquipmentDiscovery    = 2
	StageSiteSafety            = 3
	StagePricingNegotiation    = 4
	StageOperatorCertification = 5
	StageInsuranceVerification = 6
	StageBookingCompletion     = 7

	StageCount = 7
)

var stageNames = map[int]string{
	StageCustomerVerification:  "Customer Verification - Get business license",
	StageEquipmentDiscovery:    "Equipment Discovery - Find right equipment",
	StageSiteSafety:            "Site Safety Verification - Verify ONLY job site safety",
	StagePricingNegotiation:    "Pricing Negotiation - Negotiate price within range",
	StageOperatorCertification: "Operator Certification - Verify operator credentials",
	StageInsuranceVerification: "Insurance Verification - Verify insurance coverage",
	StageBookingCompletion:     "Booking Completion - Finalize rental",
}

// Session is the per-conversation stage machine. The stage only moves
// forward, one step at a time, and caps at the final stage; completion is a
// separate explicit signal.
type Session struct {
	stage     int
	completed bool
}

func NewSession() *Session {
	return &Session{stage: StageCustomerVerification}
}

func (s *Session) CurrentStage() int {
	return s.stage
}

// Advance moves to the next stage. At the final stage it is a no-op and
// reports atCeiling.
func (s *Session) Advance() (newStage int, atCeiling bool) {
	if s.stage >= StageCount {
		return s.stage, true
	}
	s.stage++
	log.Info().Int("stage", s.stage).Msg("advanced to next stage")
	return s.stage, false
}

// Complete raises the conversation-complete flag. Idempotent.
func (s *Session) Complete() {
	s.completed = true
}

func (s *Session) Completed() bool {
	return s.completed
}

// Overview renders the full stage list with the session's position.
func (s *Session) Overview() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current Stage: %d/%d\n\n", s.stage, StageCount)
	for stage := 1; stage <= StageCount; stage++ {
		fmt.Fprintf(&b, "Stage %d: %s\n", stage, stageNames[stage])
	}
	fmt.Fprintf(&b, "\nYou are currently in Stage %d.", s.stage)
	return b.String()
}

// InstructionsFor returns the fixed checklist of allowed actions for a
// stage. Pure lookup, no side effect.
func InstructionsFor(stage int) string {
	if text, ok := stageInstructions[stage]; ok {
		return text
	}
	return "Unknown stage."
}

var stageInstructions = map[int]string{
	StageCustomerVerification: `Stage 1 - Customer Verification:
- Ask for their business license number
- When they provide it, call verify_business_license(license_number)
- IF the check passes, call move_to_next_stage()
- IF verification fails, ask them to check the number or contact support`,

	StageEquipmentDiscovery: `Stage 2 - Equipment Discovery:
- Ask what type of project they're working on and what they need
- Show available equipment that matches their needs
- When they ask about specific equipment, call get_equipment_details(equipment_id)
- Help them narrow down to 1-2 options
- When they've selected equipment, call move_to_next_stage()`,

	StageSiteSafety: `Stage 3 - Site Safety Verification (SITE SAFETY ONLY - NOT OPERATOR OR INSURANCE):
- Confirm the selected equipment
- Ask for the job site address
- When they provide it, call verify_site_safety(job_address, equipment_category, weight_class)
- Use the Category and Weight Class fields from the selected equipment
- IMMEDIATELY call move_to_next_stage() after site safety is verified
- DO NOT ask about operator credentials - that comes in Stage 5
- DO NOT ask about insurance - that comes in Stage 6
- DO NOT discuss pricing - that comes in Stage 4`,

	StagePricingNegotiation: `Stage 4 - Pricing Negotiation:
- Show ONLY the daily rate for selected equipment
- Use negotiate_price(equipment_id, intent, urgency_level) to handle negotiations
- Determine urgency_level from customer language: "urgent/critical/emergency" = "critical", "asap/soon" = "high", casual = "normal", "no rush" = "low"
- Start with the daily rate and concede gradually based on customer objections
- Confirm final price
- When price is agreed, call move_to_next_stage()`,

	StageOperatorCertification: `Stage 5 - Operator Certification:
- Ask for the operator's license number
- Use the Operator Cert Required field from the selected equipment as certification_type
- When they provide it, call verify_operator_credentials(operator_license, certification_type)
- IF the check passes, call move_to_next_stage()
- IF verification fails, ask them to provide correct credentials`,

	StageInsuranceVerification: `Stage 6 - Insurance Verification:
- Ask for their insurance policy number
- When they provide it, call verify_insurance_coverage(policy_number, equipment_id)
- The required coverage comes from the selected equipment's Min Insurance field
- IF the check passes, call move_to_next_stage()
- IF verification fails, ask them to update coverage`,

	StageBookingCompletion: `Stage 7 - Booking Completion:
- FIRST: Call book_equipment(equipment_id) to finalize the rental
- THEN: Confirm all details (equipment, price, operator, insurance, pickup location)
- FINALLY: Call end_conversation() after the customer acknowledges completion
- Thank the customer for their business`,
}
