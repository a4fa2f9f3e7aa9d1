package rental

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/metroequip/rental-desk/agent/contract"
	inventoryx "github.com/metroequip/rental-desk/agent/inventory"
	negotiationx "github.com/metroequip/rental-desk/agent/negotiation"
	workflowx "github.com/metroequip/rental-desk/agent/workflow"
)

// Service is the textual operation surface driven by the external
// orchestrator. Every operation returns customer-safe text; NotFound,
// Conflict and backend outages are recovered into descriptive messages here
// and never escape as errors.
type Service struct {
	store    *inventoryx.Store
	verifier contractx.Verifier
}

func NewService(store *inventoryx.Store, verifier contractx.Verifier) (*Service, error) {
	if store == nil {
		return nil, errors.New("inventory store is required")
	}
	if verifier == nil {
		return nil, errors.New("verifier is required")
	}
	return &Service{store: store, verifier: verifier}, nil
}

const backendDownText = "Our equipment catalog is temporarily unavailable. Please try again in a moment."

// ListAvailableEquipment renders the rentable catalog. Daily rate is the
// only price shown.
func (s *Service) ListAvailableEquipment(ctx context.Context) string {
	records := s.store.ListAvailable(ctx)
	if len(records) == 0 {
		return "No equipment is available for rent right now."
	}

	var b strings.Builder
	b.WriteString("Available equipment:\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "- %s: %s (%s, %s) - $%d/day, stored at %s\n",
			rec.ID, rec.Name, rec.Category, rec.WeightClass, rec.DailyRate, rec.StorageLocation)
	}
	return strings.TrimRight(b.String(), "\n")
}

// GetEquipmentDetails describes one unit. The minimum rate is internal and
// never appears here.
func (s *Service) GetEquipmentDetails(ctx context.Context, equipmentID string) string {
	rec, err := s.store.GetByID(ctx, equipmentID)
	if err != nil {
		return s.describeLookupFailure(equipmentID, err)
	}

	return fmt.Sprintf(`Equipment Details:
- Name: %s
- Category: %s
- Daily Rate: $%d
- Operator Cert Required: %s
- Min Insurance: $%d
- Storage Location: %s
- Weight Class: %s`,
		rec.Name, rec.Category, rec.DailyRate, rec.OperatorCertRequired,
		rec.MinInsurance, rec.StorageLocation, rec.WeightClass)
}

// NegotiatePrice advances the pricing negotiation for one unit. Unknown
// intent or urgency tokens degrade to neutral/normal.
func (s *Service) NegotiatePrice(ctx context.Context, sess *Session, equipmentID, intent, urgency string) string {
	rec, err := s.store.GetByID(ctx, equipmentID)
	if err != nil {
		return s.describeLookupFailure(equipmentID, err)
	}

	sess.RecordSelectedEquipment(equipmentID)
	return negotiationx.Negotiate(rec, sess.Negotiation,
		negotiationx.ParseIntent(intent), negotiationx.ParseUrgency(urgency))
}

// BookEquipment finalizes the rental by transitioning the unit to RENTED.
// Losing the booking race leaves the session at the booking stage so the
// caller can restart equipment selection.
func (s *Service) BookEquipment(ctx context.Context, sess *Session, equipmentID string) string {
	if err := s.store.SetStatus(ctx, equipmentID, inventoryx.StatusRented); err != nil {
		switch {
		case errors.Is(err, contractx.ErrConflict):
			return fmt.Sprintf("Sorry, equipment %s is no longer available. It may have been booked by another customer.", equipmentID)
		case errors.Is(err, contractx.ErrNotFound):
			return fmt.Sprintf("Equipment %s not found.", equipmentID)
		default:
			log.Error().Err(err).Str("equipment_id", equipmentID).Msg("booking failed")
			return backendDownText
		}
	}

	sess.RecordSelectedEquipment(equipmentID)

	rec, err := s.store.GetByID(ctx, equipmentID)
	if err != nil {
		// The booking itself succeeded; confirm without the details.
		log.Warn().Err(err).Str("equipment_id", equipmentID).Msg("post-booking read failed")
		return fmt.Sprintf("Booking confirmed for equipment %s. Status: RENTED.", equipmentID)
	}

	return fmt.Sprintf(`Booking confirmed!
Equipment: %s
Pickup Location: %s
Status: %s

Please note pickup details and rental terms.`, rec.Name, rec.StorageLocation, rec.Status)
}

func (s *Service) VerifyBusinessLicense(sess *Session, licenseNumber string) string {
	if !s.verifier.VerifyBusinessLicense(licenseNumber) {
		return fmt.Sprintf("Business license %s could not be verified. Please check the number or contact support.", licenseNumber)
	}
	sess.RecordBusinessLicense(licenseNumber)
	return fmt.Sprintf("Business license %s verified successfully. You can proceed to equipment selection.", licenseNumber)
}

func (s *Service) VerifyOperatorCredentials(sess *Session, operatorLicense, certificationType string) string {
	if !s.verifier.VerifyOperatorCredentials(operatorLicense, certificationType) {
		return fmt.Sprintf("Operator credentials could not be verified for license %s in %s. Please check the license or contact support.", operatorLicense, certificationType)
	}
	sess.RecordOperatorLicense(operatorLicense)
	return fmt.Sprintf("Operator credentials verified successfully for license %s in %s.", operatorLicense, certificationType)
}

func (s *Service) VerifySiteSafety(sess *Session, jobAddress, equipmentCategory, weightClass string) string {
	if !s.verifier.VerifySiteSafety(jobAddress, equipmentCategory, weightClass) {
		return fmt.Sprintf("Site safety could not be verified for %s. Please ensure the location can safely handle %s equipment (%s) or contact support.", jobAddress, equipmentCategory, weightClass)
	}
	sess.RecordJobAddress(jobAddress)
	return fmt.Sprintf("Site safety verified for %s. The location can safely handle %s equipment (%s).", jobAddress, equipmentCategory, weightClass)
}

// VerifyInsuranceCoverage checks the policy against the selected equipment's
// minimum coverage; the replacement value is approximated as thirty days of
// rental.
func (s *Service) VerifyInsuranceCoverage(ctx context.Context, sess *Session, policyNumber, equipmentID string) string {
	rec, err := s.store.GetByID(ctx, equipmentID)
	if err != nil {
		return s.describeLookupFailure(equipmentID, err)
	}

	if !s.verifier.VerifyInsuranceCoverage(policyNumber, rec.MinInsurance, rec.ReplacementValue()) {
		return fmt.Sprintf("Insurance policy %s could not be verified or does not meet minimum requirements of $%d. Please update your coverage.", policyNumber, rec.MinInsurance)
	}
	sess.RecordInsurancePolicy(policyNumber)
	return fmt.Sprintf("Insurance policy %s verified successfully. Coverage meets minimum requirements of $%d.", policyNumber, rec.MinInsurance)
}

func (s *Service) CurrentStage(sess *Session) string {
	return sess.Workflow.Overview()
}

func (s *Service) StageInstructions(sess *Session) string {
	return workflowx.InstructionsFor(sess.Workflow.CurrentStage())
}

func (s *Service) MoveToNextStage(sess *Session) string {
	newStage, atCeiling := sess.Workflow.Advance()
	if atCeiling {
		return fmt.Sprintf("Already at the final stage (%d). Complete the booking process.", workflowx.StageCount)
	}
	return fmt.Sprintf("Moved to Stage %d. Continue with the next step in the rental process.", newStage)
}

// EndConversation raises the completion flag. Idempotent.
func (s *Service) EndConversation(sess *Session) string {
	sess.Workflow.Complete()
	return "Rental process complete! Thank you for choosing Metro Equipment Rentals. Feel free to reach out with any follow-up questions."
}

func (s *Service) describeLookupFailure(equipmentID string, err error) string {
	if errors.Is(err, contractx.ErrNotFound) {
		return fmt.Sprintf("Equipment %s not found.", equipmentID)
	}
	log.Error().Err(err).Str("equipment_id", equipmentID).Msg("equipment lookup failed")
	return backendDownText
}
