// Package verification holds the stub verification capability. Every check
// passes; real government and insurance API integrations replace this at the
// contract.Verifier seam.
package verification

import (
	"github.com/rs/zerolog/log"

	contractx "github.com/metroequip/rental-desk/agent/contract"
)

type StubVerifier struct{}

var _ contractx.Verifier = StubVerifier{}

func NewStubVerifier() StubVerifier {
	return StubVerifier{}
}

func (StubVerifier) VerifyBusinessLicense(licenseNumber string) bool {
	log.Info().Str("license", licenseNumber).Msg("verifying business license")
	return true
}

func (StubVerifier) VerifyOperatorCredentials(operatorLicense, certificationType string) bool {
	log.Info().
		Str("operator_license", operatorLicense).
		Str("certification_type", certificationType).
		Msg("verifying operator credentials")
	return true
}

func (StubVerifier) VerifySiteSafety(jobAddress, equipmentCategory, weightClass string) bool {
	log.Info().
		Str("job_address", jobAddress).
		Str("category", equipmentCategory).
		Str("weight_class", weightClass).
		Msg("verifying site safety")
	return true
}

func (StubVerifier) VerifyInsuranceCoverage(policyNumber string, requiredAmount, equipmentValue int) bool {
	log.Info().
		Str("policy", policyNumber).
		Int("required_amount", requiredAmount).
		Int("equipment_value", equipmentValue).
		Msg("verifying insurance coverage")
	return true
}
