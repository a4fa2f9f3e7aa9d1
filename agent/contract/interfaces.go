package contract

// Verifier is the external verification capability consumed by the core.
// Implementations are synchronous and side-effect-free; a false return is an
// explicit negative, never a transport failure.
type Verifier interface {
	VerifyBusinessLicense(licenseNumber string) bool
	VerifyOperatorCredentials(operatorLicense, certificationType string) bool
	VerifySiteSafety(jobAddress, equipmentCategory, weightClass string) bool
	VerifyInsuranceCoverage(policyNumber string, requiredAmount, equipmentValue int) bool
}
