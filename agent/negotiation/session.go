package negotiation

// Session tracks pricing state for one conversation. It lives and dies with
// the conversation and is never persisted or shared.
type Session struct {
	// CurrentOffer is zero until the first negotiation call, which seeds it
	// with the equipment's daily rate.
	CurrentOffer int `json:"current_offer"`

	// NegotiationCount is the number of discount requests so far.
	NegotiationCount int `json:"negotiation_count"`

	// AgreedPrice is zero until the customer accepts; once set it is final.
	AgreedPrice int `json:"agreed_price"`
}

func (s *Session) Accepted() bool {
	return s != nil && s.AgreedPrice > 0
}
