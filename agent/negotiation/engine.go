package negotiation

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	inventoryx "github.com/metroequip/rental-desk/agent/inventory"
)

type Intent string

const (
	IntentAccept          Intent = "accept"
	IntentRequestDiscount Intent = "request_discount"
	IntentNeutral         Intent = "neutral"
)

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// ParseIntent maps a caller-supplied token to an Intent. Unrecognized tokens
// fall back to Neutral rather than failing.
func ParseIntent(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentAccept:
		return IntentAccept
	case IntentRequestDiscount:
		return IntentRequestDiscount
	default:
		return IntentNeutral
	}
}

// ParseUrgency maps a caller-supplied token to an Urgency, defaulting to
// Normal.
func ParseUrgency(raw string) Urgency {
	switch Urgency(strings.ToLower(strings.TrimSpace(raw))) {
	case UrgencyLow:
		return UrgencyLow
	case UrgencyHigh:
		return UrgencyHigh
	case UrgencyCritical:
		return UrgencyCritical
	default:
		return UrgencyNormal
	}
}

// Discount never shrinks below this fraction of the remaining range.
const minDiscountFraction = 0.02

func urgencyParams(urgency Urgency) (base, step float64) {
	switch urgency {
	case UrgencyCritical:
		return 0.35, 0.05
	case UrgencyHigh:
		return 0.30, 0.05
	case UrgencyLow:
		return 0.15, 0.03
	default:
		return 0.25, 0.05
	}
}

// Negotiate decides the next price offer and its framing. It mutates the
// session and returns the narrative for the caller. The equipment's minimum
// rate never appears in the returned text.
func Negotiate(eq inventoryx.EquipmentRecord, s *Session, intent Intent, urgency Urgency) string {
	if s.CurrentOffer == 0 {
		s.CurrentOffer = eq.DailyRate
	}

	switch intent {
	case IntentAccept:
		if s.AgreedPrice == 0 {
			s.AgreedPrice = s.CurrentOffer
			log.Info().Str("equipment_id", eq.ID).Int("agreed_price", s.AgreedPrice).Msg("price accepted")
		}
		return fmt.Sprintf("Excellent! $%d per day it is. Let's move forward with the next step.", s.AgreedPrice)

	case IntentRequestDiscount:
		s.NegotiationCount++

		if s.CurrentOffer <= eq.MinimumRate {
			return fmt.Sprintf("I understand your budget concerns. Unfortunately, $%d is the absolute lowest rate I can offer for this equipment. This is already a special rate and I really can't go any lower. Can you work with this price?", s.CurrentOffer)
		}

		base, step := urgencyParams(urgency)
		fraction := base - float64(s.NegotiationCount-1)*step
		if fraction < minDiscountFraction {
			fraction = minDiscountFraction
		}

		room := s.CurrentOffer - eq.MinimumRate
		discount := int(float64(room) * fraction)
		newOffer := s.CurrentOffer - discount
		if newOffer < eq.MinimumRate {
			newOffer = eq.MinimumRate
		}

		log.Info().
			Str("equipment_id", eq.ID).
			Int("previous_offer", s.CurrentOffer).
			Int("new_offer", newOffer).
			Int("round", s.NegotiationCount).
			Str("urgency", string(urgency)).
			Msg("lowering offer")
		s.CurrentOffer = newOffer

		switch headroom := newOffer - eq.MinimumRate; {
		case headroom < 50:
			return fmt.Sprintf("I really want to make this work for you. I can go down to $%d per day, but that's as low as I can go. This is already below our standard rate. What do you think?", newOffer)
		case headroom < 200:
			return fmt.Sprintf("I understand your situation. I can offer $%d per day. This is a very competitive rate for this equipment. Can we move forward with this?", newOffer)
		default:
			return fmt.Sprintf("I hear you. Let me see what I can do... I can offer you $%d per day. This is a special rate I'm able to provide. How does that sound?", newOffer)
		}

	default:
		return fmt.Sprintf("The current rate we're discussing is $%d per day. Is this within your budget, or would you like to see if we can adjust it further?", s.CurrentOffer)
	}
}
