package domain

// ValidationResult is the soft-rejection channel: rule violations a player
// can correct by re-selecting cards. It is returned by value, never as an
// error, so callers can re-prompt.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func invalid(message string) ValidationResult {
	return ValidationResult{Valid: false, Message: message}
}

var valid = ValidationResult{Valid: true}

// EffectiveSuit returns the suit a card counts as for follow-suit purposes.
// Trump cards of every kind (fixed, fan, Jacks, 2s, trump suit, jokers)
// have no natural suit and report ok=false.
func EffectiveSuit(c Card, trump Suit, cfg Config) (Suit, bool) {
	if IsTrump(c, trump, cfg) {
		return 0, false
	}
	return c.Suit, true
}

// LeadingSuit returns the effective suit of the first card in the trick,
// or ok=false for an empty trick or a trump lead.
func LeadingSuit(trick []PlayedCard, trump Suit, cfg Config) (Suit, bool) {
	if len(trick) == 0 {
		return 0, false
	}
	return EffectiveSuit(trick[0].Card, trump, cfg)
}

// CanFollowSuit reports whether the hand holds any non-trump card of the
// leading suit.
func CanFollowSuit(hand []Card, lead Suit, trump Suit, cfg Config) bool {
	for _, c := range hand {
		if c.Suit == lead && !IsTrump(c, trump, cfg) {
			return true
		}
	}
	return false
}

// HasTrump reports whether the hand holds any trump card.
func HasTrump(hand []Card, trump Suit, cfg Config) bool {
	for _, c := range hand {
		if IsTrump(c, trump, cfg) {
			return true
		}
	}
	return false
}

// ValidatePlay checks whether the seat may legally play the card against
// the current trick. This is the local single-seat probe: it enforces turn
// order, card ownership, and the follow-suit rules, and reports rule
// violations as soft rejections.
func ValidatePlay(g *Game, seatID string, c Card) ValidationResult {
	seat := g.SeatOf(seatID)
	if seat < 0 {
		return invalid("player not found")
	}
	if seat != g.CurrentSeat {
		return invalid("not your turn")
	}

	hand := g.Players[seat].Hand
	if !ContainsCard(hand, c) {
		return invalid("card not in hand")
	}

	// Leading: any card is legal.
	if len(g.CurrentTrick) == 0 {
		return valid
	}

	leadCard := g.CurrentTrick[0].Card
	leadIsTrump := IsTrump(leadCard, g.TrumpSuit, g.Config)
	cardIsTrump := IsTrump(c, g.TrumpSuit, g.Config)

	if leadIsTrump {
		if !cardIsTrump {
			// Must play trump if any other trump remains in hand.
			for _, h := range hand {
				if h != c && IsTrump(h, g.TrumpSuit, g.Config) {
					return invalid("must play trump when leading card is trump")
				}
			}
		}
		return valid
	}

	lead, ok := LeadingSuit(g.CurrentTrick, g.TrumpSuit, g.Config)
	if !ok {
		return valid
	}

	if CanFollowSuit(hand, lead, g.TrumpSuit, g.Config) {
		if suit, ok := EffectiveSuit(c, g.TrumpSuit, g.Config); !ok || suit != lead {
			name := lead.DisplayName()
			return invalid("有" + name + "必须先出" + name)
		}
	}
	return valid
}
