package domain

// Config fixes the trump declaration for one hand. It is immutable once the
// hand begins. The two fan extensions are mutually exclusive by house rule.
type Config struct {
	TrumpSuit   Suit `json:"trump_suit"`
	HasThreeFan bool `json:"has_three_fan"`
	HasFiveFan  bool `json:"has_five_fan"`
}

// TrumpKind is the trump category of a card under a declared trump
// configuration. Kinds are listed weakest-first so that the ordinal
// ordering of the enum is the strength ordering between categories.
type TrumpKind int

const (
	// NotTrump marks a plain suited card that follows its own suit.
	NotTrump TrumpKind = iota
	// TrumpSuitCard is an ordinary card of the declared trump suit.
	TrumpSuitCard
	// OffSuitTwo is a 2 outside the trump suit.
	OffSuitTwo
	// TrumpSuitTwo is the 2 of the declared trump suit.
	TrumpSuitTwo
	// OffSuitJack is a Jack outside the trump suit.
	OffSuitJack
	// TrumpSuitJack is the Jack of the declared trump suit.
	TrumpSuitJack
	// SpadeQueenTrump is the fixed trump ♠Q.
	SpadeQueenTrump
	// SmallJokerTrump is the small joker.
	SmallJokerTrump
	// BigJokerTrump is the big joker.
	BigJokerTrump
	// ThreeFanTrump covers all four 3s when 三反 is active.
	ThreeFanTrump
	// FiveFanTrump covers the three off-diamond 5s when 五反 is active.
	FiveFanTrump
	// DiamondFiveTrump is the fixed top trump ♦5.
	DiamondFiveTrump
)

// IsFixedTrump reports whether the card is trump under every configuration:
// ♦5, both jokers, and ♠Q.
func IsFixedTrump(c Card) bool {
	if c.Suit == Diamond && c.Rank == 5 {
		return true
	}
	if c.Suit == JokerSuit {
		return true
	}
	if c.Suit == Spade && c.Rank == Queen {
		return true
	}
	return false
}

// IsFanTrump reports whether the card is trump through an active fan
// extension: all 5s except ♦5 under 五反, all 3s under 三反.
func IsFanTrump(c Card, cfg Config) bool {
	if cfg.HasFiveFan && c.Rank == 5 && c.Suit != Diamond {
		return true
	}
	if cfg.HasThreeFan && c.Rank == 3 {
		return true
	}
	return false
}

// ClassifyTrump places a card into its trump category. Checks run in
// strength order so that overlapping memberships (a trump-suit 3 under
// 三反, ♠Q under a spade trump) resolve to the stronger category.
func ClassifyTrump(c Card, trump Suit, cfg Config) TrumpKind {
	if c.Suit == Diamond && c.Rank == 5 {
		return DiamondFiveTrump
	}
	if cfg.HasFiveFan && c.Rank == 5 && c.Suit != Diamond {
		return FiveFanTrump
	}
	if cfg.HasThreeFan && c.Rank == 3 {
		return ThreeFanTrump
	}
	if c.Suit == JokerSuit {
		if c.Rank == BigJoker {
			return BigJokerTrump
		}
		return SmallJokerTrump
	}
	if c.Suit == Spade && c.Rank == Queen {
		return SpadeQueenTrump
	}
	if c.Rank == Jack {
		if c.Suit == trump {
			return TrumpSuitJack
		}
		return OffSuitJack
	}
	if c.Rank == 2 {
		if c.Suit == trump {
			return TrumpSuitTwo
		}
		return OffSuitTwo
	}
	if c.Suit == trump {
		return TrumpSuitCard
	}
	return NotTrump
}

// IsTrump reports whether the card is trump (主牌) under the declaration.
func IsTrump(c Card, trump Suit, cfg Config) bool {
	return ClassifyTrump(c, trump, cfg) != NotTrump
}

// suitPriority breaks ties between off-suit Jacks or 2s of equal standing:
// Spade > Heart > Club > Diamond.
func suitPriority(s Suit) int {
	switch s {
	case Spade:
		return 3
	case Heart:
		return 2
	case Club:
		return 1
	default:
		return 0
	}
}

// Strength returns the comparable strength of a card under the trump
// declaration. Higher is stronger. The ordering is total across all trump
// cards; non-trump cards compare by rank alone and are only meaningful
// against cards of the same effective suit. playOrder, when >= 0, breaks
// ties between otherwise equal off-suit Jacks or 2s in favor of the
// earlier play; pass -1 when no play order applies. Suit priority always
// dominates play order, matching the category ladder exactly:
// ♦5 > 五反 > 三反 > 大王 > 小王 > ♠Q > trump J > off-suit J > trump 2 >
// off-suit 2 > other trump-suit cards > non-trump.
func Strength(c Card, trump Suit, cfg Config, playOrder int) int {
	kind := ClassifyTrump(c, trump, cfg)
	switch kind {
	case NotTrump:
		return int(c.Rank)
	case TrumpSuitCard:
		return int(kind)<<10 | int(c.Rank)
	case OffSuitJack, OffSuitTwo:
		bonus := 0
		if playOrder >= 0 && playOrder < 16 {
			bonus = 15 - playOrder
		}
		return int(kind)<<10 | suitPriority(c.Suit)<<4 | bonus
	default:
		return int(kind) << 10
	}
}
