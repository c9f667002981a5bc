package domain

import (
	"fmt"
	"math/rand"
)

// Suit identifies one of the four French suits, or the joker pseudo-suit.
type Suit int

const (
	Spade Suit = iota
	Heart
	Club
	Diamond
	JokerSuit
)

// String returns the short wire code for the suit.
func (s Suit) String() string {
	switch s {
	case Spade:
		return "S"
	case Heart:
		return "H"
	case Club:
		return "C"
	case Diamond:
		return "D"
	case JokerSuit:
		return "J"
	default:
		return "?"
	}
}

// DisplayName returns the Chinese suit name used in player-facing messages.
func (s Suit) DisplayName() string {
	switch s {
	case Spade:
		return "黑桃"
	case Heart:
		return "红桃"
	case Club:
		return "梅花"
	case Diamond:
		return "方片"
	case JokerSuit:
		return "王牌"
	default:
		return "?"
	}
}

// Rank is the card rank: 2..10 at face value, 11=J, 12=Q, 13=K, 14=A,
// plus the two joker ranks. Joker ranks only ever pair with JokerSuit.
type Rank int

const (
	Jack       Rank = 11
	Queen      Rank = 12
	King       Rank = 13
	Ace        Rank = 14
	SmallJoker Rank = 15
	BigJoker   Rank = 16
)

// String renders the rank as it appears on a card face.
func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	case SmallJoker:
		return "小王"
	case BigJoker:
		return "大王"
	default:
		return fmt.Sprintf("%d", int(r))
	}
}

// Card is a single playing card. Cards are immutable values; equality is
// by (Suit, Rank).
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (c Card) String() string {
	if c.Suit == JokerSuit {
		return c.Rank.String()
	}
	return c.Suit.DisplayName() + c.Rank.String()
}

// IsJoker reports whether the card is one of the two jokers.
func (c Card) IsJoker() bool {
	return c.Suit == JokerSuit
}

// Points returns the captured-point value of the card: 5s are worth 5,
// 10s and Ks are worth 10, everything else is worth nothing.
func (c Card) Points() int {
	switch c.Rank {
	case 5:
		return 5
	case 10, King:
		return 10
	default:
		return 0
	}
}

// DeckSize is the number of cards in a full deck: 13 ranks x 4 suits + 2 jokers.
const DeckSize = 54

// NewDeck returns an ordered full 54-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range []Suit{Spade, Heart, Club, Diamond} {
		for r := Rank(2); r <= Ace; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	deck = append(deck, Card{Suit: JokerSuit, Rank: SmallJoker})
	deck = append(deck, Card{Suit: JokerSuit, Rank: BigJoker})
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck. A nil rng falls
// back to the shared math/rand source.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng != nil {
		rng.Shuffle(len(out), swap)
	} else {
		rand.Shuffle(len(out), swap)
	}
	return out
}

// TwoCandidate records the seat that received the first non-joker 2 during
// dealing, giving that seat the option to declare its suit as trump (定主).
type TwoCandidate struct {
	SeatIndex int
	Suit      Suit
}

// DealResult is the outcome of dealing a shuffled deck round-robin.
type DealResult struct {
	Hands       [][]Card
	BottomCards []Card
	FirstTwo    *TwoCandidate
}

// DealWithTwos deals handSize cards to each of numPlayers round-robin,
// starting at startSeat, reserving numBottom cards as the bottom. It also
// tracks the first non-joker 2 dealt.
func DealWithTwos(deck []Card, numPlayers, handSize, numBottom, startSeat int) DealResult {
	hands := make([][]Card, numPlayers)
	for i := range hands {
		hands[i] = make([]Card, 0, handSize)
	}

	var firstTwo *TwoCandidate
	total := numPlayers * handSize
	for i := 0; i < total && i < len(deck); i++ {
		card := deck[i]
		seat := (startSeat + i) % numPlayers
		hands[seat] = append(hands[seat], card)
		if firstTwo == nil && card.Rank == 2 {
			firstTwo = &TwoCandidate{SeatIndex: seat, Suit: card.Suit}
		}
	}

	bottom := make([]Card, 0, numBottom)
	if total+numBottom <= len(deck) {
		bottom = append(bottom, deck[total:total+numBottom]...)
	}

	return DealResult{Hands: hands, BottomCards: bottom, FirstTwo: firstTwo}
}

// RemoveCards removes the provided cards from a hand and returns a new hand.
// The input hand is left untouched.
func RemoveCards(hand []Card, played []Card) []Card {
	out := append([]Card{}, hand...)
	for _, pc := range played {
		for i := 0; i < len(out); i++ {
			if out[i] == pc {
				out = append(out[:i], out[i+1:]...)
				break
			}
		}
	}
	return out
}

// ContainsCard reports whether the hand holds the exact card.
func ContainsCard(hand []Card, c Card) bool {
	for _, h := range hand {
		if h == c {
			return true
		}
	}
	return false
}
