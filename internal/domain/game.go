package domain

import (
	"errors"
	"fmt"
	"time"
)

// Phase is the lifecycle stage of a hand.
type Phase string

const (
	PhaseDeal          Phase = "deal"
	PhaseChooseTrump   Phase = "choose_trump"
	PhaseConfirmDealer Phase = "confirm_dealer"
	PhaseDiscardBottom Phase = "discard_bottom"
	PhasePlayTrick     Phase = "play_trick"
	PhaseRoundEnd      Phase = "round_end"
)

// Team is one of the two fixed partnerships, determined by seat parity
// relative to the current dealer.
type Team string

const (
	TeamDealer    Team = "dealer"
	TeamNonDealer Team = "non_dealer"
)

// Player holds the state of one seat.
type Player struct {
	ID   string `json:"id"`
	Hand []Card `json:"hand"`
	Team Team   `json:"team"`
}

// HistoryEventType identifies entries in the append-only hand log.
type HistoryEventType string

const (
	HistoryBottomSet       HistoryEventType = "bottom_set"
	HistoryLandlordDiscard HistoryEventType = "landlord_discard"
	HistoryCardPlayed      HistoryEventType = "card_played"
	HistoryTrickComplete   HistoryEventType = "trick_complete"
)

// HistoryEvent records one action in the hand's history log.
type HistoryEvent struct {
	Type       HistoryEventType `json:"type"`
	Timestamp  int64            `json:"timestamp"`
	SeatID     string           `json:"seat_id,omitempty"`
	SeatIndex  int              `json:"seat_index,omitempty"`
	Cards      []Card           `json:"cards,omitempty"`
	TrickIndex int              `json:"trick_index,omitempty"`
}

// ScorePair tracks running captured points per team.
type ScorePair struct {
	DealerTeam    int `json:"dealer_team"`
	NonDealerTeam int `json:"non_dealer_team"`
}

// Game is the aggregate root for a single hand. Transitions never mutate
// the receiver; each returns a derived copy, so retained snapshots stay
// valid for replay and undo. There is exactly one logical writer at a time.
type Game struct {
	Players      []Player       `json:"players"`
	CurrentSeat  int            `json:"current_seat"`
	DealerIndex  int            `json:"dealer_index"`
	TrumpSuit    Suit           `json:"trump_suit"`
	Config       Config         `json:"config"`
	CurrentTrick []PlayedCard   `json:"current_trick"`
	Tricks       []TrickResult  `json:"tricks"`
	Scores       ScorePair      `json:"scores"`
	BottomCards  []Card         `json:"bottom_cards,omitempty"`
	FirstTwo     *TwoCandidate  `json:"first_two,omitempty"`
	History      []HistoryEvent `json:"history"`
	Phase        Phase          `json:"phase"`
}

const (
	numSeats   = 4
	handSize   = 12
	bottomSize = 6
)

// NewGame shuffles a fresh deck and deals a new hand: 12 cards to each of
// four seats round-robin, 6 reserved as the bottom. The supplied config is
// the declared trump for the hand; teams derive from dealerIndex.
func NewGame(seatIDs []string, cfg Config, dealerIndex int) (*Game, error) {
	return NewGameWithDeck(seatIDs, cfg, dealerIndex, ShuffleDeck(NewDeck(), nil))
}

// NewGameWithDeck deals from an already shuffled deck. It is the
// deterministic entry point used by the app service and tests.
func NewGameWithDeck(seatIDs []string, cfg Config, dealerIndex int, deck []Card) (*Game, error) {
	if len(seatIDs) != numSeats {
		return nil, errors.New("game requires exactly 4 players")
	}
	if dealerIndex < 0 || dealerIndex > 3 {
		return nil, errors.New("dealer index must be between 0 and 3")
	}
	if cfg.HasThreeFan && cfg.HasFiveFan {
		return nil, errors.New("three fan and five fan cannot both be active")
	}
	if cfg.TrumpSuit == JokerSuit {
		return nil, errors.New("trump suit cannot be the joker suit")
	}

	deal := DealWithTwos(deck, numSeats, handSize, bottomSize, dealerIndex)

	players := make([]Player, numSeats)
	for i, id := range seatIDs {
		players[i] = Player{
			ID:   id,
			Hand: deal.Hands[i],
			Team: teamOf(i, dealerIndex),
		}
	}

	return &Game{
		Players:     players,
		CurrentSeat: dealerIndex,
		DealerIndex: dealerIndex,
		TrumpSuit:   cfg.TrumpSuit,
		Config:      cfg,
		BottomCards: deal.BottomCards,
		FirstTwo:    deal.FirstTwo,
		History:     []HistoryEvent{},
		Phase:       PhaseDeal,
	}, nil
}

func teamOf(seat, dealerIndex int) Team {
	if seat == dealerIndex || seat == (dealerIndex+2)%numSeats {
		return TeamDealer
	}
	return TeamNonDealer
}

// SeatOf returns the seat index for a player id, or -1 if unknown.
func (g *Game) SeatOf(seatID string) int {
	for i, p := range g.Players {
		if p.ID == seatID {
			return i
		}
	}
	return -1
}

// DealerTeamSeat reports whether the seat belongs to the dealer's team.
// Membership is computed from DealerIndex, never from a per-seat tag,
// because the dealer rotates across hands.
func (g *Game) DealerTeamSeat(seat int) bool {
	return seat == g.DealerIndex || seat == (g.DealerIndex+2)%numSeats
}

// clone copies the game for derivation. Hands are copied per seat; the
// append-only slices share backing arrays until appended to via copies.
func (g *Game) clone() *Game {
	next := *g
	next.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		next.Players[i] = Player{ID: p.ID, Hand: append([]Card{}, p.Hand...), Team: p.Team}
	}
	next.CurrentTrick = append([]PlayedCard{}, g.CurrentTrick...)
	next.Tricks = append([]TrickResult{}, g.Tricks...)
	next.History = append([]HistoryEvent{}, g.History...)
	next.BottomCards = append([]Card{}, g.BottomCards...)
	return &next
}

// FinishDeal closes the dealing phase once every seat has its cards.
func (g *Game) FinishDeal() (*Game, error) {
	if g.Phase != PhaseDeal {
		return nil, fmt.Errorf("cannot finish deal in phase %q", g.Phase)
	}
	next := g.clone()
	next.Phase = PhaseChooseTrump
	return next, nil
}

// DeclareTrump fixes the trump suit for the hand (定主). The declaring seat
// becomes the dealer; teams are recomputed around it.
func (g *Game) DeclareTrump(seatID string, suit Suit) (*Game, error) {
	if g.Phase != PhaseDeal && g.Phase != PhaseChooseTrump {
		return nil, fmt.Errorf("cannot declare trump in phase %q", g.Phase)
	}
	if suit == JokerSuit {
		return nil, errors.New("trump suit cannot be the joker suit")
	}
	seat := g.SeatOf(seatID)
	if seat < 0 {
		return nil, errors.New("player not found")
	}

	next := g.clone()
	next.TrumpSuit = suit
	next.Config.TrumpSuit = suit
	next.DealerIndex = seat
	next.CurrentSeat = seat
	for i := range next.Players {
		next.Players[i].Team = teamOf(i, seat)
	}
	next.Phase = PhaseConfirmDealer
	return next, nil
}

// PickUpBottom hands the reserved bottom cards to the dealer, who must then
// discard the same number back down.
func (g *Game) PickUpBottom() (*Game, error) {
	if g.Phase != PhaseConfirmDealer && g.Phase != PhaseChooseTrump {
		return nil, fmt.Errorf("cannot pick up bottom in phase %q", g.Phase)
	}
	next := g.clone()
	dealer := &next.Players[next.DealerIndex]
	dealer.Hand = append(dealer.Hand, next.BottomCards...)
	next.BottomCards = nil
	next.Phase = PhaseDiscardBottom
	return next, nil
}

// ApplyDealerDiscard removes exactly six non-point cards from the dealer's
// hand as the final bottom (扣底牌) and hands the first lead to the dealer.
func (g *Game) ApplyDealerDiscard(seatID string, cards []Card) (*Game, error) {
	if g.Phase != PhaseDiscardBottom {
		return nil, fmt.Errorf("cannot discard bottom in phase %q", g.Phase)
	}
	seat := g.SeatOf(seatID)
	if seat < 0 {
		return nil, errors.New("player not found")
	}
	if seat != g.DealerIndex {
		return nil, errors.New("only the dealer may discard the bottom")
	}
	if len(cards) != bottomSize {
		return nil, fmt.Errorf("bottom discard requires exactly %d cards", bottomSize)
	}
	hand := g.Players[seat].Hand
	for _, c := range cards {
		if !ContainsCard(hand, c) {
			return nil, fmt.Errorf("card %s not in hand", c)
		}
		if c.Points() > 0 {
			return nil, fmt.Errorf("cannot discard point card %s", c)
		}
	}

	next := g.clone()
	next.Players[seat].Hand = RemoveCards(next.Players[seat].Hand, cards)
	next.BottomCards = append([]Card{}, cards...)
	now := time.Now().UnixMilli()
	next.History = append(next.History,
		HistoryEvent{Type: HistoryLandlordDiscard, Timestamp: now, SeatID: seatID, SeatIndex: seat, Cards: append([]Card{}, cards...)},
		HistoryEvent{Type: HistoryBottomSet, Timestamp: now, SeatID: seatID, SeatIndex: seat, Cards: append([]Card{}, cards...)},
	)
	next.CurrentSeat = seat
	next.CurrentTrick = nil
	next.Phase = PhasePlayTrick
	return next, nil
}

// requiredGroupSize is the number of cards each seat owes the current
// trick: 1 normally, k when the leader threw k cards.
func (g *Game) requiredGroupSize() int {
	if len(g.CurrentTrick) == 0 {
		return 1
	}
	leader := g.CurrentTrick[0].SeatIndex
	n := 0
	for _, pc := range g.CurrentTrick {
		if pc.SeatIndex == leader {
			n++
		}
	}
	return n
}

// trickComplete reports whether all four seats have contributed their
// required card count.
func (g *Game) trickComplete() bool {
	required := g.requiredGroupSize()
	counts := make(map[int]int, numSeats)
	for _, pc := range g.CurrentTrick {
		counts[pc.SeatIndex]++
	}
	if len(counts) != numSeats {
		return false
	}
	for _, n := range counts {
		if n != required {
			return false
		}
	}
	return true
}

// CheckPlay reports whether the seat may legally play the cards against the
// current trick. It is the soft-rejection probe for both single and
// multi-card plays; callers can surface the message and let the player
// re-select.
func (g *Game) CheckPlay(seatID string, cards []Card) ValidationResult {
	if len(cards) == 0 {
		return invalid("no cards selected")
	}
	if g.Phase != PhasePlayTrick {
		return invalid("not in play phase")
	}
	if len(cards) == 1 {
		if required := g.requiredGroupSize(); required > 1 {
			return invalid(fmt.Sprintf("必须出%d张牌", required))
		}
		return ValidatePlay(g, seatID, cards[0])
	}

	seat := g.SeatOf(seatID)
	if seat < 0 {
		return invalid("player not found")
	}
	if seat != g.CurrentSeat {
		return invalid("not your turn")
	}
	hand := g.Players[seat].Hand
	for _, c := range cards {
		if !ContainsCard(hand, c) {
			return invalid("card not in hand")
		}
	}
	if len(g.CurrentTrick) == 0 {
		return ValidateThrow(cards, hand, g.TrumpSuit, g.Config, g.Tricks, g.allHands())
	}
	return g.validateFollowGroup(seat, cards)
}

// PlayCard is the single-card transition.
func (g *Game) PlayCard(seatID string, c Card) (*Game, error) {
	return g.PlayCards(seatID, []Card{c})
}

// PlayCards validates and applies a play of one or more cards: the cards
// leave the hand, join the current trick, and the trick closes atomically
// once every seat has contributed its required count. A multi-card lead
// must pass the 甩牌 completeness proof over all four hands; a multi-card
// follow must satisfy the follow obligations for the leader's suit and
// count.
func (g *Game) PlayCards(seatID string, cards []Card) (*Game, error) {
	if g.Phase != PhasePlayTrick {
		return nil, fmt.Errorf("cannot play cards in phase %q", g.Phase)
	}
	if result := g.CheckPlay(seatID, cards); !result.Valid {
		return nil, fmt.Errorf("invalid card play: %s", result.Message)
	}
	return g.applyPlay(seatID, cards)
}

// validateFollowGroup enforces the follower obligations of a multi-card
// trick: exact count, and as many cards of the led suit as the hand can
// supply.
func (g *Game) validateFollowGroup(seat int, cards []Card) ValidationResult {
	required := g.requiredGroupSize()
	if len(cards) != required {
		return invalid(fmt.Sprintf("必须出%d张牌", required))
	}

	leadSuit, ok := EffectiveSuit(g.CurrentTrick[0].Card, g.TrumpSuit, g.Config)
	if !ok {
		return valid
	}

	hand := g.Players[seat].Hand
	heldOfSuit := 0
	for _, c := range hand {
		if suit, ok := EffectiveSuit(c, g.TrumpSuit, g.Config); ok && suit == leadSuit {
			heldOfSuit++
		}
	}
	playedOfSuit := 0
	for _, c := range cards {
		if suit, ok := EffectiveSuit(c, g.TrumpSuit, g.Config); ok && suit == leadSuit {
			playedOfSuit++
		}
	}

	owed := heldOfSuit
	if owed > required {
		owed = required
	}
	if playedOfSuit < owed {
		name := leadSuit.DisplayName()
		return invalid("有" + name + "必须先出" + name)
	}
	return valid
}

// applyPlay removes the cards from the hand, appends them to the trick,
// and either advances the turn or closes the trick.
func (g *Game) applyPlay(seatID string, cards []Card) (*Game, error) {
	seat := g.SeatOf(seatID)
	next := g.clone()
	next.Players[seat].Hand = RemoveCards(next.Players[seat].Hand, cards)
	for _, c := range cards {
		next.CurrentTrick = append(next.CurrentTrick, PlayedCard{Card: c, SeatID: seatID, SeatIndex: seat})
	}
	next.History = append(next.History, HistoryEvent{
		Type:      HistoryCardPlayed,
		Timestamp: time.Now().UnixMilli(),
		SeatID:    seatID,
		SeatIndex: seat,
		Cards:     append([]Card{}, cards...),
	})

	if next.trickComplete() {
		next.closeTrick()
	} else {
		next.CurrentSeat = (seat + 1) % numSeats
	}
	return next, nil
}

// closeTrick resolves the completed trick atomically: winner, points,
// score attribution by dealer parity, trick log, and next leader.
func (g *Game) closeTrick() {
	leader := g.CurrentTrick[0].SeatIndex
	winner := ResolveTrick(g.CurrentTrick, g.TrumpSuit, g.Config, leader)
	points := TrickPoints(g.CurrentTrick)

	result := TrickResult{
		Cards:       g.CurrentTrick,
		WinnerIndex: winner,
		WinnerID:    g.Players[winner].ID,
		Points:      points,
	}
	g.Tricks = append(g.Tricks, result)
	if g.DealerTeamSeat(winner) {
		g.Scores.DealerTeam += points
	} else {
		g.Scores.NonDealerTeam += points
	}
	g.History = append(g.History, HistoryEvent{
		Type:       HistoryTrickComplete,
		Timestamp:  time.Now().UnixMilli(),
		SeatIndex:  winner,
		SeatID:     g.Players[winner].ID,
		TrickIndex: len(g.Tricks) - 1,
	})
	g.CurrentTrick = nil
	g.CurrentSeat = winner

	if g.handDone() {
		g.Phase = PhaseRoundEnd
	}
}

func (g *Game) handDone() bool {
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// allHands returns the four current hands in seat order.
func (g *Game) allHands() [][]Card {
	hands := make([][]Card, len(g.Players))
	for i, p := range g.Players {
		hands[i] = p.Hand
	}
	return hands
}

// VerifyDeckInvariant checks that the union of all hands, all played cards
// and the bottom is exactly one full 54-card deck with no duplicates.
// A violation is a programmer error, reported as a hard failure.
func (g *Game) VerifyDeckInvariant() error {
	seen := make(map[Card]int, DeckSize)
	count := 0
	add := func(c Card) {
		seen[c]++
		count++
	}
	for _, p := range g.Players {
		for _, c := range p.Hand {
			add(c)
		}
	}
	for _, pc := range g.CurrentTrick {
		add(pc.Card)
	}
	for _, t := range g.Tricks {
		for _, pc := range t.Cards {
			add(pc.Card)
		}
	}
	for _, c := range g.BottomCards {
		add(c)
	}
	if count != DeckSize {
		return fmt.Errorf("deck invariant violated: %d cards accounted for", count)
	}
	for c, n := range seen {
		if n != 1 {
			return fmt.Errorf("deck invariant violated: card %s appears %d times", c, n)
		}
	}
	return nil
}
