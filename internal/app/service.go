package app

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"dingzhu/internal/domain"
)

// Service contains the 小二定主 use-cases operating on domain state. Each
// use-case derives a new game snapshot and a batch of events for dispatch.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrWrongSeatCount = errors.New("hand requires exactly 4 seated players")
	ErrUnknownPlayer  = errors.New("player not found")
	ErrHandNotActive  = errors.New("hand not in an actionable phase")
)

// StartHand shuffles, deals a new hand, and emits a broadcast start event
// plus a private hand event per seat. The seat holding the first dealt 2
// learns it is the trump candidate.
func (s *Service) StartHand(seatIDs []string, cfg domain.Config, dealerIndex int) (*domain.Game, []Event, error) {
	if len(seatIDs) != 4 {
		return nil, nil, ErrWrongSeatCount
	}

	deck := domain.ShuffleDeck(domain.NewDeck(), s.rng)
	game, err := domain.NewGameWithDeck(seatIDs, cfg, dealerIndex, deck)
	if err != nil {
		return nil, nil, err
	}

	handID := uuid.NewString()
	log.WithFields(log.Fields{
		"hand_id": handID,
		"dealer":  dealerIndex,
		"trump":   cfg.TrumpSuit.String(),
	}).Info("hand started")

	events := make([]Event, 0, len(game.Players)+1)
	events = append(events, Event{
		Kind: EventHandStarted,
		Payload: HandStartedPayload{
			HandID:      handID,
			Phase:       game.Phase,
			DealerIndex: game.DealerIndex,
			TrumpSuit:   game.TrumpSuit.String(),
			Config:      game.Config,
		},
	})
	for i, p := range game.Players {
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				HandID:   handID,
				UserID:   p.ID,
				Hand:     p.Hand,
				FirstTwo: game.FirstTwo != nil && game.FirstTwo.SeatIndex == i,
			},
			Recipients: []string{p.ID},
		})
	}

	game, err = game.FinishDeal()
	if err != nil {
		return nil, nil, err
	}
	return game, events, nil
}

// DeclareTrump fixes the trump suit and moves dealership to the declarer.
func (s *Service) DeclareTrump(game *domain.Game, actorID string, suit domain.Suit) (*domain.Game, []Event, error) {
	next, err := game.DeclareTrump(actorID, suit)
	if err != nil {
		return nil, nil, err
	}
	log.WithFields(log.Fields{
		"user":  actorID,
		"trump": suit.String(),
	}).Info("trump declared")

	events := []Event{{
		Kind: EventTrumpDeclared,
		Payload: TrumpDeclaredPayload{
			UserID:      actorID,
			TrumpSuit:   suit.String(),
			DealerIndex: next.DealerIndex,
		},
	}}
	return next, events, nil
}

// PickUpBottom hands the bottom cards to the dealer. The refreshed dealer
// hand goes out privately; everyone else only learns the pickup happened.
func (s *Service) PickUpBottom(game *domain.Game) (*domain.Game, []Event, error) {
	next, err := game.PickUpBottom()
	if err != nil {
		return nil, nil, err
	}
	dealer := next.Players[next.DealerIndex]
	events := []Event{
		{
			Kind:    EventBottomPickedUp,
			Payload: BottomPickedUpPayload{UserID: dealer.ID, NumCards: len(dealer.Hand)},
		},
		{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: dealer.ID, Hand: dealer.Hand},
			Recipients: []string{dealer.ID},
		},
	}
	return next, events, nil
}

// DiscardBottom applies the dealer's six-card discard and opens play.
func (s *Service) DiscardBottom(game *domain.Game, actorID string, cards []domain.Card) (*domain.Game, []Event, error) {
	next, err := game.ApplyDealerDiscard(actorID, cards)
	if err != nil {
		return nil, nil, err
	}
	log.WithFields(log.Fields{"user": actorID}).Info("bottom discarded")

	events := []Event{{
		Kind: EventBottomDiscarded,
		Payload: BottomDiscardedPayload{
			UserID:    actorID,
			NumCards:  len(cards),
			LeadIndex: next.CurrentSeat,
		},
	}}
	return next, events, nil
}

// ValidatePlay probes whether a single-card play would be accepted, without
// applying it. Clients use it to grey out illegal cards.
func (s *Service) ValidatePlay(game *domain.Game, actorID string, c domain.Card) domain.ValidationResult {
	return domain.ValidatePlay(game, actorID, c)
}

// ValidateThrow probes a multi-card play, lead or follow, the same way.
func (s *Service) ValidateThrow(game *domain.Game, actorID string, cards []domain.Card) domain.ValidationResult {
	return game.CheckPlay(actorID, cards)
}

// Play validates and applies a play of one or more cards. Rule violations
// the player can correct come back as a targeted rejection event on the
// unchanged game; structural failures are returned as errors.
func (s *Service) Play(game *domain.Game, actorID string, cards []domain.Card) (*domain.Game, []Event, error) {
	if game.Phase != domain.PhasePlayTrick {
		return nil, nil, ErrHandNotActive
	}
	if game.SeatOf(actorID) < 0 {
		return nil, nil, ErrUnknownPlayer
	}

	if result := game.CheckPlay(actorID, cards); !result.Valid {
		events := []Event{{
			Kind:       EventPlayRejected,
			Payload:    PlayRejectedPayload{UserID: actorID, Message: result.Message},
			Recipients: []string{actorID},
		}}
		return game, events, nil
	}

	next, err := game.PlayCards(actorID, cards)
	if err != nil {
		return nil, nil, err
	}

	events := []Event{{
		Kind: EventCardsPlayed,
		Payload: CardsPlayedPayload{
			UserID:    actorID,
			Cards:     cards,
			NextIndex: next.CurrentSeat,
		},
	}}

	if len(next.Tricks) > len(game.Tricks) {
		trick := next.Tricks[len(next.Tricks)-1]
		events = append(events, Event{
			Kind: EventTrickComplete,
			Payload: TrickCompletePayload{
				WinnerID:    trick.WinnerID,
				WinnerIndex: trick.WinnerIndex,
				Points:      trick.Points,
				Scores:      next.Scores,
			},
		})
	}

	if next.Phase == domain.PhaseRoundEnd {
		scores := domain.Scores(next)
		log.WithFields(log.Fields{
			"dealer_points":     scores.DealerTeam.TotalPoints,
			"non_dealer_points": scores.NonDealerTeam.TotalPoints,
		}).Info("hand ended")
		events = append(events, Event{
			Kind:    EventHandEnded,
			Payload: HandEndedPayload{Scores: scores},
		})
	}
	return next, events, nil
}
