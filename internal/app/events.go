package app

import "dingzhu/internal/domain"

// EventKind identifies emitted domain events for transport dispatch.
type EventKind string

const (
	EventHandStarted     EventKind = "hand_started"
	EventHandDealt       EventKind = "hand_dealt"
	EventTrumpDeclared   EventKind = "trump_declared"
	EventBottomPickedUp  EventKind = "bottom_picked_up"
	EventBottomDiscarded EventKind = "bottom_discarded"
	EventCardsPlayed     EventKind = "cards_played"
	EventTrickComplete   EventKind = "trick_complete"
	EventHandEnded       EventKind = "hand_ended"
	EventPlayRejected    EventKind = "play_rejected"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type HandStartedPayload struct {
	HandID      string        `json:"hand_id"`
	Phase       domain.Phase  `json:"phase"`
	DealerIndex int           `json:"dealer_index"`
	TrumpSuit   string        `json:"trump_suit"`
	Config      domain.Config `json:"config"`
}

type HandDealtPayload struct {
	HandID   string        `json:"hand_id"`
	UserID   string        `json:"user_id"`
	Hand     []domain.Card `json:"hand"`
	FirstTwo bool          `json:"first_two"`
}

type TrumpDeclaredPayload struct {
	UserID      string `json:"user_id"`
	TrumpSuit   string `json:"trump_suit"`
	DealerIndex int    `json:"dealer_index"`
}

type BottomPickedUpPayload struct {
	UserID   string `json:"user_id"`
	NumCards int    `json:"num_cards"`
}

type BottomDiscardedPayload struct {
	UserID    string `json:"user_id"`
	NumCards  int    `json:"num_cards"`
	LeadIndex int    `json:"lead_index"`
}

type CardsPlayedPayload struct {
	UserID    string        `json:"user_id"`
	Cards     []domain.Card `json:"cards"`
	NextIndex int           `json:"next_index"`
}

type TrickCompletePayload struct {
	WinnerID    string           `json:"winner_id"`
	WinnerIndex int              `json:"winner_index"`
	Points      int              `json:"points"`
	Scores      domain.ScorePair `json:"scores"`
}

type HandEndedPayload struct {
	Scores domain.HandScores `json:"scores"`
}

type PlayRejectedPayload struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}
