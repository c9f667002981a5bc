package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchName is the authoritative match handler name registered with Nakama.
	MatchName = "dingzhu_match"

	// MatchLabelKeyOpenSeats is the label key clients filter on to find joinable matches.
	MatchLabelKeyOpenSeats = "open"
)

// Op codes for client messages and server events. Payloads are JSON.
const (
	// Client -> Server
	OpStartHand      int64 = 1
	OpDeclareTrump   int64 = 2
	OpDiscardBottom  int64 = 3
	OpPlayCards      int64 = 4
	OpRequestNewHand int64 = 5

	// Server -> Client events
	OpMatchSnapshot  int64 = 101
	OpHandStarted    int64 = 102
	OpHandDealt      int64 = 103 // sent privately
	OpTrumpDeclared  int64 = 104
	OpBottomPickedUp int64 = 105
	OpBottomSet      int64 = 106
	OpCardsPlayed    int64 = 107
	OpTrickComplete  int64 = 108
	OpHandEnded      int64 = 109
	OpPlayRejected   int64 = 110 // sent privately
	OpGameError      int64 = 111 // sent privately
)
