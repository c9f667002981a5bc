package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"dingzhu/internal/app"
	"dingzhu/internal/bot"
	"dingzhu/internal/config"
	"dingzhu/internal/domain"
	"dingzhu/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchLabel is the JSON label Nakama indexes for match listing.
type MatchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats          [4]string                   `json:"seats"`            // User IDs, empty string means seat is empty
	OwnerSeat      int                         `json:"owner_seat"`       // Seat index of the match owner
	LastDealerSeat int                         `json:"last_dealer_seat"` // Dealer of the previous hand, -1 before the first
	Tick           int64                       `json:"tick"`
	Presences      map[string]runtime.Presence `json:"-"` // UserId -> Presence for targeted messaging
	App            *app.Service                `json:"-"`
	Game           *domain.Game                `json:"-"` // Current hand state (nil in the lobby)

	ThreeFan bool `json:"three_fan"` // 三反 active for hands at this table
	FiveFan  bool `json:"five_fan"`  // 五反 active for hands at this table

	BotsEnabled         bool                  `json:"bots_enabled"`
	BotMinDelay         int                   `json:"bot_min_delay"`
	BotMaxDelay         int                   `json:"bot_max_delay"`
	BotAutoFillDelay    int                   `json:"bot_auto_fill_delay"`
	BotWaitUntil        int64                 `json:"bot_wait_until"`
	LastShortHandedTick int64                 `json:"last_short_handed_tick"`
	Bots                map[string]*bot.Agent `json:"-"`

	TurnTimeout  int   `json:"turn_timeout"`  // Seconds an idle human holds the turn, 0 disables the clock
	TurnDeadline int64 `json:"turn_deadline"` // Tick at which the current human turn expires

	Economy ports.EconomyPort `json:"-"`
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat == userID {
			return i
		}
	}
	return -1
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// Client request payloads.

type StartHandRequest struct {
	ThreeFan *bool `json:"three_fan,omitempty"`
	FiveFan  *bool `json:"five_fan,omitempty"`
}

type DeclareTrumpRequest struct {
	Suit string `json:"suit"`
}

type DiscardBottomRequest struct {
	Cards []WireCard `json:"cards"`
}

type PlayCardsRequest struct {
	Cards []WireCard `json:"cards"`
}

// Server payloads not derived from app events.

type PlayerState struct {
	UserID         string `json:"user_id"`
	Seat           int    `json:"seat"`
	IsOwner        bool   `json:"is_owner"`
	CardsRemaining int    `json:"cards_remaining"`
	DisplayName    string `json:"display_name"`
}

type MatchSnapshot struct {
	Seats      []string      `json:"seats"`
	OwnerSeat  int           `json:"owner_seat"`
	Tick       int64         `json:"tick"`
	Players    []PlayerState `json:"players"`
	Phase      domain.Phase  `json:"phase,omitempty"`
	TrumpSuit  string        `json:"trump_suit,omitempty"`
	DealerSeat int           `json:"dealer_seat"`
}

type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	gameCfg := config.GetGameConfig()
	if path := gameCfg.BotIdentitiesPath; path != "" {
		if err := bot.LoadIdentities(path); err != nil {
			logger.Warn("MatchInit: Could not load bot identities: %v", err)
		}
	}

	state := &MatchState{
		OwnerSeat:        -1,
		LastDealerSeat:   -1,
		Tick:             time.Now().Unix(),
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(nil),
		ThreeFan:         gameCfg.DefaultThreeFan,
		FiveFan:          gameCfg.DefaultFiveFan,
		BotMinDelay:      gameCfg.BotActionDelayTicks,
		BotMaxDelay:      gameCfg.BotActionDelayTicks * 2,
		BotAutoFillDelay: gameCfg.BotAutoFillDelaySeconds,
		TurnTimeout:      gameCfg.TurnDurationSeconds,
		Bots:             make(map[string]*bot.Agent),
		Economy:          NewNakamaEconomyAdapter(nk),
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["dingzhu_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["dingzhu_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["dingzhu_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["dingzhu_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}
	if val, ok := env["dingzhu_turn_duration_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.TurnTimeout = i
		}
	}

	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = 5
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}

	labelBytes, err := json.Marshal(&MatchLabel{Open: state.GetOpenSeatsCount(), Game: "dingzhu", Phase: "lobby"})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow join if there is an empty seat OR a bot to replace before a hand starts.
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if matchState.Game == nil {
			for _, seat := range matchState.Seats {
				if isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}

		if !assigned && matchState.Game == nil {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
			continue
		}
	}

	// Owner must be a human seat.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		for i, seatUserId := range matchState.Seats {
			if seatUserId == p.GetUserId() {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
				break
			}
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartHand:
			mh.handleStartHand(ctx, matchState, dispatcher, logger, msg)
		case OpDeclareTrump:
			mh.handleDeclareTrump(ctx, matchState, dispatcher, logger, msg)
		case OpDiscardBottom:
			mh.handleDiscardBottom(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCards:
			mh.handlePlayCards(ctx, matchState, dispatcher, logger, msg)
		case OpRequestNewHand:
			mh.handleRequestNewHand(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}
	mh.enforceTurnClock(ctx, matchState, dispatcher, logger)

	return matchState
}

// enforceTurnClock auto-plays for a human who has held the turn past the
// timeout, so one idle player cannot stall the table.
func (mh *matchHandler) enforceTurnClock(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.TurnTimeout <= 0 || state.Game == nil || state.Game.Phase != domain.PhasePlayTrick {
		state.TurnDeadline = 0
		return
	}
	seat := state.Game.CurrentSeat
	if !isHumanSeat(state.Seats[:], seat) {
		state.TurnDeadline = 0
		return
	}

	if state.TurnDeadline == 0 {
		state.TurnDeadline = state.Tick + int64(state.TurnTimeout)
		return
	}
	if state.Tick < state.TurnDeadline {
		return
	}
	state.TurnDeadline = 0

	userID := state.Seats[seat]
	brain, err := bot.BrainForDifficulty("easy")
	if err != nil {
		logger.Error("TurnClock: Failed to create fallback brain: %v", err)
		return
	}
	move, err := brain.CalculateMove(state.Game, userID)
	if err != nil {
		logger.Error("TurnClock: No legal auto-play for %s: %v", userID, err)
		return
	}
	logger.Info("TurnClock: Auto-playing for idle player %s in seat %d.", userID, seat)
	mh.playCards(ctx, state, dispatcher, logger, userID, move.Cards)
}

func (mh *matchHandler) handleStartHand(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderSeat := state.seatOf(msg.GetUserId())
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartHand: User %s tried to start but is not owner (owner_seat=%d)", msg.GetUserId(), state.OwnerSeat)
		return
	}
	if state.Game != nil && state.Game.Phase != domain.PhaseRoundEnd {
		logger.Warn("StartHand: Hand already in progress.")
		return
	}
	if state.GetOccupiedSeatCount() != app.SeatsPerHand {
		logger.Warn("StartHand: Cannot start with %d/%d seats filled.", state.GetOccupiedSeatCount(), app.SeatsPerHand)
		return
	}

	request := &StartHandRequest{}
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), request); err != nil {
			logger.Warn("StartHand: Invalid request from %s: %v", msg.GetUserId(), err)
			return
		}
	}
	if request.ThreeFan != nil {
		state.ThreeFan = *request.ThreeFan
	}
	if request.FiveFan != nil {
		state.FiveFan = *request.FiveFan
	}
	if state.ThreeFan && state.FiveFan {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, "three fan and five fan cannot both be active")
		return
	}

	mh.startHand(ctx, state, dispatcher, logger)
}

func (mh *matchHandler) startHand(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	dealerSeat := (state.LastDealerSeat + 1) % 4

	cfg := domain.Config{
		TrumpSuit:   domain.Spade, // provisional until 定主
		HasThreeFan: state.ThreeFan,
		HasFiveFan:  state.FiveFan,
	}

	game, events, err := state.App.StartHand(state.Seats[:], cfg, dealerSeat)
	if err != nil {
		logger.Error("StartHand: Failed to start hand: %v", err)
		return
	}

	state.Game = game
	state.BotWaitUntil = 0
	state.TurnDeadline = 0
	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
	logger.Info("StartHand: Hand started, dealing from seat %d.", dealerSeat)
}

func (mh *matchHandler) handleDeclareTrump(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Game == nil {
		logger.Warn("DeclareTrump: No hand in progress.")
		return
	}
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	// Only the holder of the first dealt 2 may declare.
	if state.Game.FirstTwo != nil && senderSeat != state.Game.FirstTwo.SeatIndex {
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the trump candidate may declare")
		return
	}

	request := &DeclareTrumpRequest{}
	if err := json.Unmarshal(msg.GetData(), request); err != nil {
		logger.Warn("DeclareTrump: Invalid request from %s: %v", senderID, err)
		return
	}
	suit, err := suitFromWire(request.Suit)
	if err != nil || suit == domain.JokerSuit {
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid trump suit")
		return
	}

	mh.declareTrump(ctx, state, dispatcher, logger, senderID, suit)
}

func (mh *matchHandler) declareTrump(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, suit domain.Suit) {
	game, events, err := state.App.DeclareTrump(state.Game, userID, suit)
	if err != nil {
		mh.sendError(state, dispatcher, logger, userID, 400, err.Error())
		return
	}

	// The dealer immediately picks up the bottom and must discard.
	game, pickupEvents, err := state.App.PickUpBottom(game)
	if err != nil {
		logger.Error("DeclareTrump: Bottom pickup failed: %v", err)
		return
	}

	state.Game = game
	state.LastDealerSeat = game.DealerIndex
	state.BotWaitUntil = 0
	state.TurnDeadline = 0
	for _, ev := range append(events, pickupEvents...) {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleDiscardBottom(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Game == nil {
		logger.Warn("DiscardBottom: No hand in progress.")
		return
	}
	senderID := msg.GetUserId()

	request := &DiscardBottomRequest{}
	if err := json.Unmarshal(msg.GetData(), request); err != nil {
		logger.Warn("DiscardBottom: Invalid request from %s: %v", senderID, err)
		return
	}
	cards, err := cardsFromWire(request.Cards)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	game, events, err := state.App.DiscardBottom(state.Game, senderID, cards)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.Game = game
	state.BotWaitUntil = 0
	state.TurnDeadline = 0
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handlePlayCards(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Game == nil {
		logger.Warn("PlayCards: No hand in progress.")
		return
	}
	senderID := msg.GetUserId()

	request := &PlayCardsRequest{}
	if err := json.Unmarshal(msg.GetData(), request); err != nil {
		logger.Warn("PlayCards: Invalid request from %s: %v", senderID, err)
		return
	}
	cards, err := cardsFromWire(request.Cards)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.playCards(ctx, state, dispatcher, logger, senderID, cards)
}

func (mh *matchHandler) playCards(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, cards []domain.Card) {
	game, events, err := state.App.Play(state.Game, userID, cards)
	if err != nil {
		logger.Warn("PlayCards: User %s failed to play: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, 400, err.Error())
		return
	}

	state.Game = game
	state.BotWaitUntil = 0
	state.TurnDeadline = 0
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleRequestNewHand(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderSeat := state.seatOf(msg.GetUserId())
	if senderSeat != state.OwnerSeat {
		return
	}
	if state.Game == nil || state.Game.Phase != domain.PhaseRoundEnd {
		logger.Warn("RequestNewHand: No finished hand to replace.")
		return
	}
	state.Game = nil
	mh.startHand(ctx, state, dispatcher, logger)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// Auto-fill empty seats with bots once humans have waited long enough.
	if state.Game == nil {
		if state.GetHumanPlayerCount() >= 1 && state.GetOpenSeatsCount() > 0 {
			if state.LastShortHandedTick == 0 {
				state.LastShortHandedTick = state.Tick
				logger.Debug("processBots: Short-handed table detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastShortHandedTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat != "" {
						continue
					}
					identity := bot.GetBotIdentity(i)
					brain, err := bot.BrainForDifficulty(identity.Difficulty)
					if err != nil {
						logger.Error("processBots: Failed to create brain for %s: %v", identity.UserID, err)
						continue
					}
					state.Seats[i] = identity.UserID
					state.Bots[identity.UserID] = &bot.Agent{
						ID:       identity.UserID,
						Name:     identity.DisplayName,
						Strategy: brain,
					}
					logger.Info("processBots: Added bot %s to seat %d", identity.UserID, i)
					added = true
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(state, dispatcher, logger)
				}
				state.LastShortHandedTick = 0
			}
		} else {
			state.LastShortHandedTick = 0
		}
		return
	}

	// In-hand bot actions. Each phase has one seat on the clock.
	actingSeat := -1
	switch state.Game.Phase {
	case domain.PhaseChooseTrump:
		if state.Game.FirstTwo != nil {
			actingSeat = state.Game.FirstTwo.SeatIndex
		}
	case domain.PhaseDiscardBottom:
		actingSeat = state.Game.DealerIndex
	case domain.PhasePlayTrick:
		actingSeat = state.Game.CurrentSeat
	default:
		state.BotWaitUntil = 0
		return
	}
	if actingSeat < 0 {
		return
	}

	userID := state.Seats[actingSeat]
	if !isBotUserId(userID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[userID]
	if !exists {
		brain, err := bot.BrainForDifficulty("")
		if err != nil {
			logger.Error("processBots: Failed to create fallback agent: %v", err)
			return
		}
		agent = &bot.Agent{ID: userID, Strategy: brain}
		state.Bots[userID] = agent
	}

	switch state.Game.Phase {
	case domain.PhaseChooseTrump:
		suit := agent.DeclareTrump(state.Game)
		mh.declareTrump(ctx, state, dispatcher, logger, userID, suit)
	case domain.PhaseDiscardBottom:
		cards := agent.Discard(state.Game)
		game, events, err := state.App.DiscardBottom(state.Game, userID, cards)
		if err != nil {
			logger.Error("processBots: Bot %s discard failed: %v", userID, err)
			return
		}
		state.Game = game
		for _, ev := range events {
			mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
		}
	case domain.PhasePlayTrick:
		move, err := agent.Play(state.Game)
		if err != nil {
			logger.Error("processBots: Bot %s failed to calculate move: %v", userID, err)
			return
		}
		mh.playCards(ctx, state, dispatcher, logger, userID, move.Cards)
	}
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var playerStates []PlayerState
	for i, userId := range state.Seats {
		if userId == "" {
			continue
		}

		displayName := userId
		if p, exists := state.Presences[userId]; exists {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userId); name != "" {
			displayName = name
		}

		cardsRemaining := 0
		if state.Game != nil {
			if seat := state.Game.SeatOf(userId); seat >= 0 {
				cardsRemaining = len(state.Game.Players[seat].Hand)
			}
		}

		playerStates = append(playerStates, PlayerState{
			UserID:         userId,
			Seat:           i,
			IsOwner:        i == state.OwnerSeat,
			CardsRemaining: cardsRemaining,
			DisplayName:    displayName,
		})
	}

	snapshot := &MatchSnapshot{
		Seats:      state.Seats[:],
		OwnerSeat:  state.OwnerSeat,
		Tick:       state.Tick,
		Players:    playerStates,
		DealerSeat: state.LastDealerSeat,
	}
	if state.Game != nil {
		snapshot.Phase = state.Game.Phase
		snapshot.TrumpSuit = state.Game.TrumpSuit.String()
		snapshot.DealerSeat = state.Game.DealerIndex
	}

	bytes, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("Failed to marshal match snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchSnapshot, bytes, nil, nil, true)
}

// dispatchEvent converts an app event into a Nakama broadcast.
func (mh *matchHandler) dispatchEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	var payload any = ev.Payload

	switch ev.Kind {
	case app.EventHandStarted:
		opCode = OpHandStarted
	case app.EventHandDealt:
		opCode = OpHandDealt
		p := ev.Payload.(app.HandDealtPayload)
		payload = struct {
			HandID   string     `json:"hand_id,omitempty"`
			UserID   string     `json:"user_id"`
			Hand     []WireCard `json:"hand"`
			FirstTwo bool       `json:"first_two"`
		}{p.HandID, p.UserID, cardsToWire(p.Hand), p.FirstTwo}
	case app.EventTrumpDeclared:
		opCode = OpTrumpDeclared
	case app.EventBottomPickedUp:
		opCode = OpBottomPickedUp
	case app.EventBottomDiscarded:
		opCode = OpBottomSet
	case app.EventCardsPlayed:
		opCode = OpCardsPlayed
		p := ev.Payload.(app.CardsPlayedPayload)
		payload = struct {
			UserID    string     `json:"user_id"`
			Cards     []WireCard `json:"cards"`
			NextIndex int        `json:"next_index"`
		}{p.UserID, cardsToWire(p.Cards), p.NextIndex}
	case app.EventTrickComplete:
		opCode = OpTrickComplete
	case app.EventPlayRejected:
		opCode = OpPlayRejected
	case app.EventHandEnded:
		opCode = OpHandEnded
		mh.settleHand(ctx, state, logger, ev.Payload.(app.HandEndedPayload))
		mh.updateLabel(state, dispatcher, logger)
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// Targeted events with no connected recipients (bot seats) must
		// not fall back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// settleHand pays each human player gold equal to the points their team
// captured during the hand.
func (mh *matchHandler) settleHand(ctx context.Context, state *MatchState, logger runtime.Logger, payload app.HandEndedPayload) {
	if state.Economy == nil || state.Game == nil {
		return
	}

	var updates []ports.WalletUpdate
	for i, p := range state.Game.Players {
		if isBotUserId(p.ID) || p.ID == "" {
			continue
		}
		amount := int64(payload.Scores.NonDealerTeam.TotalPoints)
		if state.Game.DealerTeamSeat(i) {
			amount = int64(payload.Scores.DealerTeam.TotalPoints)
		}
		if amount == 0 {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: p.ID,
			Amount: amount,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"reason":   "hand_settlement",
			},
		})
	}
	if len(updates) == 0 {
		return
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("Failed to update balances: %v", err)
	}
}

// sendError sends a GameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(&GameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal GameErrorEvent: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := "lobby"
	if state.Game != nil {
		phase = string(state.Game.Phase)
	}

	labelBytes, err := json.Marshal(&MatchLabel{Open: state.GetOpenSeatsCount(), Game: "dingzhu", Phase: phase})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
