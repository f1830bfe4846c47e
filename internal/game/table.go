package game

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	appErr "holdem-service/pkg/errors"
	"holdem-service/pkg/logger"

	"go.uber.org/zap"
)

// Stage is the community-card phase of the current hand.
type Stage string

const (
	StageWaiting  Stage = "waiting"
	StagePreflop  Stage = "preflop"
	StageFlop     Stage = "flop"
	StageTurn     Stage = "turn"
	StageRiver    Stage = "river"
	StageShowdown Stage = "showdown"
	StageFinished Stage = "finished"
)

type Action string

const (
	ActionFold  Action = "fold"
	ActionCall  Action = "call"
	ActionRaise Action = "raise"
	ActionCheck Action = "check"
	ActionAllIn Action = "all_in"
)

const maxSeats = 9

// unseated players sort after every real seat position.
const unseatedSortKey = 999

// ActionResult reports one applied player action.
type ActionResult struct {
	UserID  int64  `json:"player_id"`
	Action  Action `json:"action"`
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
}

// Table is the betting state machine for one room. Every mutating operation
// and every snapshot runs under the table mutex; nothing here blocks or
// performs I/O, so hold times are short. Different tables are independent.
type Table struct {
	mu sync.Mutex

	roomID     int64
	smallBlind int64
	bigBlind   int64

	players      []*Player
	deck         *Deck
	community    []Card
	pot          int64
	currentBet   int64
	currentIndex int
	dealerSeat   int
	stage        Stage
	finished     bool
	results      *HandResult
	firstHand    bool

	log *zap.Logger
}

func NewTable(roomID, smallBlind, bigBlind int64) *Table {
	return newTable(roomID, smallBlind, bigBlind, nil)
}

func newTable(roomID, smallBlind, bigBlind int64, rng *rand.Rand) *Table {
	return &Table{
		roomID:     roomID,
		smallBlind: smallBlind,
		bigBlind:   bigBlind,
		deck:       NewDeck(rng),
		stage:      StageWaiting,
		firstHand:  true,
		log:        logger.Log,
	}
}

func (t *Table) RoomID() int64 { return t.roomID }

func (t *Table) Stage() Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stage
}

func (t *Table) BigBlind() int64 { return t.bigBlind }

// AddPlayer seats a new player. Re-adding a present id is a no-op success.
// Seat -1 joins unseated; the seat list stays sorted by (seat, id) with
// unseated players trailing.
func (t *Table) AddPlayer(userID int64, username string, chips int64, seat int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.playerByIDLocked(userID) != nil {
		return nil
	}
	if t.stage != StageWaiting {
		return fmt.Errorf("%w: hand in progress", appErr.ErrSeatUnavailable)
	}
	if len(t.players) >= maxSeats {
		return appErr.ErrTableFull
	}
	if seat >= 0 {
		for _, p := range t.players {
			if p.Seat == seat {
				return fmt.Errorf("%w: seat %d taken", appErr.ErrSeatUnavailable, seat)
			}
		}
	}
	t.players = append(t.players, NewPlayer(userID, username, chips, seat))
	t.sortPlayersLocked()
	return nil
}

// RemovePlayer drops a player. Mid-hand the player is folded out and kept in
// the seat list until the next reset so indices and the pot stay coherent;
// other seats are never renumbered.
func (t *Table) RemovePlayer(userID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	for i, p := range t.players {
		if p.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return appErr.ErrPlayerNotFound
	}

	if t.stage == StageWaiting || t.stage == StageFinished {
		t.players = append(t.players[:idx], t.players[idx+1:]...)
		if t.currentIndex >= len(t.players) {
			t.currentIndex = 0
		}
		return nil
	}

	p := t.players[idx]
	p.departed = true
	p.Ready = false
	if !p.inHand() {
		return nil
	}
	wasTurn := idx == t.currentIndex
	p.Fold()
	t.log.Info("player departed mid-hand",
		zap.Int64("roomID", t.roomID),
		zap.Int64("userID", userID),
	)
	if t.countInHandLocked() <= 1 {
		t.stage = StageShowdown
		t.resolveShowdownLocked()
		return nil
	}
	if wasTurn {
		t.advanceTurnLocked()
	}
	return nil
}

// ChangeSeat moves a player to an empty seat between hands.
func (t *Table) ChangeSeat(userID int64, seat int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stage != StageWaiting {
		return fmt.Errorf("%w: hand in progress", appErr.ErrSeatUnavailable)
	}
	p := t.playerByIDLocked(userID)
	if p == nil {
		return appErr.ErrPlayerNotFound
	}
	if seat < 0 || seat >= maxSeats {
		return fmt.Errorf("%w: seat %d out of range", appErr.ErrSeatUnavailable, seat)
	}
	for _, other := range t.players {
		if other.Seat == seat && other.UserID != userID {
			return fmt.Errorf("%w: seat %d taken", appErr.ErrSeatUnavailable, seat)
		}
	}
	p.Seat = seat
	t.sortPlayersLocked()
	return nil
}

func (t *Table) SetReady(userID int64, ready bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.playerByIDLocked(userID)
	if p == nil {
		return appErr.ErrPlayerNotFound
	}
	p.Ready = ready
	return nil
}

// ReadyToStart reports whether every joined player is ready and at least two
// are present; the transport layer auto-starts the hand when it flips true.
func (t *Table) ReadyToStart() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stage != StageWaiting || len(t.players) < 2 {
		return false
	}
	for _, p := range t.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// NextFreeSeat returns the lowest unoccupied seat position, or -1.
func (t *Table) NextFreeSeat() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	taken := make(map[int]bool, len(t.players))
	for _, p := range t.players {
		if p.Seat >= 0 {
			taken[p.Seat] = true
		}
	}
	for seat := 0; seat < maxSeats; seat++ {
		if !taken[seat] {
			return seat
		}
	}
	return -1
}

func (t *Table) PlayerCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.players)
}

// StartHand deals a new hand: per-hand player state resets (stacks and seats
// survive), the dealer is seeded at the first seat on the very first hand,
// the deck reshuffles, hole cards go out round-robin, blinds post and the
// first player to act is selected.
func (t *Table) StartHand() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stage != StageWaiting {
		return appErr.ErrHandInProgress
	}
	if len(t.players) < 2 {
		return appErr.ErrNotEnoughPlayers
	}

	for _, p := range t.players {
		p.resetForHand()
	}

	if t.firstHand {
		t.dealerSeat = t.players[0].Seat
		t.firstHand = false
	}

	t.deck.Reset()
	t.community = nil
	t.pot = 0
	t.currentBet = 0
	t.stage = StagePreflop
	t.finished = false
	t.results = nil

	// One card per player per pass, twice around.
	for pass := 0; pass < 2; pass++ {
		for _, p := range t.players {
			if p.Folded {
				continue
			}
			if dealt := t.deck.Deal(1); len(dealt) == 1 {
				p.HoleCards = append(p.HoleCards, dealt[0])
			}
		}
	}

	t.postBlindsLocked()

	// Preflop the player after the big blind opens; heads-up that wraps to
	// the dealer/small blind.
	if di := t.dealerIndexLocked(); di >= 0 {
		var bb int
		if len(t.players) == 2 {
			bb = (di + 1) % len(t.players)
		} else {
			bb = (di + 2) % len(t.players)
		}
		t.currentIndex = (bb + 1) % len(t.players)
	} else {
		t.currentIndex = 0
	}
	t.findNextActivePlayerLocked()

	t.log.Info("hand started",
		zap.Int64("roomID", t.roomID),
		zap.Int("players", len(t.players)),
		zap.Int("dealerSeat", t.dealerSeat),
		zap.Int("firstToAct", t.currentIndex),
	)
	return nil
}

func (t *Table) postBlindsLocked() {
	if len(t.players) < 2 {
		return
	}
	di := t.dealerIndexLocked()
	if di < 0 {
		return
	}
	var sbIdx, bbIdx int
	if len(t.players) == 2 {
		sbIdx = di
		bbIdx = (di + 1) % len(t.players)
	} else {
		sbIdx = (di + 1) % len(t.players)
		bbIdx = (di + 2) % len(t.players)
	}

	sb := t.players[sbIdx]
	t.pot += sb.Bet(t.smallBlind)
	bb := t.players[bbIdx]
	t.pot += bb.Bet(t.bigBlind)
	// The table bet is the nominal big blind even when a short stack posted
	// less; the shortfall is what the forced all-in is about.
	t.currentBet = t.bigBlind

	t.log.Info("blinds posted",
		zap.Int64("roomID", t.roomID),
		zap.Int64("smallBlindUser", sb.UserID),
		zap.Int64("bigBlindUser", bb.UserID),
		zap.Int64("pot", t.pot),
	)
}

// Act applies one player action. It must be exactly that player's turn;
// failures are strict no-ops.
func (t *Table) Act(userID int64, action Action, amount int64) (*ActionResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.playerByIDLocked(userID)
	var current *Player
	if t.currentIndex >= 0 && t.currentIndex < len(t.players) {
		current = t.players[t.currentIndex]
	}
	if p == nil || p != current {
		return nil, appErr.ErrOutOfTurn
	}
	if p.Folded || !p.Active {
		return nil, appErr.ErrNotInHand
	}

	result := &ActionResult{UserID: userID, Action: action}

	switch action {
	case ActionFold:
		p.Acted = true
		p.Fold()
		result.Message = fmt.Sprintf("%s folded", p.Username)
		t.logActionLocked(p, action, 0)
		if t.countInHandLocked() <= 1 {
			t.stage = StageShowdown
			t.resolveShowdownLocked()
			return result, nil
		}

	case ActionCall:
		owed := t.currentBet - p.CurrentBet
		actual := p.Bet(owed)
		t.pot += actual
		p.Acted = true
		result.Amount = actual
		result.Message = fmt.Sprintf("%s called %d", p.Username, actual)
		t.logActionLocked(p, action, actual)

	case ActionRaise:
		if amount < t.currentBet*2 {
			return nil, fmt.Errorf("%w: raise to %d needs at least %d", appErr.ErrIllegalRaise, amount, t.currentBet*2)
		}
		actual := p.Bet(amount - p.CurrentBet)
		t.pot += actual
		t.currentBet = p.CurrentBet
		p.Acted = true
		result.Amount = actual
		result.Message = fmt.Sprintf("%s raised to %d", p.Username, t.currentBet)
		t.logActionLocked(p, action, actual)

	case ActionCheck:
		if p.CurrentBet < t.currentBet {
			return nil, appErr.ErrIllegalCheck
		}
		p.Acted = true
		result.Message = fmt.Sprintf("%s checked", p.Username)
		t.logActionLocked(p, action, 0)

	case ActionAllIn:
		actual := p.Bet(p.Chips)
		t.pot += actual
		if p.CurrentBet > t.currentBet {
			t.currentBet = p.CurrentBet
		}
		p.Acted = true
		result.Amount = actual
		result.Message = fmt.Sprintf("%s went all-in for %d", p.Username, actual)
		t.logActionLocked(p, action, actual)

	default:
		return nil, fmt.Errorf("unsupported action %q", action)
	}

	t.advanceTurnLocked()
	return result, nil
}

func (t *Table) logActionLocked(p *Player, action Action, amount int64) {
	t.log.Info("player action",
		zap.Int64("roomID", t.roomID),
		zap.Int64("userID", p.UserID),
		zap.String("action", string(action)),
		zap.Int64("amount", amount),
		zap.Int64("pot", t.pot),
		zap.Int64("currentBet", t.currentBet),
	)
}

// advanceTurnLocked scans forward for the next seat that still needs to act:
// a live non-all-in player who owes chips, or one who is matched but has not
// acted this street. When nobody qualifies it evaluates round completion.
func (t *Table) advanceTurnLocked() {
	n := len(t.players)
	if n == 0 {
		return
	}

	for attempts := 0; attempts < n; attempts++ {
		t.currentIndex = (t.currentIndex + 1) % n
		p := t.players[t.currentIndex]
		if !p.inHand() {
			continue
		}
		if !p.AllIn && p.CurrentBet < t.currentBet {
			return
		}
		if !p.Acted && !p.AllIn && p.CurrentBet == t.currentBet {
			return
		}
	}

	if t.countInHandLocked() <= 1 {
		t.stage = StageShowdown
		t.resolveShowdownLocked()
		return
	}

	// Heads-up preflop: once the small blind has called (one player acted,
	// bets level) the turn is forced to the big blind so they keep their
	// option, regardless of scan order.
	if n == 2 && t.stage == StagePreflop {
		acted := 0
		equal := true
		for _, p := range t.players {
			if !p.inHand() {
				continue
			}
			if p.Acted {
				acted++
			}
			if p.CurrentBet != t.currentBet && !p.AllIn {
				equal = false
			}
		}
		if acted == 1 && equal {
			for i, p := range t.players {
				if p.Seat != t.dealerSeat && p.inHand() {
					t.currentIndex = i
					return
				}
			}
		}
	}

	if t.roundCompleteLocked() {
		t.nextStageLocked()
		return
	}

	// Nobody needs to act but the round is judged incomplete: an internal
	// consistency fault. Log and force-correct instead of wedging the hand.
	t.log.Warn("no player needs to act but betting round incomplete",
		zap.Int64("roomID", t.roomID),
		zap.String("stage", string(t.stage)),
	)
	for i, p := range t.players {
		if p.inHand() {
			t.currentIndex = i
			return
		}
	}
}

// roundCompleteLocked is the betting-round completion predicate: one player
// left, everyone all-in, the heads-up preflop exchange finished, or — in
// general — nobody owes chips, everyone live has acted and all bets level.
func (t *Table) roundCompleteLocked() bool {
	var active []*Player
	for _, p := range t.players {
		if p.inHand() {
			active = append(active, p)
		}
	}

	if len(active) <= 1 {
		return true
	}

	allIn := true
	for _, p := range active {
		if !p.AllIn {
			allIn = false
			break
		}
	}
	if allIn {
		return true
	}

	betsEqual := true
	allActed := true
	acted := 0
	for _, p := range active {
		if p.CurrentBet != t.currentBet && !p.AllIn {
			betsEqual = false
		}
		if p.Acted {
			acted++
		} else {
			allActed = false
		}
	}

	if len(active) == 2 && t.stage == StagePreflop {
		if acted == 0 {
			return false
		}
		if allActed && betsEqual {
			return true
		}
		// Small blind called; the big blind still holds the option.
		return false
	}

	for _, p := range active {
		if !p.AllIn && p.CurrentBet < t.currentBet {
			return false
		}
	}
	for _, p := range active {
		if !p.Acted && !p.AllIn {
			return false
		}
	}
	return betsEqual
}

// nextStageLocked advances the street. With every live player all-in the
// remaining board is dealt in one step and the hand goes straight to
// showdown; after the river the showdown runs and the hand finishes.
func (t *Table) nextStageLocked() {
	var active []*Player
	for _, p := range t.players {
		if p.inHand() {
			active = append(active, p)
		}
	}
	if len(active) <= 1 {
		t.stage = StageShowdown
		t.resolveShowdownLocked()
		return
	}

	allIn := true
	for _, p := range active {
		if !p.AllIn {
			allIn = false
			break
		}
	}
	if allIn {
		switch t.stage {
		case StagePreflop:
			t.community = append(t.community, t.deck.Deal(5)...)
		case StageFlop:
			t.community = append(t.community, t.deck.Deal(2)...)
		case StageTurn:
			t.community = append(t.community, t.deck.Deal(1)...)
		}
		t.log.Info("all-in run-out", zap.Int64("roomID", t.roomID), zap.Int("board", len(t.community)))
		t.stage = StageShowdown
		t.resolveShowdownLocked()
		return
	}

	for _, p := range t.players {
		p.ResetForStreet()
	}
	t.currentBet = 0

	switch t.stage {
	case StagePreflop:
		t.community = append(t.community, t.deck.Deal(3)...)
		t.stage = StageFlop
	case StageFlop:
		t.community = append(t.community, t.deck.Deal(1)...)
		t.stage = StageTurn
	case StageTurn:
		t.community = append(t.community, t.deck.Deal(1)...)
		t.stage = StageRiver
	case StageRiver:
		t.stage = StageShowdown
		t.resolveShowdownLocked()
		t.stage = StageFinished
		return
	}

	t.log.Info("stage advanced",
		zap.Int64("roomID", t.roomID),
		zap.String("stage", string(t.stage)),
		zap.Int("board", len(t.community)),
	)

	// Postflop the small blind side opens: heads-up the dealer, otherwise
	// the seat after the dealer.
	if di := t.dealerIndexLocked(); di >= 0 {
		if len(t.players) == 2 {
			t.currentIndex = di
		} else {
			t.currentIndex = (di + 1) % len(t.players)
		}
	} else {
		t.currentIndex = 0
	}
	t.findNextActivePlayerLocked()
}

// findNextActivePlayerLocked settles currentIndex on a live seat, starting
// from the current value. All-in players still hold the seat marker. With no
// live player left the hand resolves immediately.
func (t *Table) findNextActivePlayerLocked() {
	n := len(t.players)
	for attempts := 0; attempts < n; attempts++ {
		if t.players[t.currentIndex].inHand() {
			return
		}
		t.currentIndex = (t.currentIndex + 1) % n
	}
	t.stage = StageShowdown
	t.resolveShowdownLocked()
	if t.stage != StageFinished {
		t.stage = StageFinished
	}
}

// resolveShowdownLocked awards the pot. One contender takes it uncontested;
// otherwise hands are evaluated from hole plus board and sorted descending.
// Single pot, winner takes all: ties are not split, the first player in sort
// order is paid.
func (t *Table) resolveShowdownLocked() {
	var contenders []*Player
	for _, p := range t.players {
		if !p.Folded {
			contenders = append(contenders, p)
		}
	}

	if len(contenders) == 0 {
		t.finished = true
		t.stage = StageFinished
		t.moveDealerLocked()
		return
	}

	if len(contenders) == 1 {
		winner := contenders[0]
		winner.Chips += t.pot
		t.finished = true
		t.stage = StageFinished
		t.results = t.buildResultsLocked(contenders, winner, t.pot, nil)
		t.log.Info("hand won uncontested",
			zap.Int64("roomID", t.roomID),
			zap.Int64("winner", winner.UserID),
			zap.Int64("pot", t.pot),
		)
		t.moveDealerLocked()
		return
	}

	entries := make([]showdownEntry, 0, len(contenders))
	for _, p := range contenders {
		cards := make([]Card, 0, len(p.HoleCards)+len(t.community))
		cards = append(cards, p.HoleCards...)
		cards = append(cards, t.community...)
		entries = append(entries, showdownEntry{player: p, value: Evaluate(cards)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].value.Compare(entries[j].value) > 0
	})

	winner := entries[0].player
	winner.Chips += t.pot
	t.finished = true
	t.stage = StageFinished
	t.results = t.buildResultsLocked(contenders, winner, t.pot, entries)
	t.log.Info("showdown resolved",
		zap.Int64("roomID", t.roomID),
		zap.Int64("winner", winner.UserID),
		zap.String("winningHand", entries[0].value.Category.String()),
		zap.Int64("pot", t.pot),
	)
	t.moveDealerLocked()
}

type showdownEntry struct {
	player *Player
	value  HandValue
}

// moveDealerLocked rotates the button one live seat clockwise. The marker is
// a seat position, not an index, so it survives seat-list reordering.
func (t *Table) moveDealerLocked() {
	if len(t.players) < 2 {
		return
	}
	di := t.dealerIndexLocked()
	if di < 0 {
		t.dealerSeat = t.players[0].Seat
		return
	}
	t.dealerSeat = t.players[(di+1)%len(t.players)].Seat
}

// ResetForNextHand returns the table to waiting: ready flags drop, per-hand
// card/bet/flag state clears, stacks and seats survive. Players who departed
// mid-hand leave the seat list here. Called by the transport layer after a
// result-viewing delay, never by the engine itself.
func (t *Table) ResetForNextHand() {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.players[:0]
	for _, p := range t.players {
		if p.departed {
			continue
		}
		p.Ready = false
		p.resetForHand()
		kept = append(kept, p)
	}
	t.players = kept

	t.stage = StageWaiting
	t.finished = false
	t.pot = 0
	t.currentBet = 0
	t.currentIndex = 0
	t.community = nil
	t.results = nil
}

func (t *Table) playerByIDLocked(userID int64) *Player {
	for _, p := range t.players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (t *Table) dealerIndexLocked() int {
	for i, p := range t.players {
		if p.Seat == t.dealerSeat {
			return i
		}
	}
	return -1
}

func (t *Table) countInHandLocked() int {
	n := 0
	for _, p := range t.players {
		if p.inHand() {
			n++
		}
	}
	return n
}

func (t *Table) sortPlayersLocked() {
	sort.SliceStable(t.players, func(i, j int) bool {
		si, sj := t.players[i].Seat, t.players[j].Seat
		if si < 0 {
			si = unseatedSortKey
		}
		if sj < 0 {
			sj = unseatedSortKey
		}
		if si != sj {
			return si < sj
		}
		return t.players[i].UserID < t.players[j].UserID
	})
}
