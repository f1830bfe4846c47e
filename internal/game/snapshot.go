package game

// PlayerSnapshot is one seat as broadcast to clients. HoleCards is populated
// only in the snapshot built for that player's own user id.
type PlayerSnapshot struct {
	UserID     int64      `json:"user_id"`
	Username   string     `json:"username"`
	Chips      int64      `json:"chips"`
	Position   int        `json:"position"`
	CurrentBet int64      `json:"current_bet"`
	TotalBet   int64      `json:"total_bet"`
	IsFolded   bool       `json:"is_folded"`
	IsAllIn    bool       `json:"is_all_in"`
	IsActive   bool       `json:"is_active"`
	IsReady    bool       `json:"is_ready"`
	HoleCards  []CardView `json:"hole_cards"`
}

// Snapshot is a consistent copy of the table state for one viewer.
type Snapshot struct {
	RoomID         int64            `json:"room_id"`
	Stage          Stage            `json:"stage"`
	Pot            int64            `json:"pot"`
	CurrentBet     int64            `json:"current_bet"`
	CurrentPlayer  *int64           `json:"current_player"`
	CommunityCards []CardView       `json:"community_cards"`
	Players        []PlayerSnapshot `json:"players"`
	IsFinished     bool             `json:"is_finished"`
}

// PlayerResult is one line of the showdown payload.
type PlayerResult struct {
	UserID        int64      `json:"user_id"`
	Username      string     `json:"username"`
	HoleCards     []CardView `json:"hole_cards"`
	HandRank      string     `json:"hand_rank"`
	HandRankValue int        `json:"hand_rank_value"`
	HandStrength  []int      `json:"hand_strength"`
	WinAmount     int64      `json:"win_amount"`
	FinalChips    int64      `json:"final_chips"`
	Rank          int        `json:"rank"`
}

// HandResult is the post-hand payload broadcast once per showdown.
type HandResult struct {
	PotAmount int64          `json:"pot_amount"`
	WinnerID  int64          `json:"winner_id"`
	Results   []PlayerResult `json:"results"`
}

// Snapshot builds the state view for forUserID atomically under the table
// lock. A zero forUserID yields a spectator view with no hole cards.
func (t *Table) Snapshot(forUserID int64) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	players := make([]PlayerSnapshot, 0, len(t.players))
	for _, p := range t.players {
		ps := PlayerSnapshot{
			UserID:     p.UserID,
			Username:   p.Username,
			Chips:      p.Chips,
			Position:   p.Seat,
			CurrentBet: p.CurrentBet,
			TotalBet:   p.TotalBet,
			IsFolded:   p.Folded,
			IsAllIn:    p.AllIn,
			IsActive:   p.Active,
			IsReady:    p.Ready,
			HoleCards:  []CardView{},
		}
		if p.UserID == forUserID {
			ps.HoleCards = cardViews(p.HoleCards)
		}
		players = append(players, ps)
	}

	var current *int64
	switch t.stage {
	case StageWaiting, StageFinished, StageShowdown:
	default:
		if t.currentIndex >= 0 && t.currentIndex < len(t.players) {
			id := t.players[t.currentIndex].UserID
			current = &id
		}
	}

	return Snapshot{
		RoomID:         t.roomID,
		Stage:          t.stage,
		Pot:            t.pot,
		CurrentBet:     t.currentBet,
		CurrentPlayer:  current,
		CommunityCards: cardViews(t.community),
		Players:        players,
		IsFinished:     t.finished,
	}
}

// Results returns the last showdown payload, or nil while a hand is live.
func (t *Table) Results() *HandResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.results
}

// HoleCards returns the player's own hole cards, nil if absent or not dealt.
func (t *Table) HoleCards(userID int64) []CardView {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.playerByIDLocked(userID)
	if p == nil || len(p.HoleCards) == 0 {
		return nil
	}
	return cardViews(p.HoleCards)
}

func (t *Table) buildResultsLocked(contenders []*Player, winner *Player, pot int64, entries []showdownEntry) *HandResult {
	results := make([]PlayerResult, 0, len(contenders))

	if entries != nil {
		for i, e := range entries {
			var win int64
			if e.player == winner {
				win = pot
			}
			results = append(results, PlayerResult{
				UserID:        e.player.UserID,
				Username:      e.player.Username,
				HoleCards:     cardViews(e.player.HoleCards),
				HandRank:      e.value.Category.String(),
				HandRankValue: int(e.value.Category),
				HandStrength:  e.value.Kickers,
				WinAmount:     win,
				FinalChips:    e.player.Chips,
				Rank:          i + 1,
			})
		}
	} else {
		for _, p := range contenders {
			var win int64
			rank := 2
			if p == winner {
				win = pot
				rank = 1
			}
			cards := make([]Card, 0, len(p.HoleCards)+len(t.community))
			cards = append(cards, p.HoleCards...)
			cards = append(cards, t.community...)
			v := Evaluate(cards)
			results = append(results, PlayerResult{
				UserID:        p.UserID,
				Username:      p.Username,
				HoleCards:     cardViews(p.HoleCards),
				HandRank:      v.Category.String(),
				HandRankValue: int(v.Category),
				HandStrength:  v.Kickers,
				WinAmount:     win,
				FinalChips:    p.Chips,
				Rank:          rank,
			})
		}
	}

	return &HandResult{
		PotAmount: pot,
		WinnerID:  winner.UserID,
		Results:   results,
	}
}
