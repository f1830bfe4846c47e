package game

import (
	"errors"
	"math/rand"
	"testing"

	appErr "holdem-service/pkg/errors"
)

func newHeadsUpTable(t *testing.T) *Table {
	t.Helper()

	tbl := newTable(1, 10, 20, rand.New(rand.NewSource(42)))
	if err := tbl.AddPlayer(1, "alice", 1000, 0); err != nil {
		t.Fatalf("add alice: %v", err)
	}
	if err := tbl.AddPlayer(2, "bob", 1000, 1); err != nil {
		t.Fatalf("add bob: %v", err)
	}
	return tbl
}

func newThreeWayTable(t *testing.T) *Table {
	t.Helper()

	tbl := newTable(2, 10, 20, rand.New(rand.NewSource(42)))
	for i, name := range []string{"alice", "bob", "carol"} {
		if err := tbl.AddPlayer(int64(i+1), name, 1000, i); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	return tbl
}

func mustAct(t *testing.T, tbl *Table, userID int64, action Action, amount int64) {
	t.Helper()
	if _, err := tbl.Act(userID, action, amount); err != nil {
		t.Fatalf("act %d %s: %v", userID, action, err)
	}
}

func currentPlayer(t *testing.T, tbl *Table) int64 {
	t.Helper()
	snap := tbl.Snapshot(0)
	if snap.CurrentPlayer == nil {
		t.Fatalf("no current player at stage %s", snap.Stage)
	}
	return *snap.CurrentPlayer
}

func checkPotConservation(t *testing.T, tbl *Table) {
	t.Helper()
	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	var sum int64
	for _, p := range tbl.players {
		sum += p.TotalBet
	}
	if sum != tbl.pot {
		t.Fatalf("pot %d != sum of total bets %d", tbl.pot, sum)
	}
}

func TestStartHandRequiresTwoPlayers(t *testing.T) {
	tbl := newTable(1, 10, 20, rand.New(rand.NewSource(1)))
	tbl.AddPlayer(1, "alice", 1000, 0)

	if err := tbl.StartHand(); !errors.Is(err, appErr.ErrNotEnoughPlayers) {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}
	if tbl.Stage() != StageWaiting {
		t.Fatalf("failed start must not mutate, stage=%s", tbl.Stage())
	}
}

func TestStartHandHeadsUpBlinds(t *testing.T) {
	tbl := newHeadsUpTable(t)
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("start: %v", err)
	}

	snap := tbl.Snapshot(0)
	if snap.Stage != StagePreflop {
		t.Fatalf("expected preflop, got %s", snap.Stage)
	}
	if snap.Pot != 30 || snap.CurrentBet != 20 {
		t.Fatalf("blinds wrong: pot=%d currentBet=%d", snap.Pot, snap.CurrentBet)
	}
	// Heads-up the dealer posts the small blind and acts first preflop.
	if snap.Players[0].CurrentBet != 10 || snap.Players[1].CurrentBet != 20 {
		t.Fatalf("expected dealer SB 10 / BB 20, got %d / %d",
			snap.Players[0].CurrentBet, snap.Players[1].CurrentBet)
	}
	if got := currentPlayer(t, tbl); got != 1 {
		t.Fatalf("dealer should act first heads-up preflop, got %d", got)
	}
	checkPotConservation(t, tbl)

	if err := tbl.StartHand(); !errors.Is(err, appErr.ErrHandInProgress) {
		t.Fatalf("restart mid-hand should fail, got %v", err)
	}
}

func TestHeadsUpBigBlindGetsOption(t *testing.T) {
	tbl := newHeadsUpTable(t)
	tbl.StartHand()

	// Small blind calls; bets are level but the big blind has not acted.
	mustAct(t, tbl, 1, ActionCall, 0)
	if tbl.Stage() != StagePreflop {
		t.Fatalf("round must not end before the big blind option, stage=%s", tbl.Stage())
	}
	if got := currentPlayer(t, tbl); got != 2 {
		t.Fatalf("turn must pass to the big blind, got %d", got)
	}

	// Big blind checks the option and the flop comes.
	mustAct(t, tbl, 2, ActionCheck, 0)
	snap := tbl.Snapshot(0)
	if snap.Stage != StageFlop || len(snap.CommunityCards) != 3 {
		t.Fatalf("expected flop with 3 cards, got %s/%d", snap.Stage, len(snap.CommunityCards))
	}
	if snap.CurrentBet != 0 {
		t.Fatalf("street reset should zero the table bet, got %d", snap.CurrentBet)
	}
	// Postflop heads-up the dealer opens.
	if got := currentPlayer(t, tbl); got != 1 {
		t.Fatalf("dealer should open postflop heads-up, got %d", got)
	}
}

func TestBigBlindCanRaiseOption(t *testing.T) {
	tbl := newHeadsUpTable(t)
	tbl.StartHand()

	mustAct(t, tbl, 1, ActionCall, 0)
	mustAct(t, tbl, 2, ActionRaise, 60)

	if tbl.Stage() != StagePreflop {
		t.Fatalf("raise must reopen the round, stage=%s", tbl.Stage())
	}
	if got := currentPlayer(t, tbl); got != 1 {
		t.Fatalf("small blind must face the raise, got %d", got)
	}
	snap := tbl.Snapshot(0)
	if snap.CurrentBet != 60 || snap.Pot != 80 {
		t.Fatalf("raise accounting wrong: currentBet=%d pot=%d", snap.CurrentBet, snap.Pot)
	}
	checkPotConservation(t, tbl)
}

func TestFoldEndsHandImmediately(t *testing.T) {
	tbl := newHeadsUpTable(t)
	tbl.StartHand()

	mustAct(t, tbl, 1, ActionFold, 0)

	snap := tbl.Snapshot(0)
	if snap.Stage != StageFinished || !snap.IsFinished {
		t.Fatalf("fold to one player must finish the hand, stage=%s", snap.Stage)
	}
	res := tbl.Results()
	if res == nil || res.WinnerID != 2 || res.PotAmount != 30 {
		t.Fatalf("unexpected result: %+v", res)
	}
	// Winner collects both blinds without further calls.
	for _, p := range snap.Players {
		switch p.UserID {
		case 1:
			if p.Chips != 990 {
				t.Fatalf("folder should lose the small blind, chips=%d", p.Chips)
			}
		case 2:
			if p.Chips != 1010 {
				t.Fatalf("winner should net the small blind, chips=%d", p.Chips)
			}
		}
	}
}

func TestActValidation(t *testing.T) {
	tbl := newHeadsUpTable(t)
	tbl.StartHand()

	if _, err := tbl.Act(2, ActionCall, 0); !errors.Is(err, appErr.ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn, got %v", err)
	}
	if _, err := tbl.Act(99, ActionCall, 0); !errors.Is(err, appErr.ErrOutOfTurn) {
		t.Fatalf("unknown player should read as out of turn, got %v", err)
	}

	// Raise below 2x the table bet is rejected with no state change.
	before := tbl.Snapshot(0)
	if _, err := tbl.Act(1, ActionRaise, 30); !errors.Is(err, appErr.ErrIllegalRaise) {
		t.Fatalf("expected ErrIllegalRaise, got %v", err)
	}
	after := tbl.Snapshot(0)
	if after.Pot != before.Pot || *after.CurrentPlayer != *before.CurrentPlayer {
		t.Fatalf("failed raise mutated state: %+v -> %+v", before, after)
	}

	// Check facing a live bet is rejected.
	if _, err := tbl.Act(1, ActionCheck, 0); !errors.Is(err, appErr.ErrIllegalCheck) {
		t.Fatalf("expected ErrIllegalCheck, got %v", err)
	}
}

func TestThreeWayHandToFlop(t *testing.T) {
	tbl := newThreeWayTable(t)
	tbl.StartHand()

	// Dealer seat 0; small blind seat 1, big blind seat 2, UTG back at the
	// dealer.
	snap := tbl.Snapshot(0)
	if snap.Players[1].CurrentBet != 10 || snap.Players[2].CurrentBet != 20 {
		t.Fatalf("blind seats wrong: %+v", snap.Players)
	}
	if got := currentPlayer(t, tbl); got != 1 {
		t.Fatalf("UTG should open, got %d", got)
	}

	mustAct(t, tbl, 1, ActionCall, 0)
	mustAct(t, tbl, 2, ActionCall, 0)
	checkPotConservation(t, tbl)
	mustAct(t, tbl, 3, ActionCheck, 0)

	snap = tbl.Snapshot(0)
	if snap.Stage != StageFlop || len(snap.CommunityCards) != 3 {
		t.Fatalf("expected flop, got %s/%d", snap.Stage, len(snap.CommunityCards))
	}
	if snap.Pot != 60 {
		t.Fatalf("expected pot 60, got %d", snap.Pot)
	}
	// Postflop the seat after the dealer opens.
	if got := currentPlayer(t, tbl); got != 2 {
		t.Fatalf("small blind should open postflop, got %d", got)
	}
}

func TestShowdownBestHandWins(t *testing.T) {
	tbl := newHeadsUpTable(t)
	tbl.StartHand()

	mustAct(t, tbl, 1, ActionCall, 0)
	mustAct(t, tbl, 2, ActionCheck, 0)
	for tbl.Stage() == StageFlop || tbl.Stage() == StageTurn {
		mustAct(t, tbl, currentPlayer(t, tbl), ActionCheck, 0)
	}
	if tbl.Stage() != StageRiver {
		t.Fatalf("expected river, got %s", tbl.Stage())
	}
	mustAct(t, tbl, 1, ActionCheck, 0)

	// Pin the showdown before the final check decides it.
	tbl.mu.Lock()
	tbl.community = cards(Two, Clubs, Seven, Diamonds, Nine, Hearts, Jack, Spades, Four, Diamonds)
	tbl.players[0].HoleCards = cards(Ace, Clubs, Ace, Diamonds)
	tbl.players[1].HoleCards = cards(King, Clubs, Queen, Diamonds)
	tbl.mu.Unlock()

	mustAct(t, tbl, 2, ActionCheck, 0)

	snap := tbl.Snapshot(0)
	if snap.Stage != StageFinished {
		t.Fatalf("expected finished, got %s", snap.Stage)
	}
	res := tbl.Results()
	if res == nil || res.WinnerID != 1 || res.PotAmount != 40 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Results[0].Rank != 1 || res.Results[0].HandRank != "PAIR" || res.Results[0].WinAmount != 40 {
		t.Fatalf("winner line wrong: %+v", res.Results[0])
	}
	if len(res.Results[1].HoleCards) != 2 {
		t.Fatalf("showdown must reveal hole cards: %+v", res.Results[1])
	}
	for _, p := range snap.Players {
		switch p.UserID {
		case 1:
			if p.Chips != 1020 {
				t.Fatalf("winner chips=%d", p.Chips)
			}
		case 2:
			if p.Chips != 980 {
				t.Fatalf("loser chips=%d", p.Chips)
			}
		}
	}
}

func TestAllInRunOut(t *testing.T) {
	tbl := newHeadsUpTable(t)
	tbl.StartHand()

	mustAct(t, tbl, 1, ActionAllIn, 0)
	mustAct(t, tbl, 2, ActionAllIn, 0)

	snap := tbl.Snapshot(0)
	if snap.Stage != StageFinished {
		t.Fatalf("all-in vs all-in should run out to showdown, stage=%s", snap.Stage)
	}
	if len(snap.CommunityCards) != 5 {
		t.Fatalf("run-out must deal the full board, got %d", len(snap.CommunityCards))
	}
	res := tbl.Results()
	if res == nil || res.PotAmount != 2000 {
		t.Fatalf("expected pot 2000, got %+v", res)
	}
	var total int64
	for _, p := range snap.Players {
		total += p.Chips
	}
	if total != 2000 {
		t.Fatalf("chips not conserved across showdown: %d", total)
	}
}

func TestShortStackBlindForcesAllIn(t *testing.T) {
	tbl := newTable(1, 10, 20, rand.New(rand.NewSource(3)))
	tbl.AddPlayer(1, "alice", 1000, 0)
	tbl.AddPlayer(2, "bob", 5, 1)
	tbl.StartHand()

	snap := tbl.Snapshot(0)
	if snap.Pot != 15 {
		t.Fatalf("short blind should clamp: pot=%d", snap.Pot)
	}
	if !snap.Players[1].IsAllIn || snap.Players[1].Chips != 0 {
		t.Fatalf("short stack must be forced all-in: %+v", snap.Players[1])
	}
	if snap.CurrentBet != 20 {
		t.Fatalf("table bet stays the nominal big blind, got %d", snap.CurrentBet)
	}
}

func TestDealerRotatesEachHand(t *testing.T) {
	tbl := newThreeWayTable(t)

	playFoldedHand := func(folders ...int64) {
		t.Helper()
		if err := tbl.StartHand(); err != nil {
			t.Fatalf("start: %v", err)
		}
		for _, id := range folders {
			mustAct(t, tbl, id, ActionFold, 0)
		}
		if tbl.Stage() != StageFinished {
			t.Fatalf("hand should be over, stage=%s", tbl.Stage())
		}
		tbl.ResetForNextHand()
	}

	// First hand seeds the button at the first seat; UTG is the dealer.
	playFoldedHand(1, 2)
	if tbl.dealerSeat != 1 {
		t.Fatalf("dealer should rotate to seat 1, got %d", tbl.dealerSeat)
	}
	playFoldedHand(2, 3)
	if tbl.dealerSeat != 2 {
		t.Fatalf("dealer should rotate to seat 2, got %d", tbl.dealerSeat)
	}
}

func TestDealerSurvivesSeatReorder(t *testing.T) {
	tbl := newThreeWayTable(t)
	tbl.StartHand()
	mustAct(t, tbl, 1, ActionFold, 0)
	mustAct(t, tbl, 2, ActionFold, 0)
	tbl.ResetForNextHand()

	// Button sits at seat 1. Moving carol to the far end reorders the seat
	// list but must not move the button.
	if err := tbl.ChangeSeat(3, 8); err != nil {
		t.Fatalf("change seat: %v", err)
	}
	if tbl.dealerSeat != 1 {
		t.Fatalf("seat change moved the dealer marker to %d", tbl.dealerSeat)
	}
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("start after reorder: %v", err)
	}
	// Dealer seat 1 (bob): small blind is carol at seat 8, big blind wraps
	// to alice.
	snap := tbl.Snapshot(0)
	for _, p := range snap.Players {
		switch p.UserID {
		case 3:
			if p.CurrentBet != 10 {
				t.Fatalf("carol should post the small blind, bet=%d", p.CurrentBet)
			}
		case 1:
			if p.CurrentBet != 20 {
				t.Fatalf("alice should post the big blind, bet=%d", p.CurrentBet)
			}
		}
	}
}

func TestResetForNextHand(t *testing.T) {
	tbl := newHeadsUpTable(t)
	tbl.StartHand()
	mustAct(t, tbl, 1, ActionFold, 0)

	tbl.SetReady(2, true)
	tbl.ResetForNextHand()

	snap := tbl.Snapshot(1)
	if snap.Stage != StageWaiting || snap.IsFinished {
		t.Fatalf("reset should return to waiting: %+v", snap)
	}
	if snap.Pot != 0 || snap.CurrentBet != 0 || len(snap.CommunityCards) != 0 {
		t.Fatalf("reset left hand state behind: %+v", snap)
	}
	if tbl.Results() != nil {
		t.Fatal("reset should clear the result payload")
	}
	for _, p := range snap.Players {
		if p.IsReady || p.IsFolded || p.CurrentBet != 0 || p.TotalBet != 0 || len(p.HoleCards) != 0 {
			t.Fatalf("player state not cleared: %+v", p)
		}
	}
	// Stacks and seats survive the reset.
	if snap.Players[0].Chips != 990 || snap.Players[1].Chips != 1010 {
		t.Fatalf("stacks must carry over: %+v", snap.Players)
	}
	if snap.Players[0].Position != 0 || snap.Players[1].Position != 1 {
		t.Fatalf("seats must carry over: %+v", snap.Players)
	}
}

func TestSeatingRules(t *testing.T) {
	tbl := newTable(1, 10, 20, rand.New(rand.NewSource(5)))

	if err := tbl.AddPlayer(1, "alice", 1000, 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Re-adding the same id is a no-op success.
	if err := tbl.AddPlayer(1, "alice", 1000, 4); err != nil {
		t.Fatalf("re-add should succeed: %v", err)
	}
	if tbl.PlayerCount() != 1 {
		t.Fatalf("re-add duplicated the player: %d", tbl.PlayerCount())
	}
	if err := tbl.AddPlayer(2, "bob", 1000, 0); !errors.Is(err, appErr.ErrSeatUnavailable) {
		t.Fatalf("occupied seat should fail, got %v", err)
	}

	for i := int64(2); i <= 9; i++ {
		if err := tbl.AddPlayer(i, "p", 1000, int(i-1)); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if err := tbl.AddPlayer(10, "late", 1000, -1); !errors.Is(err, appErr.ErrTableFull) {
		t.Fatalf("10th player should hit ErrTableFull, got %v", err)
	}
	if tbl.NextFreeSeat() != -1 {
		t.Fatalf("full table should report no free seat")
	}

	if err := tbl.ChangeSeat(1, 9); !errors.Is(err, appErr.ErrSeatUnavailable) {
		t.Fatalf("seat out of range should fail, got %v", err)
	}
	if err := tbl.ChangeSeat(1, 1); !errors.Is(err, appErr.ErrSeatUnavailable) {
		t.Fatalf("occupied target should fail, got %v", err)
	}
	if err := tbl.SetReady(99, true); !errors.Is(err, appErr.ErrPlayerNotFound) {
		t.Fatalf("unknown player ready should fail, got %v", err)
	}
}

func TestSeatingLockedDuringHand(t *testing.T) {
	tbl := newHeadsUpTable(t)
	tbl.StartHand()

	if err := tbl.AddPlayer(3, "carol", 1000, 2); !errors.Is(err, appErr.ErrSeatUnavailable) {
		t.Fatalf("join mid-hand should fail, got %v", err)
	}
	if err := tbl.ChangeSeat(1, 5); !errors.Is(err, appErr.ErrSeatUnavailable) {
		t.Fatalf("seat change mid-hand should fail, got %v", err)
	}
}

func TestRemovePlayerMidHandFoldsOut(t *testing.T) {
	tbl := newThreeWayTable(t)
	tbl.StartHand()

	// Carol (big blind, not on turn) disconnects: folded out now, unseated
	// at the next reset.
	if err := tbl.RemovePlayer(3); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if tbl.PlayerCount() != 3 {
		t.Fatalf("mid-hand removal must keep the seat list intact, got %d", tbl.PlayerCount())
	}
	snap := tbl.Snapshot(0)
	for _, p := range snap.Players {
		if p.UserID == 3 && !p.IsFolded {
			t.Fatalf("departed player should be folded: %+v", p)
		}
	}

	mustAct(t, tbl, 1, ActionFold, 0)
	if tbl.Stage() != StageFinished {
		t.Fatalf("expected hand over, stage=%s", tbl.Stage())
	}
	tbl.ResetForNextHand()
	if tbl.PlayerCount() != 2 {
		t.Fatalf("reset should drop departed players, got %d", tbl.PlayerCount())
	}
}

func TestSnapshotHoleCardPrivacy(t *testing.T) {
	tbl := newHeadsUpTable(t)
	tbl.StartHand()

	mine := tbl.Snapshot(1)
	for _, p := range mine.Players {
		if p.UserID == 1 && len(p.HoleCards) != 2 {
			t.Fatalf("own snapshot must include hole cards: %+v", p)
		}
		if p.UserID == 2 && len(p.HoleCards) != 0 {
			t.Fatalf("opponent cards must stay hidden: %+v", p)
		}
	}
	spectator := tbl.Snapshot(0)
	for _, p := range spectator.Players {
		if len(p.HoleCards) != 0 {
			t.Fatalf("spectator must see no hole cards: %+v", p)
		}
	}
}

func TestReadyToStart(t *testing.T) {
	tbl := newHeadsUpTable(t)
	if tbl.ReadyToStart() {
		t.Fatal("nobody is ready yet")
	}
	tbl.SetReady(1, true)
	if tbl.ReadyToStart() {
		t.Fatal("one ready player is not enough")
	}
	tbl.SetReady(2, true)
	if !tbl.ReadyToStart() {
		t.Fatal("all ready with two players should start")
	}
}
