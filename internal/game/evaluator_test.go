package game

import "testing"

func cards(pairs ...interface{}) []Card {
	// pairs alternate Rank, Suit
	out := make([]Card, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Card{Rank: pairs[i].(Rank), Suit: pairs[i+1].(Suit)})
	}
	return out
}

func TestEvaluateCategories(t *testing.T) {
	tests := []struct {
		name string
		in   []Card
		want HandCategory
	}{
		{"royal flush", cards(Ace, Spades, King, Spades, Queen, Spades, Jack, Spades, Ten, Spades), RoyalFlush},
		{"straight flush", cards(Nine, Hearts, Eight, Hearts, Seven, Hearts, Six, Hearts, Five, Hearts), StraightFlush},
		{"wheel straight flush", cards(Ace, Hearts, Two, Hearts, Three, Hearts, Four, Hearts, Five, Hearts), StraightFlush},
		{"four of a kind", cards(Five, Clubs, Five, Diamonds, Five, Hearts, Five, Spades, Two, Clubs), FourOfAKind},
		{"full house", cards(Ace, Clubs, Ace, Diamonds, Ace, Hearts, King, Spades, King, Clubs), FullHouse},
		{"flush", cards(Ace, Clubs, Ten, Clubs, Eight, Clubs, Six, Clubs, Three, Clubs), Flush},
		{"straight", cards(Two, Clubs, Three, Diamonds, Four, Hearts, Five, Spades, Six, Clubs), Straight},
		{"wheel straight", cards(Ace, Clubs, Two, Diamonds, Three, Hearts, Four, Spades, Five, Clubs), Straight},
		{"three of a kind", cards(Nine, Clubs, Nine, Diamonds, Nine, Hearts, King, Spades, Two, Clubs), ThreeOfAKind},
		{"two pair", cards(Ace, Clubs, Ace, Diamonds, King, Hearts, King, Spades, Two, Clubs), TwoPair},
		{"pair", cards(Jack, Clubs, Jack, Diamonds, Nine, Hearts, Five, Spades, Two, Clubs), Pair},
		{"high card", cards(Ace, Clubs, Jack, Diamonds, Nine, Hearts, Five, Spades, Two, Clubs), HighCard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.in)
			if got.Category != tt.want {
				t.Fatalf("expected %v, got %v (kickers %v)", tt.want, got.Category, got.Kickers)
			}
		})
	}
}

func TestEvaluateStrengthOrder(t *testing.T) {
	// Ascending by strength; every hand must beat the one before it.
	ladder := [][]Card{
		cards(Ace, Clubs, Jack, Diamonds, Nine, Hearts, Five, Spades, Two, Clubs),
		cards(Jack, Clubs, Jack, Diamonds, Nine, Hearts, Five, Spades, Two, Clubs),
		cards(Ace, Clubs, Ace, Diamonds, King, Hearts, King, Spades, Two, Clubs),
		cards(Nine, Clubs, Nine, Diamonds, Nine, Hearts, King, Spades, Two, Clubs),
		cards(Two, Clubs, Three, Diamonds, Four, Hearts, Five, Spades, Six, Clubs),
		cards(Ace, Clubs, Ten, Clubs, Eight, Clubs, Six, Clubs, Three, Clubs),
		cards(Ace, Clubs, Ace, Diamonds, Ace, Hearts, King, Spades, King, Clubs),
		cards(Five, Clubs, Five, Diamonds, Five, Hearts, Five, Spades, Two, Clubs),
		cards(Nine, Hearts, Eight, Hearts, Seven, Hearts, Six, Hearts, Five, Hearts),
		cards(Ace, Spades, King, Spades, Queen, Spades, Jack, Spades, Ten, Spades),
	}

	for i := 1; i < len(ladder); i++ {
		lo := Evaluate(ladder[i-1])
		hi := Evaluate(ladder[i])
		if hi.Compare(lo) <= 0 {
			t.Fatalf("ladder[%d] (%v) should beat ladder[%d] (%v)", i, hi.Category, i-1, lo.Category)
		}
	}
}

func TestEvaluateKickers(t *testing.T) {
	t.Run("paired categories order by count then rank", func(t *testing.T) {
		v := Evaluate(cards(King, Clubs, King, Diamonds, Two, Hearts, Two, Spades, Ace, Clubs))
		want := []int{13, 2, 14}
		if len(v.Kickers) != len(want) {
			t.Fatalf("unexpected kickers %v", v.Kickers)
		}
		for i := range want {
			if v.Kickers[i] != want[i] {
				t.Fatalf("expected kickers %v, got %v", want, v.Kickers)
			}
		}
	})

	t.Run("higher second pair wins", func(t *testing.T) {
		a := Evaluate(cards(Ace, Clubs, Ace, Diamonds, King, Hearts, King, Spades, Two, Clubs))
		b := Evaluate(cards(Ace, Hearts, Ace, Spades, Queen, Clubs, Queen, Diamonds, King, Clubs))
		if a.Compare(b) <= 0 {
			t.Fatalf("aces over kings should beat aces over queens")
		}
	})

	t.Run("high card compares all five ranks", func(t *testing.T) {
		a := Evaluate(cards(Ace, Clubs, Jack, Diamonds, Nine, Hearts, Five, Spades, Three, Clubs))
		b := Evaluate(cards(Ace, Hearts, Jack, Spades, Nine, Clubs, Five, Diamonds, Two, Clubs))
		if a.Compare(b) <= 0 {
			t.Fatalf("final kicker should break the tie")
		}
		if a.Compare(a) != 0 {
			t.Fatalf("identical hands should compare equal")
		}
	})
}

func TestEvaluateBestOfSeven(t *testing.T) {
	// Pocket pair plus a board straight: the straight is the best five.
	seven := cards(
		Nine, Clubs, Nine, Diamonds,
		Five, Hearts, Six, Spades, Seven, Clubs, Eight, Diamonds, Nine, Hearts,
	)
	v := Evaluate(seven)
	if v.Category != Straight {
		t.Fatalf("expected straight from 7 cards, got %v", v.Category)
	}
	if v.Kickers[0] != 9 {
		t.Fatalf("expected nine-high straight, got kickers %v", v.Kickers)
	}

	// A flush hiding in seven cards must beat the board pair.
	seven = cards(
		Two, Hearts, Nine, Hearts,
		King, Hearts, Five, Hearts, Five, Clubs, Jack, Hearts, Five, Diamonds,
	)
	if got := Evaluate(seven); got.Category != Flush {
		t.Fatalf("expected flush, got %v", got.Category)
	}
}

func TestEvaluateFewerThanFive(t *testing.T) {
	v := Evaluate(cards(Ace, Clubs, King, Diamonds))
	if v.Category != HighCard || len(v.Kickers) != 0 {
		t.Fatalf("short input should degrade to bare high card, got %+v", v)
	}
}
