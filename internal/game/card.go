package game

import (
	"math/rand"
	"strconv"
	"time"
)

// Suit symbols match the wire format clients render directly.
type Suit string

const (
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
	Spades   Suit = "♠"
)

var suits = [4]Suit{Hearts, Diamonds, Clubs, Spades}

// Rank runs 2..14 with 14 as the ace.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

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
	default:
		return strconv.Itoa(int(r))
	}
}

// Card is an immutable (suit, rank) pair.
type Card struct {
	Suit Suit
	Rank Rank
}

func (c Card) String() string {
	return c.Rank.String() + string(c.Suit)
}

// CardView is the JSON shape cards take in snapshots and results.
type CardView struct {
	Suit    string `json:"suit"`
	Rank    int    `json:"rank"`
	Display string `json:"display"`
}

func (c Card) View() CardView {
	return CardView{
		Suit:    string(c.Suit),
		Rank:    int(c.Rank),
		Display: c.String(),
	}
}

func cardViews(cards []Card) []CardView {
	views := make([]CardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, c.View())
	}
	return views
}

// Deck holds the undealt remainder of a shuffled 52-card deck. Cards are
// dealt from the back in O(1).
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck builds a shuffled deck. A nil rng gets a time-seeded source;
// tests pass a fixed seed for deterministic deals.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	d := &Deck{rng: rng}
	d.Reset()
	return d
}

// Reset repopulates all 52 cards and applies a uniform shuffle.
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
	for _, s := range suits {
		for r := Two; r <= Ace; r++ {
			d.cards = append(d.cards, Card{Suit: s, Rank: r})
		}
	}
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns up to n cards. Exhaustion returns what remains;
// requesting more than available during a hand is a caller bug, not an error.
func (d *Deck) Deal(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	if n <= 0 {
		return nil
	}
	dealt := make([]Card, n)
	for i := 0; i < n; i++ {
		last := len(d.cards) - 1
		dealt[i] = d.cards[last]
		d.cards = d.cards[:last]
	}
	return dealt
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}
