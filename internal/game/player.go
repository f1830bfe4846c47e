package game

// Player is the mutable per-seat state for one occupant of a table.
// Seat -1 means joined but not yet seated; seated positions are 0..8.
type Player struct {
	UserID   int64
	Username string
	Chips    int64
	Seat     int

	HoleCards  []Card
	CurrentBet int64
	TotalBet   int64

	Folded bool
	AllIn  bool
	Active bool
	Ready  bool
	Acted  bool

	departed bool
}

func NewPlayer(userID int64, username string, chips int64, seat int) *Player {
	return &Player{
		UserID:   userID,
		Username: username,
		Chips:    chips,
		Seat:     seat,
		Active:   true,
	}
}

// Bet moves up to amount from the stack into the bet counters and returns
// what actually moved. The stack never goes negative; draining it flips the
// all-in flag.
func (p *Player) Bet(amount int64) int64 {
	actual := amount
	if actual > p.Chips {
		actual = p.Chips
	}
	if actual < 0 {
		actual = 0
	}
	p.Chips -= actual
	p.CurrentBet += actual
	p.TotalBet += actual
	if p.Chips == 0 {
		p.AllIn = true
	}
	return actual
}

// Fold is terminal for the hand; the player keeps seat and stack.
func (p *Player) Fold() {
	p.Folded = true
	p.Active = false
}

// ResetForStreet clears the per-street fields at each stage transition.
func (p *Player) ResetForStreet() {
	p.CurrentBet = 0
	p.Acted = false
}

// resetForHand clears everything a new hand redeals, leaving stack and seat.
func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.CurrentBet = 0
	p.TotalBet = 0
	p.Folded = false
	p.AllIn = false
	p.Active = true
	p.Acted = false
}

// inHand reports whether the player can still win the pot.
func (p *Player) inHand() bool {
	return p.Active && !p.Folded
}
