package game

import "sort"

// HandCategory ordinals are the strength order: a higher category always
// beats a lower one.
type HandCategory int

const (
	HighCard HandCategory = iota + 1
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (c HandCategory) String() string {
	switch c {
	case HighCard:
		return "HIGH_CARD"
	case Pair:
		return "PAIR"
	case TwoPair:
		return "TWO_PAIR"
	case ThreeOfAKind:
		return "THREE_OF_A_KIND"
	case Straight:
		return "STRAIGHT"
	case Flush:
		return "FLUSH"
	case FullHouse:
		return "FULL_HOUSE"
	case FourOfAKind:
		return "FOUR_OF_A_KIND"
	case StraightFlush:
		return "STRAIGHT_FLUSH"
	case RoyalFlush:
		return "ROYAL_FLUSH"
	default:
		return "UNKNOWN"
	}
}

// HandValue ranks a 5-card hand: category first, then the kicker key
// compared lexicographically (higher is better).
type HandValue struct {
	Category HandCategory
	Kickers  []int
}

// Compare returns -1, 0 or 1 as v sorts below, equal to or above other.
func (v HandValue) Compare(other HandValue) int {
	if v.Category != other.Category {
		if v.Category < other.Category {
			return -1
		}
		return 1
	}
	for i := 0; i < len(v.Kickers) && i < len(other.Kickers); i++ {
		if v.Kickers[i] != other.Kickers[i] {
			if v.Kickers[i] < other.Kickers[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(v.Kickers) < len(other.Kickers):
		return -1
	case len(v.Kickers) > len(other.Kickers):
		return 1
	}
	return 0
}

// Evaluate finds the best 5-card hand among the given cards (typically 5-7:
// two hole cards plus the board). Fewer than 5 cards evaluates to a bare
// high card with no kicker key, matching the pre-flop degenerate case.
func Evaluate(cards []Card) HandValue {
	if len(cards) < 5 {
		return HandValue{Category: HighCard}
	}

	best := HandValue{}
	combo := make([]Card, 5)
	var pick func(start, depth int)
	pick = func(start, depth int) {
		if depth == 5 {
			v := evaluateFive(combo)
			if best.Category == 0 || v.Compare(best) > 0 {
				best = v
			}
			return
		}
		for i := start; i <= len(cards)-(5-depth); i++ {
			combo[depth] = cards[i]
			pick(i+1, depth+1)
		}
	}
	pick(0, 0)
	return best
}

func evaluateFive(cards []Card) HandValue {
	ranks := make([]int, 5)
	for i, c := range cards {
		ranks[i] = int(c.Rank)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	flush := true
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			flush = false
			break
		}
	}
	straight := isStraight(ranks)

	counts := make(map[int]int, 5)
	for _, r := range ranks {
		counts[r]++
	}
	// Distinct ranks ordered by (count desc, rank desc): the kicker key for
	// every paired category.
	grouped := make([]int, 0, len(counts))
	for r := range counts {
		grouped = append(grouped, r)
	}
	sort.Slice(grouped, func(i, j int) bool {
		if counts[grouped[i]] != counts[grouped[j]] {
			return counts[grouped[i]] > counts[grouped[j]]
		}
		return grouped[i] > grouped[j]
	})
	shape := make([]int, 0, len(counts))
	for _, r := range grouped {
		shape = append(shape, counts[r])
	}

	switch {
	case straight && flush:
		if ranks[0] == 14 && ranks[4] == 10 {
			return HandValue{Category: RoyalFlush, Kickers: ranks}
		}
		return HandValue{Category: StraightFlush, Kickers: ranks}
	case matchShape(shape, 4, 1):
		return HandValue{Category: FourOfAKind, Kickers: grouped}
	case matchShape(shape, 3, 2):
		return HandValue{Category: FullHouse, Kickers: grouped}
	case flush:
		return HandValue{Category: Flush, Kickers: ranks}
	case straight:
		return HandValue{Category: Straight, Kickers: ranks}
	case matchShape(shape, 3, 1, 1):
		return HandValue{Category: ThreeOfAKind, Kickers: grouped}
	case matchShape(shape, 2, 2, 1):
		return HandValue{Category: TwoPair, Kickers: grouped}
	case matchShape(shape, 2, 1, 1, 1):
		return HandValue{Category: Pair, Kickers: grouped}
	default:
		return HandValue{Category: HighCard, Kickers: ranks}
	}
}

func matchShape(shape []int, want ...int) bool {
	if len(shape) != len(want) {
		return false
	}
	for i := range want {
		if shape[i] != want[i] {
			return false
		}
	}
	return true
}

// isStraight expects ranks sorted descending. The wheel A-2-3-4-5 counts as
// a straight; its kicker key keeps the raw descending order.
func isStraight(ranks []int) bool {
	for i := 0; i < 4; i++ {
		if ranks[i] == ranks[i+1] {
			return false
		}
	}
	if ranks[0]-ranks[4] == 4 {
		return true
	}
	return ranks[0] == 14 && ranks[1] == 5 && ranks[2] == 4 && ranks[3] == 3 && ranks[4] == 2
}
