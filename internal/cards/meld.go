package cards

import "slices"

// HandSize is the only hand length IsGin accepts. The search below is
// brute force over every 4-meld and pair of 3-melds, which stays small
// only because a hand never holds more than HandSize cards.
const HandSize = 10

// Meld is a set of indices into a hand.
type Meld []int

// SetMelds returns every same-rank meld: each 3-combination of a rank held
// three or more times, plus the 4-combination when all four are held.
func SetMelds(hand []string) []Meld {
	byRank := map[string][]int{}
	for i, tok := range hand {
		c, err := Parse(tok)
		if err != nil {
			continue
		}
		byRank[c.Rank] = append(byRank[c.Rank], i)
	}

	var melds []Meld
	for _, r := range Ranks {
		idxs := byRank[r]
		if len(idxs) < 3 {
			continue
		}
		for a := 0; a < len(idxs); a++ {
			for b := a + 1; b < len(idxs); b++ {
				for c := b + 1; c < len(idxs); c++ {
					melds = append(melds, Meld{idxs[a], idxs[b], idxs[c]})
				}
			}
		}
		if len(idxs) == 4 {
			melds = append(melds, slices.Clone(Meld(idxs)))
		}
	}
	return melds
}

// RunMelds returns every same-suit run of exactly 3 and exactly 4
// consecutive values. Longer runs yield each overlapping window.
func RunMelds(hand []string) []Meld {
	type slot struct{ idx, val int }
	bySuit := map[string][]slot{}
	for i, tok := range hand {
		c, err := Parse(tok)
		if err != nil {
			continue
		}
		bySuit[c.Suit] = append(bySuit[c.Suit], slot{i, c.Value})
	}

	var melds []Meld
	for _, s := range Suits {
		arr := bySuit[s]
		slices.SortStableFunc(arr, func(a, b slot) int { return a.val - b.val })
		consecutive := func(start, n int) bool {
			for k := 0; k < n-1; k++ {
				if arr[start+k+1].val != arr[start+k].val+1 {
					return false
				}
			}
			return true
		}
		for _, n := range []int{3, 4} {
			for start := 0; start+n <= len(arr); start++ {
				if !consecutive(start, n) {
					continue
				}
				m := make(Meld, n)
				for k := range m {
					m[k] = arr[start+k].idx
				}
				melds = append(melds, m)
			}
		}
	}
	return melds
}

// IsGin reports whether a HandSize hand splits exactly into one 4-card meld
// and two 3-card melds with no card shared or left over.
func IsGin(hand []string) bool {
	if len(hand) != HandSize {
		return false
	}

	var threes, fours []uint16
	for _, m := range append(SetMelds(hand), RunMelds(hand)...) {
		switch len(m) {
		case 3:
			threes = append(threes, m.mask())
		case 4:
			fours = append(fours, m.mask())
		}
	}

	const full = uint16(1)<<HandSize - 1
	for _, m4 := range fours {
		for i, a := range threes {
			if m4&a != 0 {
				continue
			}
			for _, b := range threes[i+1:] {
				if (m4|a)&b != 0 {
					continue
				}
				if m4|a|b == full {
					return true
				}
			}
		}
	}
	return false
}

func (m Meld) mask() uint16 {
	var bits uint16
	for _, i := range m {
		bits |= 1 << i
	}
	return bits
}
