package game

import (
	"fmt"
	"slices"

	"example.com/minigame_lobby/internal/cards"
)

type Phase string

const (
	PhaseWait    Phase = "wait"
	PhaseDraw    Phase = "draw"
	PhaseDiscard Phase = "discard"
	PhaseOver    Phase = "over"
)

const (
	SourceStock   = "stock"
	SourceDiscard = "discard"
)

// Gin is a two-player gin rummy table. Stock and discard are drawn from
// and pushed to at the end of the slice.
type Gin struct {
	Phase   Phase               `json:"phase"`
	Current string              `json:"current,omitempty"`
	Players []string            `json:"players"`
	Hands   map[string][]string `json:"hands"`
	Stock   []string            `json:"stock"`
	Discard []string            `json:"discard"`
	Waiting bool                `json:"waitingForPlayers"`
	Winner  string              `json:"winner,omitempty"`

	rng cards.Rand
}

// NewGin shuffles a fresh deck and deals HandSize cards to each of up to
// two seats, turns one card face up and leaves the rest as stock.
func NewGin(seats []string, rng cards.Rand) *Gin {
	g := &Gin{rng: rng}
	g.deal(AssignSeats(seats))
	return g
}

func (g *Gin) deal(seats []string) {
	deck := cards.NewDeck(g.rng)
	g.Players = seats
	g.Hands = make(map[string][]string, len(seats))
	for _, id := range seats {
		g.Hands[id] = slices.Clone(deck[:cards.HandSize])
		deck = deck[cards.HandSize:]
	}
	g.Discard = []string{deck[0]}
	g.Stock = slices.Clone(deck[1:])
	g.Winner = ""
	if len(seats) == MaxSeats {
		g.Phase, g.Current, g.Waiting = PhaseDraw, seats[0], false
	} else {
		g.Phase, g.Current, g.Waiting = PhaseWait, "", true
	}
}

func (g *Gin) Type() Type { return TypeGin }

func (g *Gin) Seats() []string { return g.Players }

// Ready reports whether both seats are filled.
func (g *Gin) Ready() bool { return len(g.Players) == MaxSeats }

func (g *Gin) Apply(actor string, a Action) bool {
	var changed bool
	switch a := a.(type) {
	case Draw:
		changed = g.draw(actor, a.Source)
	case Discard:
		changed = g.discard(actor, a.Index)
	}
	if changed {
		g.mustConserve()
	}
	return changed
}

func (g *Gin) draw(actor, source string) bool {
	if !g.Ready() || g.Phase != PhaseDraw || actor != g.Current {
		return false
	}
	var pile *[]string
	switch source {
	case SourceStock:
		pile = &g.Stock
	case SourceDiscard:
		pile = &g.Discard
	default:
		return false
	}
	n := len(*pile)
	if n == 0 {
		return false
	}
	g.Hands[actor] = append(g.Hands[actor], (*pile)[n-1])
	*pile = (*pile)[:n-1]
	g.Phase = PhaseDiscard
	return true
}

func (g *Gin) discard(actor string, i int) bool {
	if !g.Ready() || g.Phase != PhaseDiscard || actor != g.Current {
		return false
	}
	hand := g.Hands[actor]
	if i < 0 || i >= len(hand) {
		return false
	}
	g.Discard = append(g.Discard, hand[i])
	hand = slices.Delete(hand, i, i+1)
	g.Hands[actor] = hand

	if cards.IsGin(hand) {
		g.Phase = PhaseOver
		g.Winner = actor
		return true
	}
	g.Current = g.opponent(actor)
	g.Phase = PhaseDraw
	return true
}

func (g *Gin) opponent(id string) string {
	i := slices.Index(g.Players, id)
	return g.Players[(i+1)%len(g.Players)]
}

// Reconcile keeps the seats equal to the first two members. A single
// newcomer joining a waiting table is dealt in from the stock; any other
// change, including a seat leaving, redeals from a fresh deck.
func (g *Gin) Reconcile(members []string) bool {
	desired := AssignSeats(members)
	if slices.Equal(desired, g.Players) {
		return false
	}

	if g.Phase != PhaseOver && len(g.Players) == 1 && len(desired) == MaxSeats &&
		desired[0] == g.Players[0] && len(g.Stock) >= cards.HandSize {
		g.dealIn(desired[1])
	} else {
		g.deal(desired)
	}
	g.mustConserve()
	return true
}

// dealIn seats newcomer with HandSize cards off the top of the stock and
// starts play with the seat that was waiting.
func (g *Gin) dealIn(newcomer string) {
	n := len(g.Stock)
	g.Hands[newcomer] = slices.Clone(g.Stock[n-cards.HandSize:])
	g.Stock = g.Stock[:n-cards.HandSize]
	g.Players = []string{g.Players[0], newcomer}
	g.Phase, g.Current, g.Waiting = PhaseDraw, g.Players[0], false
}

// CardCount is the number of cards across stock, discard and every hand.
func (g *Gin) CardCount() int {
	n := len(g.Stock) + len(g.Discard)
	for _, h := range g.Hands {
		n += len(h)
	}
	return n
}

func (g *Gin) mustConserve() {
	if n := g.CardCount(); n != cards.DeckSize {
		panic(fmt.Sprintf("gin: %d cards in play, want %d", n, cards.DeckSize))
	}
}

type GinView struct {
	Type       Type           `json:"type"`
	Phase      Phase          `json:"phase"`
	Current    *string        `json:"current"`
	Players    []string       `json:"players"`
	Waiting    bool           `json:"waitingForPlayers"`
	StockCount int            `json:"stockCount"`
	DiscardTop *string        `json:"discardTop"`
	HandCounts map[string]int `json:"handCounts"`
	Winner     *string        `json:"winner"`
}

// PublicView never carries hand contents.
func (g *Gin) PublicView() any {
	v := GinView{
		Type:       TypeGin,
		Phase:      g.Phase,
		Current:    optional(g.Current),
		Players:    slices.Clone(g.Players),
		Waiting:    g.Waiting,
		StockCount: len(g.Stock),
		HandCounts: make(map[string]int, len(g.Hands)),
		Winner:     optional(g.Winner),
	}
	if n := len(g.Discard); n > 0 {
		v.DiscardTop = optional(g.Discard[n-1])
	}
	for id, h := range g.Hands {
		v.HandCounts[id] = len(h)
	}
	return v
}

type HandView struct {
	Hand []string `json:"hand"`
}

func (g *Gin) PrivateView(seat string) (any, bool) {
	hand, ok := g.Hands[seat]
	if !ok {
		return nil, false
	}
	return HandView{Hand: slices.Clone(hand)}, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
