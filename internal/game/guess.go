package game

import (
	"strings"
	"unicode/utf8"

	"example.com/minigame_lobby/internal/cards"
)

const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

type GuessEntry struct {
	Name   string `json:"name"`
	Guess  string `json:"guess"`
	Result string `json:"result"`
}

// GuessGame asks everyone in the room to find one hidden lowercase letter.
// A hit rerolls the secret so play continues without reselecting the game.
type GuessGame struct {
	Secret  string       `json:"secret"`
	History []GuessEntry `json:"history"`
	Winner  string       `json:"winner,omitempty"`

	rng cards.Rand
}

func NewGuess(rng cards.Rand) *GuessGame {
	g := &GuessGame{History: []GuessEntry{}, rng: rng}
	g.Secret = g.roll()
	return g
}

func (g *GuessGame) roll() string {
	return string(rune('a' + g.rng.IntN(26)))
}

func (g *GuessGame) Type() Type { return TypeGuess }

func (g *GuessGame) Apply(_ string, a Action) bool {
	guess, ok := a.(Guess)
	if !ok {
		return false
	}
	r, _ := utf8.DecodeRuneInString(strings.ToLower(strings.TrimSpace(guess.Text)))
	if r == utf8.RuneError {
		return false
	}
	ch := string(r)

	result := ResultMiss
	if ch == g.Secret {
		result = ResultHit
		g.Winner = guess.Name
		old := g.Secret
		for g.Secret == old {
			g.Secret = g.roll()
		}
	}
	g.History = append(g.History, GuessEntry{Name: guess.Name, Guess: ch, Result: result})
	return true
}

func (g *GuessGame) Reconcile([]string) bool { return false }

func (g *GuessGame) Seats() []string { return nil }

type GuessView struct {
	Type    Type         `json:"type"`
	History []GuessEntry `json:"history"`
	Winner  string       `json:"winner,omitempty"`
}

// PublicView leaves out the secret.
func (g *GuessGame) PublicView() any {
	return GuessView{Type: TypeGuess, History: g.History, Winner: g.Winner}
}

func (g *GuessGame) PrivateView(string) (any, bool) { return nil, false }
