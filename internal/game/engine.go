package game

import (
	"errors"
	"fmt"

	"example.com/minigame_lobby/internal/cards"
)

// Type tags the active game of a room.
type Type string

const (
	TypeGuess     Type = "guess"
	TypeTicTacToe Type = "tictactoe"
	TypeGin       Type = "gin"
)

var ErrUnknownGame = errors.New("unknown game type")

// ParseType validates a client supplied game name.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeGuess, TypeTicTacToe, TypeGin:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGame, s)
}

// Action is one of Guess, Move, Draw or Discard. A game ignores actions
// meant for another game.
type Action interface{ action() }

type Guess struct {
	Name string // display name recorded in history
	Text string
}

type Move struct{ Cell int }

type Draw struct{ Source string }

type Discard struct{ Index int }

func (Guess) action()   {}
func (Move) action()    {}
func (Draw) action()    {}
func (Discard) action() {}

// Game is the authoritative state of one room's active game.
type Game interface {
	Type() Type
	// Apply reports whether the action changed the state. Rejected actions
	// leave the state untouched.
	Apply(actor string, a Action) bool
	// Reconcile re-derives seating after room membership changed and
	// reports whether the state changed.
	Reconcile(members []string) bool
	// Seats lists the participants bound to per-player state.
	Seats() []string
	PublicView() any
	// PrivateView returns what only the given seat may see, if anything.
	PrivateView(seat string) (any, bool)
}

// New starts a fresh game of type t, seating members in join order.
func New(t Type, members []string, rng cards.Rand) (Game, error) {
	seats := AssignSeats(members)
	switch t {
	case TypeGuess:
		return NewGuess(rng), nil
	case TypeTicTacToe:
		return NewTicTacToe(seats), nil
	case TypeGin:
		return NewGin(seats, rng), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGame, string(t))
}
