package game

import "encoding/json"

// Mark is a board cell's occupant. The zero value is an empty cell.
type Mark string

const (
	MarkX Mark = "X"
	MarkO Mark = "O"
)

// MarshalJSON encodes an empty cell as null.
func (m Mark) MarshalJSON() ([]byte, error) {
	if m == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6},
}

type TicTacToe struct {
	Board  [9]Mark         `json:"board"`
	Turn   Mark            `json:"turn"`
	Marks  map[string]Mark `json:"marks"`
	Winner Mark            `json:"winner"`
	Draw   bool            `json:"draw"`

	seats []string
}

func NewTicTacToe(seats []string) *TicTacToe {
	t := &TicTacToe{Turn: MarkX, Marks: map[string]Mark{}, seats: seats}
	for i, m := range []Mark{MarkX, MarkO} {
		if i < len(seats) {
			t.Marks[seats[i]] = m
		}
	}
	return t
}

func (t *TicTacToe) Type() Type { return TypeTicTacToe }

func (t *TicTacToe) Apply(actor string, a Action) bool {
	mv, ok := a.(Move)
	if !ok {
		return false
	}
	if t.Winner != "" || t.Draw {
		return false
	}
	mark, ok := t.Marks[actor]
	if !ok || mark != t.Turn {
		return false
	}
	if mv.Cell < 0 || mv.Cell >= len(t.Board) || t.Board[mv.Cell] != "" {
		return false
	}

	t.Board[mv.Cell] = mark
	switch {
	case t.winner() != "":
		t.Winner = t.winner()
	case t.full():
		t.Draw = true
	default:
		t.Turn = other(t.Turn)
	}
	return true
}

func (t *TicTacToe) winner() Mark {
	for _, l := range lines {
		a := t.Board[l[0]]
		if a != "" && a == t.Board[l[1]] && a == t.Board[l[2]] {
			return a
		}
	}
	return ""
}

func (t *TicTacToe) full() bool {
	for _, c := range t.Board {
		if c == "" {
			return false
		}
	}
	return true
}

func other(m Mark) Mark {
	if m == MarkX {
		return MarkO
	}
	return MarkX
}

// Reconcile keeps marks as assigned when the game started.
func (t *TicTacToe) Reconcile([]string) bool { return false }

func (t *TicTacToe) Seats() []string { return t.seats }

type TicTacToeView struct {
	Type Type `json:"type"`
	*TicTacToe
}

func (t *TicTacToe) PublicView() any {
	return TicTacToeView{Type: TypeTicTacToe, TicTacToe: t}
}

func (t *TicTacToe) PrivateView(string) (any, bool) { return nil, false }
