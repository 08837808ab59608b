package room

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/minigame_lobby/internal/cards"
	"example.com/minigame_lobby/internal/game"
)

type sent struct {
	to      string
	event   string
	payload any
}

type recorder struct{ msgs []sent }

func (r *recorder) Send(connID, event string, payload any) {
	r.msgs = append(r.msgs, sent{connID, event, payload})
}

func (r *recorder) reset() { r.msgs = nil }

func (r *recorder) to(id, event string) []any {
	var out []any
	for _, m := range r.msgs {
		if m.to == id && m.event == event {
			out = append(out, m.payload)
		}
	}
	return out
}

func (r *recorder) lastState(t *testing.T, id string) State {
	t.Helper()
	states := r.to(id, EventRoomState)
	require.NotEmpty(t, states, "no room-state for %s", id)
	return states[len(states)-1].(State)
}

func newTestRegistry() (*Registry, *recorder) {
	rec := &recorder{}
	return NewRegistry(rec, WithRand(rand.New(rand.NewPCG(7, 11)))), rec
}

func TestEnsureCreatesGuessRoomOnce(t *testing.T) {
	reg, _ := newTestRegistry()
	a := reg.Ensure("r1")
	b := reg.Ensure("r1")
	assert.Same(t, a, b)
	assert.Equal(t, game.TypeGuess, a.Game.Type())
	assert.Empty(t, a.Members)

	got, ok := reg.Get("r1")
	require.True(t, ok)
	assert.Same(t, a, got)
	_, ok = reg.Get("nope")
	assert.False(t, ok)
}

func TestConnectAssignsPlaceholderName(t *testing.T) {
	reg, _ := newTestRegistry()
	p := reg.Connect("c1")
	assert.Regexp(t, `^Player-\d{1,4}$`, p.Name)
	assert.Empty(t, p.Room)

	got, ok := reg.Participant("c1")
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestJoinDefaultsToLobbyAndBroadcasts(t *testing.T) {
	reg, rec := newTestRegistry()
	reg.Connect("c1")
	reg.SetName("c1", "ann")
	reg.Join("c1", "  ")

	p, _ := reg.Participant("c1")
	assert.Equal(t, DefaultRoom, p.Room)

	room, ok := reg.Get(DefaultRoom)
	require.True(t, ok)
	assert.Equal(t, []string{"c1"}, room.Members)
	assert.Equal(t, "ann", room.Names["c1"])

	assert.Equal(t, []any{"ann joined lobby"}, rec.to("c1", EventSystem))
	st := rec.lastState(t, "c1")
	assert.Equal(t, game.TypeGuess, st.GameType)
	assert.Equal(t, []Member{{ID: "c1", Name: "ann"}}, st.Members)
}

func TestJoinMovesBetweenRooms(t *testing.T) {
	reg, rec := newTestRegistry()
	reg.Connect("c1")
	reg.Connect("c2")
	reg.Join("c1", "r1")
	reg.Join("c2", "r1")
	rec.reset()

	reg.Join("c1", "r2")

	r1, _ := reg.Get("r1")
	r2, _ := reg.Get("r2")
	assert.Equal(t, []string{"c2"}, r1.Members)
	assert.NotContains(t, r1.Names, "c1")
	assert.Equal(t, []string{"c1"}, r2.Members)

	// c2 sees the membership change in r1.
	assert.Len(t, rec.lastState(t, "c2").Members, 1)
	assert.NotEmpty(t, rec.to("c1", EventRoomState))
}

func TestJoinSameRoomKeepsOrder(t *testing.T) {
	reg, rec := newTestRegistry()
	for _, id := range []string{"c1", "c2"} {
		reg.Connect(id)
		reg.Join(id, "r")
	}
	rec.reset()
	reg.Join("c1", "r")

	room, _ := reg.Get("r")
	assert.Equal(t, []string{"c1", "c2"}, room.Members)
	assert.Empty(t, rec.to("c1", EventSystem))
	assert.NotEmpty(t, rec.to("c1", EventRoomState))
}

func TestSetNameUpdatesRoom(t *testing.T) {
	reg, rec := newTestRegistry()
	reg.Connect("c1")
	reg.Join("c1", "r")
	rec.reset()

	reg.SetName("c1", "   ")
	assert.Empty(t, rec.msgs)

	reg.SetName("c1", "  zed ")
	room, _ := reg.Get("r")
	assert.Equal(t, "zed", room.Names["c1"])
	assert.Equal(t, "zed", rec.lastState(t, "c1").Members[0].Name)
}

func TestSelectGame(t *testing.T) {
	reg, rec := newTestRegistry()
	reg.Connect("c1")
	reg.Connect("c2")

	require.NoError(t, reg.SelectGame("c1", "gin"), "not in a room is ignored")

	reg.Join("c1", "r")
	reg.Join("c2", "r")

	err := reg.SelectGame("c1", "chess")
	assert.True(t, errors.Is(err, game.ErrUnknownGame))
	room, _ := reg.Get("r")
	assert.Equal(t, game.TypeGuess, room.Game.Type())

	require.NoError(t, reg.SelectGame("c1", "tictactoe"))
	ttt := room.Game.(*game.TicTacToe)
	assert.Equal(t, map[string]game.Mark{"c1": game.MarkX, "c2": game.MarkO}, ttt.Marks)
	assert.Equal(t, game.TypeTicTacToe, rec.lastState(t, "c2").GameType)
}

func TestGuessUsesDisplayName(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.Connect("c1")
	reg.SetName("c1", "ann")
	reg.Join("c1", "r")

	room, _ := reg.Get("r")
	g := room.Game.(*game.GuessGame)
	secret := g.Secret
	reg.Act("c1", game.Guess{Name: "spoofed", Text: secret})

	require.Len(t, g.History, 1)
	assert.Equal(t, "ann", g.History[0].Name)
	assert.Equal(t, "ann", g.Winner)
	assert.NotEqual(t, secret, g.Secret)
}

func TestGinSeatsFollowMembership(t *testing.T) {
	reg, rec := newTestRegistry()
	reg.Connect("c1")
	reg.Join("c1", "r")
	require.NoError(t, reg.SelectGame("c1", "gin"))

	room, _ := reg.Get("r")
	gin := room.Game.(*game.Gin)
	assert.Equal(t, game.PhaseWait, gin.Phase)

	rec.reset()
	reg.Act("c1", game.Draw{Source: game.SourceStock})
	assert.Equal(t, []any{"Waiting for a second player…"}, rec.to("c1", EventSystem))
	assert.Empty(t, rec.to("c1", EventRoomState))

	reg.Connect("c2")
	reg.Join("c2", "r")
	assert.Equal(t, []string{"c1", "c2"}, gin.Players)
	assert.Len(t, gin.Hands["c2"], cards.HandSize)
	assert.Equal(t, game.PhaseDraw, gin.Phase)
	assert.Equal(t, "c1", gin.Current)

	reg.Connect("c3")
	reg.Join("c3", "r")
	assert.Equal(t, []string{"c1", "c2"}, gin.Players, "third member does not take a seat")

	reg.Disconnect("c1")
	assert.Equal(t, []string{"c2", "c3"}, room.Members)
	gin = room.Game.(*game.Gin)
	assert.Equal(t, []string{"c2", "c3"}, gin.Players)
	assert.Equal(t, cards.DeckSize, gin.CardCount())
	_, ok := reg.Participant("c1")
	assert.False(t, ok)
}

func TestGinPrivateHandsOnlyToOwner(t *testing.T) {
	reg, rec := newTestRegistry()
	for _, id := range []string{"c1", "c2", "c3"} {
		reg.Connect(id)
		reg.Join(id, "r")
	}
	rec.reset()
	require.NoError(t, reg.SelectGame("c1", "gin"))

	room, _ := reg.Get("r")
	gin := room.Game.(*game.Gin)

	for _, id := range []string{"c1", "c2"} {
		priv := rec.to(id, EventGinPrivate)
		require.Len(t, priv, 1)
		assert.Equal(t, game.HandView{Hand: gin.Hands[id]}, priv[0])
	}
	assert.Empty(t, rec.to("c3", EventGinPrivate))

	raw, err := json.Marshal(rec.lastState(t, "c3"))
	require.NoError(t, err)
	for _, c := range gin.Hands["c1"] {
		assert.NotContains(t, string(raw), `"`+c+`"`)
	}
}

func TestGinPlayThroughRegistry(t *testing.T) {
	reg, rec := newTestRegistry()
	for _, id := range []string{"c1", "c2"} {
		reg.Connect(id)
		reg.Join(id, "r")
	}
	require.NoError(t, reg.SelectGame("c2", "gin"))
	room, _ := reg.Get("r")
	gin := room.Game.(*game.Gin)

	rec.reset()
	reg.Act("c2", game.Draw{Source: game.SourceStock})
	assert.Empty(t, rec.msgs, "out of turn is silent")

	reg.Act("c1", game.Move{Cell: 0})
	assert.Empty(t, rec.msgs, "foreign action is silent")

	reg.Act("c1", game.Draw{Source: game.SourceDiscard})
	assert.Equal(t, game.PhaseDiscard, gin.Phase)
	assert.Len(t, rec.to("c1", EventRoomState), 1)
	assert.Len(t, rec.to("c2", EventRoomState), 1)
	assert.Len(t, rec.to("c1", EventGinPrivate), 1)
}

func TestLeaveAndRemove(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.Connect("c1")
	reg.Join("c1", "r")

	assert.False(t, reg.Remove("r"), "occupied rooms stay")
	reg.Leave("c1")
	p, _ := reg.Participant("c1")
	assert.Empty(t, p.Room)

	assert.Equal(t, []Summary{{ID: "r", GameType: game.TypeGuess, Members: 0}}, reg.Rooms())
	assert.True(t, reg.Remove("r"))
	assert.False(t, reg.Remove("r"))
	assert.Empty(t, reg.Rooms())
}

func TestUnknownParticipantIsIgnored(t *testing.T) {
	reg, rec := newTestRegistry()
	reg.Join("ghost", "r")
	reg.Leave("ghost")
	reg.SetName("ghost", "x")
	reg.Act("ghost", game.Move{Cell: 1})
	reg.Disconnect("ghost")
	assert.Empty(t, rec.msgs)
	assert.Empty(t, reg.Rooms())
}

func TestDefaultRoomOption(t *testing.T) {
	reg := NewRegistry(&recorder{}, WithDefaultRoom("hall"))
	reg.Connect("c1")
	reg.Join("c1", "")
	p, _ := reg.Participant("c1")
	assert.Equal(t, "hall", p.Room)
}
