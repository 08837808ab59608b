package room

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"example.com/minigame_lobby/internal/cards"
	"example.com/minigame_lobby/internal/game"
)

// DefaultRoom is joined when a client asks for an empty room code.
const DefaultRoom = "lobby"

// Sender delivers one event to one connection. It must not block.
type Sender interface {
	Send(connID, event string, payload any)
}

// Participant is one live connection.
type Participant struct {
	ID   string
	Name string
	Room string // "" when in no room
}

// Room is a named group of participants sharing one active game.
type Room struct {
	ID      string
	Members []string          // join order
	Names   map[string]string // member -> display name
	Game    game.Game
}

// Registry owns every room and participant. One mutex serialises all entry
// points so each action runs against a consistent room.
type Registry struct {
	mu           sync.Mutex
	rooms        map[string]*Room
	participants map[string]*Participant

	out         Sender
	rng         cards.Rand
	defaultRoom string
	log         zerolog.Logger
}

type Option func(*Registry)

// WithRand replaces the crypto/rand source used for decks, secrets and names.
func WithRand(rng cards.Rand) Option {
	return func(r *Registry) { r.rng = rng }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

func WithDefaultRoom(id string) Option {
	return func(r *Registry) {
		if id = strings.TrimSpace(id); id != "" {
			r.defaultRoom = id
		}
	}
}

func NewRegistry(out Sender, opts ...Option) *Registry {
	r := &Registry{
		rooms:        map[string]*Room{},
		participants: map[string]*Participant{},
		out:          out,
		rng:          cards.CryptoRand,
		defaultRoom:  DefaultRoom,
		log:          zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ---------- rooms ----------

// Ensure returns the room with the given id, creating it with a fresh
// guess game if it does not exist yet.
func (r *Registry) Ensure(id string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensure(id)
}

func (r *Registry) ensure(id string) *Room {
	if room, ok := r.rooms[id]; ok {
		return room
	}
	room := &Room{
		ID:    id,
		Names: map[string]string{},
		Game:  game.NewGuess(r.rng),
	}
	r.rooms[id] = room
	r.log.Info().Str("room", id).Msg("room created")
	return room
}

func (r *Registry) Get(id string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	return room, ok
}

// Remove deletes an empty room and reports whether it did.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok || len(room.Members) > 0 {
		return false
	}
	delete(r.rooms, id)
	r.log.Info().Str("room", id).Msg("room removed")
	return true
}

// Summary describes a room for the room list.
type Summary struct {
	ID       string    `json:"id"`
	GameType game.Type `json:"gameType"`
	Members  int       `json:"members"`
}

func (r *Registry) Rooms() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]Summary, 0, len(r.rooms))
	for _, room := range r.rooms {
		list = append(list, Summary{ID: room.ID, GameType: room.Game.Type(), Members: len(room.Members)})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// ---------- participants ----------

// Connect registers a connection under a placeholder display name.
func (r *Registry) Connect(id string) Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &Participant{ID: id, Name: fmt.Sprintf("Player-%d", r.rng.IntN(10000))}
	r.participants[id] = p
	return *p
}

func (r *Registry) Participant(id string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// Disconnect removes the participant from its room and forgets it.
func (r *Registry) Disconnect(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return
	}
	if room := r.rooms[p.Room]; room != nil {
		r.leave(room, p)
		r.notice(room, fmt.Sprintf("%s left", p.Name))
		r.broadcast(room)
	}
	delete(r.participants, id)
}

// Join moves the participant into roomID, leaving its previous room first.
func (r *Registry) Join(id, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return
	}
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		roomID = r.defaultRoom
	}

	if p.Room == roomID {
		r.broadcast(r.rooms[roomID])
		return
	}
	if old := r.rooms[p.Room]; old != nil {
		r.leave(old, p)
		r.broadcast(old)
	}

	room := r.ensure(roomID)
	room.Members = append(room.Members, id)
	room.Names[id] = p.Name
	p.Room = roomID
	room.Game.Reconcile(room.Members)
	r.log.Debug().Str("room", roomID).Str("conn", id).Msg("joined")

	r.notice(room, fmt.Sprintf("%s joined %s", p.Name, roomID))
	r.broadcast(room)
}

// Leave takes the participant out of its room without joining another.
func (r *Registry) Leave(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return
	}
	room := r.rooms[p.Room]
	if room == nil {
		return
	}
	r.leave(room, p)
	r.notice(room, fmt.Sprintf("%s left", p.Name))
	r.broadcast(room)
}

func (r *Registry) leave(room *Room, p *Participant) {
	room.Members = slices.DeleteFunc(room.Members, func(m string) bool { return m == p.ID })
	delete(room.Names, p.ID)
	p.Room = ""
	room.Game.Reconcile(room.Members)
	r.log.Debug().Str("room", room.ID).Str("conn", p.ID).Msg("left")
}

// SetName renames the participant; blank names are ignored.
func (r *Registry) SetName(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return
	}
	if name = strings.TrimSpace(name); name == "" {
		return
	}
	p.Name = name
	if room := r.rooms[p.Room]; room != nil {
		room.Names[id] = name
		r.broadcast(room)
	}
}

// ---------- games ----------

// SelectGame restarts the participant's room with a fresh game of the given
// type, seating current members in join order.
func (r *Registry) SelectGame(id, gameType string) error {
	t, err := game.ParseType(gameType)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return nil
	}
	room := r.rooms[p.Room]
	if room == nil {
		return nil
	}
	g, err := game.New(t, room.Members, r.rng)
	if err != nil {
		return err
	}
	room.Game = g
	r.log.Info().Str("room", room.ID).Str("game", string(t)).Msg("game selected")

	r.notice(room, fmt.Sprintf("%s set game to %s", p.Name, t))
	r.broadcast(room)
	return nil
}

// Act applies a game action on behalf of the participant. Actions that do
// not fit the active game, turn or phase are dropped without a reply.
func (r *Registry) Act(id string, a game.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return
	}
	room := r.rooms[p.Room]
	if room == nil {
		return
	}

	if gu, ok := a.(game.Guess); ok {
		gu.Name = r.displayName(room, p)
		a = gu
	}

	gin, isGin := room.Game.(*game.Gin)
	if isGin && !gin.Ready() {
		switch a.(type) {
		case game.Draw, game.Discard:
			r.notice(room, "Waiting for a second player…")
			return
		}
	}

	if !room.Game.Apply(id, a) {
		r.log.Debug().Str("room", room.ID).Str("conn", id).Type("action", a).Msg("action rejected")
		return
	}
	if isGin && gin.Phase == game.PhaseOver && gin.Winner == id {
		r.notice(room, fmt.Sprintf("%s went GIN!", r.displayName(room, p)))
	}
	r.broadcast(room)
}

func (r *Registry) displayName(room *Room, p *Participant) string {
	if n := room.Names[p.ID]; n != "" {
		return n
	}
	return p.Name
}
