package room

import (
	"slices"

	"example.com/minigame_lobby/internal/game"
)

// Outbound event names.
const (
	EventSystem     = "system"
	EventRoomState  = "room-state"
	EventGinPrivate = "gin-private"
)

type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// State is the public room projection every member receives.
type State struct {
	GameType game.Type `json:"gameType"`
	State    any       `json:"state"`
	Members  []Member  `json:"members"`
}

// Project derives the public view of a room.
func Project(room *Room) State {
	members := make([]Member, 0, len(room.Members))
	for _, id := range room.Members {
		members = append(members, Member{ID: id, Name: room.Names[id]})
	}
	return State{
		GameType: room.Game.Type(),
		State:    room.Game.PublicView(),
		Members:  members,
	}
}

// broadcast sends the public projection to every member, then each seat's
// private view to that seat alone.
func (r *Registry) broadcast(room *Room) {
	if room == nil {
		return
	}
	st := Project(room)
	for _, id := range room.Members {
		r.out.Send(id, EventRoomState, st)
	}
	for _, seat := range room.Game.Seats() {
		if !slices.Contains(room.Members, seat) {
			continue
		}
		if v, ok := room.Game.PrivateView(seat); ok {
			r.out.Send(seat, EventGinPrivate, v)
		}
	}
}

func (r *Registry) notice(room *Room, msg string) {
	for _, id := range room.Members {
		r.out.Send(id, EventSystem, msg)
	}
}
