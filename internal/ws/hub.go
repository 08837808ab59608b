package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"example.com/minigame_lobby/internal/game"
	"example.com/minigame_lobby/internal/room"
)

// ---------- message envelope ----------

// Msg is the inbound envelope: an action name and its raw payload.
type Msg struct {
	T string          `json:"t"`
	M json.RawMessage `json:"m,omitempty"`
}

// Event is the outbound envelope.
type Event struct {
	T string `json:"t"`
	M any    `json:"m,omitempty"`
}

// Inbound action names.
const (
	ActSetName    = "set-name"
	ActJoinRoom   = "join-room"
	ActLeaveRoom  = "leave-room"
	ActSelectGame = "select-game"
	ActGuess      = "guess"
	ActTTTMove    = "ttt-move"
	ActGinDraw    = "gin-draw"
	ActGinDiscard = "gin-discard"
	ActListRooms  = "list-rooms"
)

// Outbound events that are not room events.
const (
	EventHello = "hello"
	EventRooms = "rooms"
)

// ---------- hub ----------

type Options struct {
	AllowOrigins []string
	PingInterval time.Duration
	SendBuffer   int
	Logger       zerolog.Logger
}

// Hub owns live connections and implements room.Sender.
type Hub struct {
	allowOrigins map[string]bool
	ping         time.Duration
	sendBuf      int
	log          zerolog.Logger

	mu      sync.RWMutex
	clients map[string]*Client

	rooms *room.Registry
}

func NewHub(opts Options) *Hub {
	m := map[string]bool{}
	for _, a := range opts.AllowOrigins {
		if a != "" {
			m[a] = true
		}
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 15 * time.Second
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	return &Hub{
		allowOrigins: m,
		ping:         opts.PingInterval,
		sendBuf:      opts.SendBuffer,
		log:          opts.Logger,
		clients:      map[string]*Client{},
	}
}

// Bind attaches the registry that inbound actions are routed to. It must be
// called before ServeWS.
func (h *Hub) Bind(reg *room.Registry) { h.rooms = reg }

// Send queues an event for one connection, dropping it if the connection is
// gone or its queue is full.
func (h *Hub) Send(connID, event string, payload any) {
	b, err := json.Marshal(Event{T: event, M: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("marshal failed")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case c.send <- b:
	default:
		c.log.Warn().Str("event", event).Msg("send queue full, dropping")
	}
}

// Clients reports the number of live connections.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ---------- websockets ----------

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && !h.allowOrigins[origin] {
		http.Error(w, "forbidden origin", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Warn().Err(err).Msg("accept failed")
		return
	}

	client := newClient(conn, h.sendBuf, h.log)
	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()
	client.log.Info().Str("remote", r.RemoteAddr).Msg("client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		client.writePump(ctx, h.ping)
	}()

	p := h.rooms.Connect(client.id)
	h.Send(client.id, EventHello, map[string]string{"id": p.ID, "name": p.Name})

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var m Msg
		if err := json.Unmarshal(data, &m); err != nil {
			client.log.Debug().Err(err).Msg("bad envelope")
			continue
		}
		h.dispatch(client, m)
	}

	// disconnect
	h.mu.Lock()
	delete(h.clients, client.id)
	close(client.send)
	h.mu.Unlock()

	h.rooms.Disconnect(client.id)
	<-writerDone
	client.log.Info().Msg("client disconnected")
}

// dispatch decodes one action and routes it to the registry. Payloads of
// the wrong shape are dropped.
func (h *Hub) dispatch(c *Client, m Msg) {
	switch m.T {

	// ---- Identity / lobby ----
	case ActSetName:
		var name string
		if h.decode(c, m, &name) {
			h.rooms.SetName(c.id, name)
		}

	case ActJoinRoom:
		var code string
		if len(m.M) == 0 || h.decode(c, m, &code) {
			h.rooms.Join(c.id, code)
		}

	case ActLeaveRoom:
		h.rooms.Leave(c.id)

	case ActSelectGame:
		var t string
		if !h.decode(c, m, &t) {
			return
		}
		if err := h.rooms.SelectGame(c.id, t); err != nil {
			c.log.Debug().Err(err).Msg("select-game ignored")
		}

	case ActListRooms:
		h.Send(c.id, EventRooms, h.rooms.Rooms())

	// ---- Games ----
	case ActGuess:
		var text string
		if h.decode(c, m, &text) {
			h.rooms.Act(c.id, game.Guess{Text: text})
		}

	case ActTTTMove:
		var cell int
		if h.decode(c, m, &cell) {
			h.rooms.Act(c.id, game.Move{Cell: cell})
		}

	case ActGinDraw:
		var src string
		if h.decode(c, m, &src) {
			h.rooms.Act(c.id, game.Draw{Source: src})
		}

	case ActGinDiscard:
		var i int
		if h.decode(c, m, &i) {
			h.rooms.Act(c.id, game.Discard{Index: i})
		}

	default:
		c.log.Debug().Str("t", m.T).Msg("unknown action")
	}
}

func (h *Hub) decode(c *Client, m Msg, v any) bool {
	if err := json.Unmarshal(m.M, v); err != nil {
		c.log.Debug().Err(err).Str("t", m.T).Msg("bad payload")
		return false
	}
	return true
}
