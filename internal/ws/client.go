package ws

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

// Client is one websocket connection. Only the writer goroutine touches
// conn for writes; everything else queues on send.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger
}

func newClient(conn *websocket.Conn, buf int, log zerolog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan []byte, buf),
		log:  log.With().Str("conn", id).Logger(),
	}
}

// writePump drains send until it is closed or ctx ends, pinging on every
// tick.
func (c *Client) writePump(ctx context.Context, ping time.Duration) {
	t := time.NewTicker(ping)
	defer func() {
		t.Stop()
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				c.log.Warn().Err(err).Msg("write failed")
				return
			}
		case <-t.C:
			if err := c.conn.Ping(ctx); err != nil {
				c.log.Debug().Err(err).Msg("ping failed")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
