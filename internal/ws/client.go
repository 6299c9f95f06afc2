package ws

import (
    "log"
    "time"

    "github.com/google/uuid"
    "github.com/gorilla/websocket"
)

const (
    writeWait  = 10 * time.Second // deadline for a single outbound write
    pongWait   = 60 * time.Second // connection is dead if no pong arrives in this window
    pingPeriod = 54 * time.Second // must be shorter than pongWait
    maxMsgSize = 4096             // inbound frame size cap
    sendBuffer = 64               // outbound queue per connection
)

// Frame is the wire envelope exchanged over the real-time channel.
// Inbound frames are client commands (join/leave/message); outbound
// frames carry broadcasts, history replays, notification signals and
// errors.  The token travels on every inbound frame so stateless
// workers can re-validate identity per send.
type Frame struct {
    Type    string `json:"type"`              // join, leave, message, history, notification, error, system
    RoomID  uint64 `json:"room_id,omitempty"`
    Body    string `json:"body,omitempty"`
    Token   string `json:"token,omitempty"`
    Payload any    `json:"payload,omitempty"`
}

// FrameHandler processes inbound frames on behalf of a client.  It is
// implemented by the chat transport handler, which performs the
// authorization and relay calls; the ws package itself stays free of
// business logic.
type FrameHandler interface {
    HandleFrame(c *Client, f Frame)
}

// Client is one live websocket connection bound to a verified user.
type Client struct {
    ID     uuid.UUID
    UserID uint64

    conn  *websocket.Conn
    send  chan []byte
    rooms map[uint64]bool // guarded by the hub mutex
}

// NewClient wraps an upgraded connection.  conn may be nil in tests;
// only the pumps touch it.
func NewClient(userID uint64, conn *websocket.Conn) *Client {
    return &Client{
        ID:     uuid.New(),
        UserID: userID,
        conn:   conn,
        send:   make(chan []byte, sendBuffer),
        rooms:  make(map[uint64]bool),
    }
}

// Enqueue places a payload on the client's outbound queue without ever
// blocking the caller.  Used by the hub for fan-out and by the chat
// transport for frames addressed to a single session (history replay,
// per-command errors).
func (c *Client) Enqueue(payload []byte) {
    select {
    case c.send <- payload:
    default:
        log.Printf("ws: client %s send buffer full, dropping frame", c.ID)
    }
}

// Send exposes the outbound queue for delivery and for tests that
// observe broadcast order without a real connection.
func (c *Client) Send() <-chan []byte { return c.send }

// ReadPump consumes inbound frames until the connection drops, handing
// each to the handler.  On exit it unregisters the client from the hub,
// which implicitly leaves every joined room.
func (c *Client) ReadPump(hub *Hub, handler FrameHandler) {
    defer func() {
        hub.Unregister(c)
        _ = c.conn.Close()
    }()
    c.conn.SetReadLimit(maxMsgSize)
    _ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
    c.conn.SetPongHandler(func(string) error {
        return c.conn.SetReadDeadline(time.Now().Add(pongWait))
    })
    for {
        var f Frame
        if err := c.conn.ReadJSON(&f); err != nil {
            if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
                log.Printf("ws: client %s read error: %v", c.ID, err)
            }
            return
        }
        handler.HandleFrame(c, f)
    }
}

// WritePump drains the outbound queue onto the connection and keeps the
// connection alive with periodic pings.
func (c *Client) WritePump() {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        _ = c.conn.Close()
    }()
    for {
        select {
        case payload, ok := <-c.send:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                _ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }
            if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
                return
            }
        case <-ticker.C:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}
