package handler

import (
    "context"
    "encoding/json"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/gorilla/websocket"
    "github.com/labstack/echo/v4"

    "github.com/zonehub/zonehub/internal/service"
    "github.com/zonehub/zonehub/internal/utils"
    "github.com/zonehub/zonehub/internal/ws"
)

// frameTimeout bounds the database work triggered by a single inbound
// websocket frame.
const frameTimeout = 5 * time.Second

// ChatHandler is the websocket transport for match rooms.  It upgrades
// connections, translates inbound frames into relay calls and replays
// room history on every join so reconnecting clients recover the full
// conversation.  Room membership and broadcast live in the hub; message
// ordering and persistence live in the chat service.  The handler
// implements ws.FrameHandler.
type ChatHandler struct {
    Hub          *ws.Hub
    Chat         *service.ChatService
    JWTSecret    string
    HistoryLimit int

    upgrader websocket.Upgrader
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(hub *ws.Hub, chat *service.ChatService, jwtSecret string, historyLimit int) *ChatHandler {
    if hub == nil || chat == nil {
        panic("nil dependency passed to NewChatHandler")
    }
    return &ChatHandler{
        Hub:          hub,
        Chat:         chat,
        JWTSecret:    jwtSecret,
        HistoryLimit: historyLimit,
        upgrader: websocket.Upgrader{
            ReadBufferSize:  1024,
            WriteBufferSize: 1024,
            // Origin enforcement is delegated to the reverse proxy.
            CheckOrigin: func(r *http.Request) bool { return true },
        },
    }
}

// Serve handles GET /v1/ws.  The access token arrives either as a
// Bearer header or, for browser clients that cannot set headers on a
// websocket handshake, as the ?token query parameter.  After the
// upgrade the connection speaks the frame protocol: join/leave/message
// inbound; message/history/notification/error outbound.
func (h *ChatHandler) Serve(c echo.Context) error {
    raw := c.QueryParam("token")
    if raw == "" {
        if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
            raw = strings.TrimPrefix(auth, "Bearer ")
        }
    }
    userID, _, err := utils.ParseAccessToken(h.JWTSecret, raw)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
    }

    conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
    if err != nil {
        // Upgrade already wrote the failure response.
        return nil
    }

    client := ws.NewClient(userID, conn)
    h.Hub.Register(client)

    go client.WritePump()
    // ReadPump blocks for the lifetime of the connection and
    // unregisters the client on exit.
    client.ReadPump(h.Hub, h)
    return nil
}

// HandleFrame dispatches one inbound frame.  Errors never terminate the
// connection; the client receives an error frame and may correct its
// command.
func (h *ChatHandler) HandleFrame(c *ws.Client, f ws.Frame) {
    ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
    defer cancel()

    switch f.Type {
    case "join":
        h.handleJoin(ctx, c, f)
    case "leave":
        if f.RoomID == 0 {
            h.sendError(c, f.RoomID, "room_id is required")
            return
        }
        h.Hub.Leave(f.RoomID, c)
    case "message":
        h.handleMessage(ctx, c, f)
    default:
        h.sendError(c, f.RoomID, "unknown frame type")
    }
}

// handleJoin subscribes the client to a room.  The token is
// re-validated so a subscription can never outlive the session it was
// issued for, then room authorization runs against current team
// membership.  Membership is established before the history read: a
// message relayed in that window reaches the client live and may also
// appear in the replay, and clients dedupe by message id.  A failed
// history read rolls the join back.
func (h *ChatHandler) handleJoin(ctx context.Context, c *ws.Client, f ws.Frame) {
    if f.RoomID == 0 {
        h.sendError(c, f.RoomID, "room_id is required")
        return
    }
    if !h.validToken(c, f.Token) {
        h.sendError(c, f.RoomID, "invalid token")
        return
    }
    if err := h.Chat.Authorize(ctx, f.RoomID, c.UserID); err != nil {
        h.sendError(c, f.RoomID, "cannot join room")
        return
    }
    h.Hub.Join(f.RoomID, c)
    history, err := h.Chat.History(ctx, f.RoomID, c.UserID, h.HistoryLimit)
    if err != nil {
        h.Hub.Leave(f.RoomID, c)
        h.sendError(c, f.RoomID, "cannot join room")
        return
    }
    h.send(c, ws.Frame{Type: "history", RoomID: f.RoomID, Payload: history})
}

// handleMessage relays a chat message.  The token is re-validated on
// every send, like on join, so a worker holding the socket open cannot
// keep posting after its session expires.  Persistence and broadcast
// ordering are the chat service's job; the transport only reports
// failures back to the sender.
func (h *ChatHandler) handleMessage(ctx context.Context, c *ws.Client, f ws.Frame) {
    if f.RoomID == 0 {
        h.sendError(c, f.RoomID, "room_id is required")
        return
    }
    if !h.validToken(c, f.Token) {
        h.sendError(c, f.RoomID, "invalid token")
        return
    }
    if _, err := h.Chat.Post(ctx, f.RoomID, c.UserID, f.Body); err != nil {
        h.sendError(c, f.RoomID, "message rejected")
    }
}

// validToken reports whether the frame's token verifies and belongs to
// the user the connection was upgraded for.
func (h *ChatHandler) validToken(c *ws.Client, raw string) bool {
    userID, _, err := utils.ParseAccessToken(h.JWTSecret, raw)
    return err == nil && userID == c.UserID
}

func (h *ChatHandler) send(c *ws.Client, f ws.Frame) {
    payload, err := json.Marshal(f)
    if err != nil {
        log.Printf("chat: marshal outbound frame failed: %v", err)
        return
    }
    c.Enqueue(payload)
}

func (h *ChatHandler) sendError(c *ws.Client, roomID uint64, msg string) {
    h.send(c, ws.Frame{Type: "error", RoomID: roomID, Body: msg})
}

// GetRoomHistory handles GET /v1/rooms/:id/messages, the HTTP fallback
// for fetching a room's recent messages without a live connection.
func (h *ChatHandler) GetRoomHistory(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    roomID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    history, err := h.Chat.History(c.Request().Context(), roomID, userID, h.HistoryLimit)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, history)
}
