// Package ws owns the live-connection state of the service: which
// websocket clients exist, which user each belongs to, and which match
// rooms they currently occupy.  The hub replaces the ambient global
// socket table of earlier designs with an explicit registry the
// transport and service layers call into, so membership is testable in
// isolation.  Nothing in this package is persisted; membership lives
// exactly as long as the process and the connections do.
package ws

import (
    "sort"
    "sync"

    "github.com/google/uuid"
)

// Hub is the in-process room registry.  One user may hold several
// concurrent connections (e.g. two browser tabs); each connection is a
// distinct Client keyed by a random uuid, and room membership is
// tracked per connection.  MembersOf collapses connections back to the
// set of user identities.
type Hub struct {
    mu sync.RWMutex

    clients     map[uuid.UUID]*Client            // every live connection
    userClients map[uint64]map[uuid.UUID]*Client // connections grouped by user
    rooms       map[uint64]map[uuid.UUID]*Client // connections grouped by room
}

// NewHub returns an empty registry.
func NewHub() *Hub {
    return &Hub{
        clients:     make(map[uuid.UUID]*Client),
        userClients: make(map[uint64]map[uuid.UUID]*Client),
        rooms:       make(map[uint64]map[uuid.UUID]*Client),
    }
}

// Register adds a freshly upgraded connection to the registry.
func (h *Hub) Register(c *Client) {
    h.mu.Lock()
    defer h.mu.Unlock()
    h.clients[c.ID] = c
    if _, ok := h.userClients[c.UserID]; !ok {
        h.userClients[c.UserID] = make(map[uuid.UUID]*Client)
    }
    h.userClients[c.UserID][c.ID] = c
}

// Unregister removes a connection entirely: it leaves every room the
// connection joined and closes its send channel.  The transport layer
// calls this when the connection drops, which is what guarantees the
// registry never leaks stale members.
func (h *Hub) Unregister(c *Client) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if _, ok := h.clients[c.ID]; !ok {
        return
    }
    for roomID := range c.rooms {
        h.removeFromRoom(c, roomID)
    }
    if conns, ok := h.userClients[c.UserID]; ok {
        delete(conns, c.ID)
        if len(conns) == 0 {
            delete(h.userClients, c.UserID)
        }
    }
    delete(h.clients, c.ID)
    close(c.send)
}

// Join adds the connection to a room.  Joining a room the connection is
// already in is a no-op, so a double join never changes the membership
// a user contributes.  Authorization is the caller's job; the hub only
// records admitted members.
func (h *Hub) Join(roomID uint64, c *Client) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if _, ok := h.clients[c.ID]; !ok {
        return // connection already gone
    }
    if _, ok := h.rooms[roomID]; !ok {
        h.rooms[roomID] = make(map[uuid.UUID]*Client)
    }
    h.rooms[roomID][c.ID] = c
    c.rooms[roomID] = true
}

// Leave removes the connection from a room.  Leaving a room the
// connection is not in is a no-op.
func (h *Hub) Leave(roomID uint64, c *Client) {
    h.mu.Lock()
    defer h.mu.Unlock()
    h.removeFromRoom(c, roomID)
}

// removeFromRoom must be called with h.mu held.
func (h *Hub) removeFromRoom(c *Client, roomID uint64) {
    if room, ok := h.rooms[roomID]; ok {
        delete(room, c.ID)
        if len(room) == 0 {
            delete(h.rooms, roomID)
        }
    }
    delete(c.rooms, roomID)
}

// MembersOf returns the sorted set of user ids with at least one live
// connection in the room.
func (h *Hub) MembersOf(roomID uint64) []uint64 {
    h.mu.RLock()
    defer h.mu.RUnlock()
    seen := make(map[uint64]struct{})
    for _, c := range h.rooms[roomID] {
        seen[c.UserID] = struct{}{}
    }
    out := make([]uint64, 0, len(seen))
    for id := range seen {
        out = append(out, id)
    }
    sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
    return out
}

// SendToRoom delivers a payload to every connection currently in the
// room.  Delivery is at-most-once per connection: a client whose send
// buffer is full is skipped rather than allowed to stall the room.
func (h *Hub) SendToRoom(roomID uint64, payload []byte) {
    h.mu.RLock()
    defer h.mu.RUnlock()
    for _, c := range h.rooms[roomID] {
        c.Enqueue(payload)
    }
}

// SendToUser delivers a payload to every live connection of one user,
// regardless of room membership.  This is the low-latency delivery
// signal of the notification fan-out.
func (h *Hub) SendToUser(userID uint64, payload []byte) {
    h.mu.RLock()
    defer h.mu.RUnlock()
    for _, c := range h.userClients[userID] {
        c.Enqueue(payload)
    }
}
