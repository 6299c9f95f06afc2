package ws

import (
    "fmt"
    "testing"

    "github.com/stretchr/testify/require"
)

func drain(c *Client) []string {
    out := []string{}
    for {
        select {
        case b := <-c.Send():
            out = append(out, string(b))
        default:
            return out
        }
    }
}

func TestHub_JoinIsIdempotent(t *testing.T) {
    req := require.New(t)
    hub := NewHub()
    c := NewClient(7, nil)
    hub.Register(c)

    hub.Join(42, c)
    hub.Join(42, c)

    req.Equal([]uint64{7}, hub.MembersOf(42), "double join must not change membership")
}

func TestHub_MembersCollapseConnections(t *testing.T) {
    req := require.New(t)
    hub := NewHub()
    tabA := NewClient(7, nil)
    tabB := NewClient(7, nil)
    other := NewClient(9, nil)
    for _, c := range []*Client{tabA, tabB, other} {
        hub.Register(c)
        hub.Join(42, c)
    }

    req.Equal([]uint64{7, 9}, hub.MembersOf(42))

    // Losing one tab keeps the user in the room; losing both removes them.
    hub.Unregister(tabA)
    req.Equal([]uint64{7, 9}, hub.MembersOf(42))
    hub.Unregister(tabB)
    req.Equal([]uint64{9}, hub.MembersOf(42))
}

func TestHub_UnregisterLeavesAllRooms(t *testing.T) {
    req := require.New(t)
    hub := NewHub()
    c := NewClient(7, nil)
    hub.Register(c)
    hub.Join(1, c)
    hub.Join(2, c)

    hub.Unregister(c)

    req.Empty(hub.MembersOf(1))
    req.Empty(hub.MembersOf(2))
}

func TestHub_SendToRoomPreservesOrder(t *testing.T) {
    req := require.New(t)
    hub := NewHub()
    a := NewClient(1, nil)
    b := NewClient(2, nil)
    hub.Register(a)
    hub.Register(b)
    hub.Join(5, a)
    hub.Join(5, b)

    for i := 0; i < 10; i++ {
        hub.SendToRoom(5, []byte(fmt.Sprintf("m%d", i)))
    }

    want := make([]string, 0, 10)
    for i := 0; i < 10; i++ {
        want = append(want, fmt.Sprintf("m%d", i))
    }
    req.Equal(want, drain(a), "member a must observe persist order")
    req.Equal(want, drain(b), "member b must observe persist order")
}

func TestHub_SendToRoomSkipsNonMembers(t *testing.T) {
    req := require.New(t)
    hub := NewHub()
    in := NewClient(1, nil)
    out := NewClient(2, nil)
    hub.Register(in)
    hub.Register(out)
    hub.Join(5, in)

    hub.SendToRoom(5, []byte("hello"))

    req.Equal([]string{"hello"}, drain(in))
    req.Empty(drain(out))
}

func TestHub_SendToUserReachesEverySession(t *testing.T) {
    req := require.New(t)
    hub := NewHub()
    tabA := NewClient(7, nil)
    tabB := NewClient(7, nil)
    hub.Register(tabA)
    hub.Register(tabB)

    hub.SendToUser(7, []byte("signal"))

    req.Equal([]string{"signal"}, drain(tabA))
    req.Equal([]string{"signal"}, drain(tabB))
}

func TestHub_LeaveOnlyAffectsOneRoom(t *testing.T) {
    req := require.New(t)
    hub := NewHub()
    c := NewClient(7, nil)
    hub.Register(c)
    hub.Join(1, c)
    hub.Join(2, c)

    hub.Leave(1, c)

    req.Empty(hub.MembersOf(1))
    req.Equal([]uint64{7}, hub.MembersOf(2))
}
