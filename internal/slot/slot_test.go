package slot

import (
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "github.com/zonehub/zonehub/internal/model"
)

var day = time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time { return day.Add(time.Duration(hour) * time.Hour) }

func TestGenerate_FullDayWindow(t *testing.T) {
    req := require.New(t)

    slots := Generate(6, 22, day, time.Hour)

    req.Len(slots, 16)
    req.Equal(at(6), slots[0].Start)
    req.Equal(at(7), slots[0].End)
    req.Equal(at(21), slots[15].Start)
    req.Equal(at(22), slots[15].End)
    for i := 1; i < len(slots); i++ {
        req.Equal(slots[i-1].End, slots[i].Start, "slots must be contiguous and ordered")
    }
    for _, s := range slots {
        req.True(s.Available)
    }
}

func TestGenerate_DegenerateInputs(t *testing.T) {
    req := require.New(t)

    req.Empty(Generate(22, 6, day, time.Hour))
    req.Empty(Generate(8, 8, day, time.Hour))
    req.Empty(Generate(6, 22, day, 0))
}

func TestGenerate_SubHourGranularity(t *testing.T) {
    req := require.New(t)

    slots := Generate(9, 11, day, 30*time.Minute)

    req.Len(slots, 4)
    req.Equal(at(9), slots[0].Start)
    req.Equal(day.Add(9*time.Hour+30*time.Minute), slots[0].End)
}

func TestAnnotate_MarksOverlappingSlots(t *testing.T) {
    req := require.New(t)

    slots := Generate(6, 22, day, time.Hour)
    slots = Annotate(slots, []model.Reservation{
        {FieldID: 1, StartTime: at(9), EndTime: at(11), Status: model.StatusConfirmed},
    })

    for _, s := range slots {
        switch s.Start.Hour() {
        case 9, 10:
            req.False(s.Available, "slot at %d must be blocked", s.Start.Hour())
        default:
            req.True(s.Available, "slot at %d must stay free", s.Start.Hour())
        }
    }
}

func TestAnnotate_IgnoresCancelled(t *testing.T) {
    req := require.New(t)

    slots := Generate(6, 22, day, time.Hour)
    slots = Annotate(slots, []model.Reservation{
        {StartTime: at(9), EndTime: at(11), Status: model.StatusCancelled},
        {StartTime: at(12), EndTime: at(13), Status: model.StatusPending},
    })

    for _, s := range slots {
        if s.Start.Hour() == 12 {
            req.False(s.Available)
        } else {
            req.True(s.Available)
        }
    }
}

func TestAligned(t *testing.T) {
    req := require.New(t)

    req.True(Aligned(at(9), at(10), time.Hour))
    req.True(Aligned(at(9), at(12), time.Hour))
    req.False(Aligned(at(10), at(9), time.Hour), "reversed interval")
    req.False(Aligned(day.Add(9*time.Hour+15*time.Minute), at(10), time.Hour), "off-grid start")
    req.False(Aligned(at(9), day.Add(10*time.Hour+30*time.Minute), time.Hour), "off-grid length")
}
