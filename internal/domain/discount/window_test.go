package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 15, hour, minute, 0, 0, time.UTC)
}

func TestInWindow_TimeSlots(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		slot *TimeSlot
		want bool
	}{
		{
			name: "no slot always matches",
			at:   at(12, 0),
			slot: nil,
			want: true,
		},
		{
			name: "same-day window inside",
			at:   at(18, 30),
			slot: &TimeSlot{Start: "18:00", End: "20:00"},
			want: true,
		},
		{
			name: "same-day window start is inclusive",
			at:   at(18, 0),
			slot: &TimeSlot{Start: "18:00", End: "20:00"},
			want: true,
		},
		{
			name: "same-day window end is exclusive",
			at:   at(20, 0),
			slot: &TimeSlot{Start: "18:00", End: "20:00"},
			want: false,
		},
		{
			name: "same-day window outside",
			at:   at(21, 0),
			slot: &TimeSlot{Start: "18:00", End: "20:00"},
			want: false,
		},
		{
			name: "overnight window before midnight",
			at:   at(23, 30),
			slot: &TimeSlot{Start: "22:00", End: "02:00"},
			want: true,
		},
		{
			name: "overnight window after midnight",
			at:   at(1, 0),
			slot: &TimeSlot{Start: "22:00", End: "02:00"},
			want: true,
		},
		{
			name: "overnight window midday miss",
			at:   at(12, 0),
			slot: &TimeSlot{Start: "22:00", End: "02:00"},
			want: false,
		},
		{
			name: "overnight window end is exclusive",
			at:   at(2, 0),
			slot: &TimeSlot{Start: "22:00", End: "02:00"},
			want: false,
		},
		{
			name: "equal start and end matches all day",
			at:   at(9, 45),
			slot: &TimeSlot{Start: "10:00", End: "10:00"},
			want: true,
		},
		{
			name: "unparsable slot matches",
			at:   at(9, 45),
			slot: &TimeSlot{Start: "oops", End: "10:00"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InWindow(tt.at, nil, nil, tt.slot))
		})
	}
}

func TestInWindow_DateBounds(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name        string
		at          time.Time
		from, until *time.Time
		want        bool
	}{
		{name: "open range", at: at(12, 0), want: true},
		{name: "inside range", at: at(12, 0), from: &from, until: &until, want: true},
		{name: "before from", at: time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC), from: &from, want: false},
		{name: "after until", at: time.Date(2025, 7, 2, 12, 0, 0, 0, time.UTC), until: &until, want: false},
		{name: "exactly at from", at: from, from: &from, want: true},
		{name: "exactly at until", at: until, until: &until, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InWindow(tt.at, tt.from, tt.until, nil))
		})
	}
}

func TestInWindow_DateAndSlotMustBothPass(t *testing.T) {
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	slot := &TimeSlot{Start: "11:00", End: "14:00"}

	// Slot matches but the date range does not.
	assert.False(t, InWindow(at(12, 0), &from, nil, slot))
}
