package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTimeLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9:00 AM", "9:00 AM", true},
		{"9:00 am", "9:00 AM", true},
		{"9:00AM", "9:00 AM", true},
		{" 12:30 pm ", "12:30 PM", true},
		{"1:00 PM", "1:00 PM", true},
		{"13:00", "", false},
		{"13:00 PM", "", false},
		{"9:60 AM", "", false},
		{"0:30 AM", "", false},
		{"900 AM", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := NormalizeTimeLabel(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestSlotTimeIndex(t *testing.T) {
	assert.Equal(t, 0, SlotTimeIndex("9:00 AM"))
	assert.Equal(t, 3, SlotTimeIndex("12:00 PM"))
	assert.Equal(t, 4, SlotTimeIndex("1:00 PM"))
	assert.Equal(t, 8, SlotTimeIndex("5:00 PM"))
	assert.Equal(t, -1, SlotTimeIndex("6:00 PM"))
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2026, 9, 14, 3, 45, 12, 0, loc)

	got := NormalizeDate(in)

	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 0, got.Hour())
	// 03:45 at UTC+5 is the previous day in UTC.
	assert.Equal(t, 13, got.Day())
}

func TestSlotBookable(t *testing.T) {
	assert.True(t, (&Slot{Status: SlotAvailable, Active: true}).Bookable())
	assert.False(t, (&Slot{Status: SlotBooked, Active: true}).Bookable())
	assert.False(t, (&Slot{Status: SlotBlocked, Active: true}).Bookable())
	assert.False(t, (&Slot{Status: SlotAvailable, Active: false}).Bookable())
}

func TestAppointmentStatusTerminal(t *testing.T) {
	assert.False(t, AppointmentPending.Terminal())
	assert.False(t, AppointmentConfirmed.Terminal())
	assert.True(t, AppointmentRejected.Terminal())
	assert.True(t, AppointmentCancelled.Terminal())
	assert.True(t, AppointmentCompleted.Terminal())
}
