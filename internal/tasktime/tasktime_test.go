package tasktime

import (
	"errors"
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input      string
		wantHour   int
		wantMinute int
		wantOK     bool
	}{
		{"11:30 PM", 23, 30, true},
		{"12:15 AM", 0, 15, true},
		{"12:00 PM", 12, 0, true},
		{"9:05 AM", 9, 5, true},
		{"1:00 pm", 13, 0, true},
		{"13:00 PM", 0, 0, false},
		{"0:30 AM", 0, 0, false},
		{"9:60 AM", 0, 0, false},
		{"9:30", 0, 0, false},
		{"9:30 XM", 0, 0, false},
		{"nine:30 AM", 0, 0, false},
		{"9:3a AM", 0, 0, false},
		{"+9:30 AM", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			hour, minute, ok := Clock(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Clock(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && (hour != tt.wantHour || minute != tt.wantMinute) {
				t.Errorf("Clock(%q) = %d:%02d, want %d:%02d", tt.input, hour, minute, tt.wantHour, tt.wantMinute)
			}
		})
	}
}

func TestNextOccurrence(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	now := time.Date(2024, 3, 15, 14, 0, 0, 0, loc)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"later today", "11:30 PM", time.Date(2024, 3, 15, 23, 30, 0, 0, loc)},
		{"already passed rolls to tomorrow", "12:15 AM", time.Date(2024, 3, 16, 0, 15, 0, 0, loc)},
		{"exactly now rolls to tomorrow", "2:00 PM", time.Date(2024, 3, 16, 14, 0, 0, 0, loc)},
		{"noon rolls to tomorrow", "12:00 PM", time.Date(2024, 3, 16, 12, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := NextOccurrence(tt.input, now)
			if !ok {
				t.Fatalf("NextOccurrence(%q) rejected valid input", tt.input)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !got.After(now) {
				t.Errorf("NextOccurrence(%q) = %v is not after now", tt.input, got)
			}
		})
	}
}

func TestNextOccurrence_NeverInThePast(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 18, 45, 30, 0, time.UTC)
	for hour := 0; hour < 24; hour++ {
		for _, minute := range []int{0, 15, 45, 59} {
			s := Format(hour, minute)
			at, ok := NextOccurrence(s, now)
			if !ok {
				t.Fatalf("NextOccurrence(%q) rejected formatted input", s)
			}
			if !at.After(now) {
				t.Errorf("NextOccurrence(%q) = %v is not after %v", s, at, now)
			}
			if at.Sub(now) > 24*time.Hour {
				t.Errorf("NextOccurrence(%q) = %v is more than a day away", s, at)
			}
		}
	}
}

func TestNextOccurrence_RejectsMalformed(t *testing.T) {
	t.Parallel()

	if _, ok := NextOccurrence("25:00", time.Now()); ok {
		t.Error("Expected 24-hour input to be rejected by NextOccurrence")
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hour, minute int
		want         string
	}{
		{0, 15, "12:15 AM"},
		{9, 0, "9:00 AM"},
		{12, 0, "12:00 PM"},
		{23, 30, "11:30 PM"},
	}
	for _, tt := range tests {
		if got := Format(tt.hour, tt.minute); got != tt.want {
			t.Errorf("Format(%d, %d) = %q, want %q", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"9:00 AM", "9:00 AM", false},
		{"09:05 pm", "9:05 PM", false},
		{"14:30", "2:30 PM", false},
		{"00:00", "12:00 AM", false},
		{"12:00", "12:00 PM", false},
		{"24:00", "", true},
		{"14:3", "", true},
		{"tomorrow", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTime) {
					t.Fatalf("Normalize(%q) error = %v, want ErrInvalidTime", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
