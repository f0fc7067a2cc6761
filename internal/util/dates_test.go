package util

import (
	"errors"
	"testing"
	"time"
)

func sptr(s string) *string { return &s }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDateRange(t *testing.T) {
	at := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		start, end *string
		wantStart  time.Time
		wantEnd    time.Time
		hasStart   bool
		hasEnd     bool
	}{
		{name: "no bounds"},
		{name: "blank bounds", start: sptr("   "), end: sptr("")},
		{
			name: "timestamp start, whole end day", start: sptr("2026-02-03T10:00:00Z"), end: sptr("2026-02-05"),
			wantStart: at, wantEnd: day("2026-02-06"), hasStart: true, hasEnd: true,
		},
		{
			name: "reversed dates are swapped", start: sptr("2026-02-05"), end: sptr("2026-02-03"),
			wantStart: day("2026-02-03"), wantEnd: day("2026-02-06"), hasStart: true, hasEnd: true,
		},
		{
			name: "timestamp end is exclusive", start: sptr("2026-02-01"), end: sptr("2026-02-03T10:00:00Z"),
			wantStart: day("2026-02-01"), wantEnd: at, hasStart: true, hasEnd: true,
		},
		{
			name: "end only", end: sptr("2026-02-05"),
			wantEnd: day("2026-02-06"), hasEnd: true,
		},
		{
			name: "surrounding spaces", start: sptr(" 2026-02-03 "),
			wantStart: day("2026-02-03"), hasStart: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, hasStart, end, hasEnd, err := ParseDateRange(tc.start, tc.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hasStart != tc.hasStart || hasEnd != tc.hasEnd {
				t.Fatalf("hasStart=%v hasEnd=%v want %v %v", hasStart, hasEnd, tc.hasStart, tc.hasEnd)
			}
			if !start.Equal(tc.wantStart) || !end.Equal(tc.wantEnd) {
				t.Fatalf("range = [%v, %v) want [%v, %v)", start, end, tc.wantStart, tc.wantEnd)
			}
		})
	}
}

func TestParseDateRange_InvalidFormat(t *testing.T) {
	if _, _, _, _, err := ParseDateRange(sptr("03/02/2026"), nil); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("start: want ErrInvalidDate, got %v", err)
	}
	if _, _, _, _, err := ParseDateRange(nil, sptr("yesterday")); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("end: want ErrInvalidDate, got %v", err)
	}
}
