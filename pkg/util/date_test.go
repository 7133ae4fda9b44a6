package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeOffsetIsUTC(t *testing.T) {
	got, ok := ParseTime("2024-10-10T12:10:10.250+02:00")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 10, 10, 10, 250_000_000, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2024-03-01")
	if !ok || !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v ok=%v", got, ok)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ref := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)

	got, ok := ParseTime(strconv.FormatInt(ref.Unix(), 10))
	if !ok || got.Unix() != ref.Unix() {
		t.Fatalf("seconds: got %v ok=%v", got, ok)
	}
	got, ok = ParseTime(strconv.FormatInt(ref.UnixMilli(), 10))
	if !ok || !got.Equal(ref) {
		t.Fatalf("millis: got %v ok=%v", got, ok)
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "yesterday", "-5", "0"} {
		if _, ok := ParseTime(s); ok {
			t.Fatalf("%q parsed", s)
		}
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestClampInt(t *testing.T) {
	cases := []struct{ v, want int }{{-1, 1}, {1, 1}, {50, 50}, {101, 100}}
	for _, tc := range cases {
		if got := ClampInt(tc.v, 1, 100); got != tc.want {
			t.Fatalf("ClampInt(%d)=%d want %d", tc.v, got, tc.want)
		}
	}
}
