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
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDay(t *testing.T) {
	got, ok := ParseTime("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	if DayKey(got) != "2024-10-10" {
		t.Fatalf("unexpected day %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	in := time.Date(2024, 3, 2, 5, 30, 0, 0, loc) // 2024-03-01 20:30 UTC
	got := StartOfDay(in)
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestUntilNextDay(t *testing.T) {
	in := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	if d := UntilNextDay(in); d != time.Hour {
		t.Fatalf("expected 1h, got %v", d)
	}
}

func TestParseUintAndSplitCSV(t *testing.T) {
	if v, ok := ParseUint("42"); !ok || v != 42 {
		t.Fatalf("unexpected %d %v", v, ok)
	}
	if _, ok := ParseUint("-1"); ok {
		t.Fatalf("negative must fail")
	}
	got := SplitCSV(" 1D, ,1W,")
	if len(got) != 2 || got[0] != "1D" || got[1] != "1W" {
		t.Fatalf("unexpected %v", got)
	}
	if SplitCSV("  ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}
