package codec

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestTime_Codec_Basic(t *testing.T) {
	c := Time()
	ctx := context.Background()

	in := "2025-01-01T00:00:00Z"
	got, err := c.Decode(ctx, in)
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %v", got)
	}

	out, err := c.Encode(ctx, got)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if out != in {
		t.Fatalf("roundtrip mismatch: %s != %s", out, in)
	}
}

func TestTime_Codec_NaiveIsUTC(t *testing.T) {
	ctx := context.Background()
	cases := map[string]time.Time{
		"2019-01-02T00:00:00":       time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC),
		"2019-01-02T03:04:05.250":   time.Date(2019, 1, 2, 3, 4, 5, 250000000, time.UTC),
		"2019-01-02 03:04:05":       time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC),
		"2019-01-02":                time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC),
		"2019-01-02T09:00:00+09:00": time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := Time().Decode(ctx, in)
		if err != nil {
			t.Fatalf("%s: decode err: %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: got %v want %v", in, got, want)
		}
	}
}

func TestTime_Codec_EncodeNormalizesToUTC(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	s, err := Time().Encode(context.Background(), time.Date(2025, 1, 1, 9, 0, 0, 0, jst))
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if s != "2025-01-01T00:00:00Z" {
		t.Fatalf("unexpected encoding: %s", s)
	}
}

func TestTime_Codec_Invalid(t *testing.T) {
	if _, err := Time().Decode(context.Background(), "yesterday"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDuration_Codec(t *testing.T) {
	ctx := context.Background()
	d, err := Duration().Decode(ctx, "1h30m")
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if d != 90*time.Minute {
		t.Fatalf("unexpected duration: %v", d)
	}
	s, _ := Duration().Encode(ctx, d)
	if s != "1h30m0s" {
		t.Fatalf("unexpected encoding: %s", s)
	}
	if _, err := Duration().Decode(ctx, "soon"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDurationFromNumber(t *testing.T) {
	if d, err := DurationFromNumber(1500); err != nil || d != 1500 {
		t.Fatalf("got %v, %v", d, err)
	}
	if _, err := DurationFromNumber(1.5); err == nil {
		t.Fatalf("expected fractional error")
	}
	if _, err := DurationFromNumber(math.Inf(1)); err == nil {
		t.Fatalf("expected range error")
	}
}
