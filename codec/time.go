package codec

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrNonFiniteDuration reports a duration outside the int64 nanosecond range.
var ErrNonFiniteDuration = errors.New("codec: duration out of range")

// naiveLayouts are accepted after RFC3339 and interpreted in UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Time returns a Codec that converts between RFC3339 strings and time.Time.
// Decoding also accepts timestamps without a zone offset, which are read as UTC.
func Time() Codec[string, time.Time] { return timeCodec{} }

type timeCodec struct{}

func (timeCodec) Format() string { return "datetime" }

func (timeCodec) Decode(_ context.Context, a string) (time.Time, error) {
	s := strings.TrimSpace(a)
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t2, err2 := time.ParseInLocation(layout, s, time.UTC); err2 == nil {
			return t2, nil
		}
	}
	return time.Time{}, err
}

func (timeCodec) Encode(_ context.Context, b time.Time) (string, error) {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return b.UTC().Format(time.RFC3339Nano), nil
}

// Duration returns a Codec between Go duration strings ("1h30m") and
// time.Duration.
func Duration() Codec[string, time.Duration] { return durationCodec{} }

type durationCodec struct{}

func (durationCodec) Format() string { return "duration" }

func (durationCodec) Decode(_ context.Context, a string) (time.Duration, error) {
	return time.ParseDuration(strings.TrimSpace(a))
}

func (durationCodec) Encode(_ context.Context, b time.Duration) (string, error) {
	return b.String(), nil
}

// DurationFromNumber converts a nanosecond count carried as a float into a
// time.Duration, rejecting fractions and values outside the int64 range.
func DurationFromNumber(f float64) (time.Duration, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, ErrNonFiniteDuration
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("codec: fractional nanoseconds %v", f)
	}
	return time.Duration(int64(f)), nil
}
