package model

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnixTime is a timestamp encoded as unix seconds on the wire.
//
// The execution service emits fractional seconds with nanosecond digits
// ("1601289474.000000000"); the repository service emits integers. Both
// decode exactly. JSON null decodes to the zero value, which marshals back
// to null.
type UnixTime struct {
	time.Time
}

// Unix returns a UnixTime for the given seconds.
func Unix(sec int64) UnixTime { return UnixTime{time.Unix(sec, 0).UTC()} }

// NewUnixTime wraps t.
func NewUnixTime(t time.Time) UnixTime { return UnixTime{t.UTC()} }

// Ptr returns a pointer to t, for optional fields.
func (t UnixTime) Ptr() *UnixTime { return &t }

// MarshalJSON implements json.Marshaler.
func (t UnixTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if ns := t.Nanosecond(); ns != 0 {
		sec := t.Unix()
		if sec < 0 {
			return []byte(fmt.Sprintf("-%d.%09d", -(sec + 1), 1_000_000_000-ns)), nil
		}
		return []byte(fmt.Sprintf("%d.%09d", sec, ns)), nil
	}
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *UnixTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = UnixTime{}
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*t = UnixTime{}
		return nil
	}

	secPart, fracPart, _ := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid unix timestamp %q: %w", s, err)
	}
	var nsec int64
	if fracPart != "" {
		if len(fracPart) > 9 {
			fracPart = fracPart[:9]
		}
		fracPart += strings.Repeat("0", 9-len(fracPart))
		frac, err := strconv.ParseUint(fracPart, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid unix timestamp %q: %w", s, err)
		}
		nsec = int64(frac)
		// The fraction has the sign of the whole value, including "-0.5".
		if strings.HasPrefix(secPart, "-") {
			nsec = -nsec
		}
	}
	t.Time = time.Unix(sec, nsec).UTC()
	return nil
}
