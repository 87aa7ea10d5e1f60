package subtitle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Time is an event timestamp. ASS stores centiseconds, so values written
// through AsAss lose anything below 10ms.
type Time time.Duration

func FromMillis(ms int64) Time {
	if ms < 0 {
		ms = 0
	}
	return Time(time.Duration(ms) * time.Millisecond)
}

func FromSeconds(s float64) Time {
	return FromMillis(int64(s * 1000))
}

func FromDuration(d time.Duration) Time {
	if d < 0 {
		return 0
	}
	return Time(d)
}

func (t Time) Duration() time.Duration {
	return time.Duration(t)
}

func (t Time) Millis() int64 {
	return time.Duration(t).Milliseconds()
}

func (t Time) Seconds() float64 {
	return time.Duration(t).Seconds()
}

// Add returns t+d clamped at zero.
func (t Time) Add(d time.Duration) Time {
	return FromDuration(time.Duration(t) + d)
}

// Sub returns t-o, clamped at zero like the editor's time arithmetic.
func (t Time) Sub(o Time) Time {
	return FromDuration(time.Duration(t) - time.Duration(o))
}

// formats as H:MM:SS.CC
func (t Time) AsAss() string {
	d := time.Duration(t)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	centis := (int(d.Milliseconds()) % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

func (t Time) String() string {
	return t.AsAss()
}

// ParseTime parses an ASS timestamp (H:MM:SS.CC).
func ParseTime(ts string) (Time, error) {
	ts = strings.TrimSpace(ts)
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: invalid timecode %q", ErrMalformed, ts)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid hours in %q", ErrMalformed, ts)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid minutes in %q", ErrMalformed, ts)
	}

	// split seconds and centiseconds
	secParts := strings.Split(parts[2], ".")
	if len(secParts) != 2 {
		return 0, fmt.Errorf("%w: invalid seconds in %q", ErrMalformed, ts)
	}

	seconds, err := strconv.Atoi(secParts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid seconds in %q", ErrMalformed, ts)
	}

	centis, err := strconv.Atoi(secParts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid centiseconds in %q", ErrMalformed, ts)
	}

	if hours < 0 || minutes < 0 || seconds < 0 || centis < 0 {
		return 0, fmt.Errorf("%w: negative component in %q", ErrMalformed, ts)
	}

	return Time(time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(centis)*10*time.Millisecond), nil
}
