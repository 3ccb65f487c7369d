// Package moment implements Tomo's wall-clock timestamp type (spec.md
// §2's "Path & Moment value types"): a POSIX-style `{seconds,
// nanoseconds}` pair with now/new/after arithmetic, timezone-aware
// field accessors, strftime/strptime-style formatting and parsing, and
// a tiered human-readable relative-time string.
//
// Grounded on original_source/src/stdlib/moments.{c,h}, the only place
// this type is actually specified: the distilled spec.md names it in
// passing but never expands its operations, so every detail here
// (field rounding, the `%Z`-in-parse-format rejection, the
// year>month>day>hour>minute>sub-second relative cascade) follows the C
// implementation directly rather than being invented.
package moment

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/tomo-lang/tomo/internal/wire"
)

// Moment is Tomo's timestamp: Unix seconds plus a nanosecond
// remainder. A Moment with Nsec < 0 is the "none" sentinel (§3.7's
// per-type spare-bit-pattern convention, mirroring the original's
// `tv_usec < 0` check in Moment$is_none) rather than a separate boxed
// discriminator.
type Moment struct {
	Sec  int64
	Nsec int64
}

// None returns the none-sentinel Moment.
func None() Moment { return Moment{Nsec: -1} }

// IsNone reports whether m is the none sentinel.
func IsNone(m Moment) bool { return m.Nsec < 0 }

// Now returns the current wall-clock time.
func Now() Moment {
	t := time.Now()
	return fromTime(t)
}

func fromTime(t time.Time) Moment {
	return Moment{Sec: t.Unix(), Nsec: int64(t.Nanosecond())}
}

// New builds a Moment from calendar fields in the given timezone
// (empty string means the process-wide local timezone set by
// SetLocalTimezone, or the system default). second may carry a
// fractional part, matching Moment$new's `double second` parameter.
func New(year, month, day, hour, minute int, second float64, timezone string) (Moment, error) {
	loc, err := resolveLocation(timezone)
	if err != nil {
		return Moment{}, err
	}
	whole := int(second)
	t := time.Date(year, time.Month(month), day, hour, minute, whole, 0, loc)
	frac := math.Mod(second, 1.0) * 1e9
	return Moment{Sec: t.Unix(), Nsec: int64(frac)}, nil
}

// After returns moment shifted by the given offsets. seconds/minutes/
// hours are applied as a flat time offset (so they may carry
// fractional parts); days/weeks/months/years are applied as calendar
// arithmetic in the given timezone, mirroring Moment$after's two-stage
// offset-then-calendar-normalize approach.
func After(m Moment, seconds, minutes, hours float64, days, weeks, months, years int, timezone string) (Moment, error) {
	loc, err := resolveLocation(timezone)
	if err != nil {
		return Moment{}, err
	}
	offset := seconds + 60*minutes + 3600*hours
	shifted := m.Sec + int64(offset)
	t := time.Unix(shifted, 0).In(loc)
	t = t.AddDate(years, months, days+7*weeks)
	fracNsec := m.Nsec + int64(math.Mod(offset, 1.0)*1e9)
	return Moment{Sec: t.Unix(), Nsec: fracNsec}, nil
}

// SecondsTill returns the number of seconds from now until then
// (negative if then precedes now).
func SecondsTill(now, then Moment) float64 {
	return float64(then.Sec-now.Sec) + 1e-9*float64(then.Nsec-now.Nsec)
}

// MinutesTill and HoursTill are SecondsTill scaled, matching the
// original's trivial wrapper functions.
func MinutesTill(now, then Moment) float64 { return SecondsTill(now, then) / 60. }
func HoursTill(now, then Moment) float64   { return SecondsTill(now, then) / 3600. }

// Year, Month, DayOfWeek, DayOfMonth, DayOfYear, Hour, Minute, Second,
// and Microsecond read the corresponding calendar field of m as
// observed in the given timezone. DayOfWeek is 1 (Sunday) through 7
// (Saturday), matching Moment$day_of_week's `tm_wday + 1`. DayOfYear is
// 0-based (January 1st is day 0), matching Moment$day_of_year, which
// — unlike every other accessor here — does not add 1 to the
// underlying `struct tm` field.

func Year(m Moment, timezone string) (int, error) {
	t, err := in(m, timezone)
	if err != nil {
		return 0, err
	}
	return t.Year(), nil
}

func Month(m Moment, timezone string) (int, error) {
	t, err := in(m, timezone)
	if err != nil {
		return 0, err
	}
	return int(t.Month()), nil
}

func DayOfWeek(m Moment, timezone string) (int, error) {
	t, err := in(m, timezone)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()) + 1, nil
}

func DayOfMonth(m Moment, timezone string) (int, error) {
	t, err := in(m, timezone)
	if err != nil {
		return 0, err
	}
	return t.Day(), nil
}

func DayOfYear(m Moment, timezone string) (int, error) {
	t, err := in(m, timezone)
	if err != nil {
		return 0, err
	}
	return t.YearDay() - 1, nil
}

func Hour(m Moment, timezone string) (int, error) {
	t, err := in(m, timezone)
	if err != nil {
		return 0, err
	}
	return t.Hour(), nil
}

func Minute(m Moment, timezone string) (int, error) {
	t, err := in(m, timezone)
	if err != nil {
		return 0, err
	}
	return t.Minute(), nil
}

func Second(m Moment, timezone string) (int, error) {
	t, err := in(m, timezone)
	if err != nil {
		return 0, err
	}
	return t.Second(), nil
}

// Microsecond reads the sub-second remainder directly off m, the way
// Moment$microsecond ignores its timezone argument entirely.
func Microsecond(m Moment) int64 { return m.Nsec / 1000 }

func in(m Moment, timezone string) (time.Time, error) {
	loc, err := resolveLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(m.Sec, m.Nsec).In(loc), nil
}

// strftimeToGo maps single-character strftime verbs to Go's
// reference-time layout fragments. Compound verbs (%F, %T, %c) are
// handled directly in translateStrftime since they don't correspond to
// a single layout token.
var strftimeToGo = map[byte]string{
	'Y': "2006", 'y': "06",
	'm': "01", 'd': "02", 'e': "_2",
	'H': "15", 'I': "03", 'l': "3",
	'M': "04", 'S': "05",
	'p': "PM", 'P': "pm",
	'A': "Monday", 'a': "Mon",
	'B': "January", 'b': "Jan",
	'Z': "MST", 'z': "-0700",
	'%': "%", 'n': "\n", 't': "\t",
}

// translateStrftime converts a strftime-style format string into a Go
// reference-time layout, since Go's time package has no strftime verb
// support of its own.
func translateStrftime(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case 'F':
			b.WriteString("2006-01-02")
		case 'T':
			b.WriteString("15:04:05")
		case 'c':
			b.WriteString("Mon Jan _2 15:04:05 2006")
		default:
			if layout, ok := strftimeToGo[format[i]]; ok {
				b.WriteString(layout)
			} else {
				b.WriteByte('%')
				b.WriteByte(format[i])
			}
		}
	}
	return b.String()
}

// Format renders m using a strftime-style format string, in the given
// timezone.
func Format(m Moment, format, timezone string) (string, error) {
	if IsNone(m) {
		return "", errors.New("moment is none")
	}
	t, err := in(m, timezone)
	if err != nil {
		return "", err
	}
	return t.Format(translateStrftime(format)), nil
}

// Date renders m as "%F" (YYYY-MM-DD), matching Moment$date.
func Date(m Moment, timezone string) (string, error) {
	return Format(m, "%F", timezone)
}

// Time renders m's time-of-day, with or without seconds and with or
// without a 12-hour am/pm clock, matching Moment$time's four format
// variants, then trims any surrounding whitespace from the result.
func Time(m Moment, seconds, amPm bool, timezone string) (string, error) {
	var format string
	switch {
	case seconds && amPm:
		format = "%l:%M:%S%P"
	case seconds:
		format = "%T"
	case amPm:
		format = "%l:%M%P"
	default:
		format = "%H:%M"
	}
	s, err := Format(m, format, timezone)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Parse reads text according to a strftime-style format, returning
// None() on any failure to parse — including the format containing
// "%Z", which Moment$parse explicitly rejects since a parsed timezone
// abbreviation can't be resolved to a fixed UTC offset reliably.
func Parse(text, format string) Moment {
	if strings.Contains(format, "%Z") {
		return None()
	}
	t, err := time.Parse(translateStrftime(format), text)
	if err != nil {
		return None()
	}
	return fromTime(t)
}

// numFormat renders a signed count of units the way Moment$relative's
// num_format helper does: "now" for zero, singular/plural units, and
// an "ago"/"later" suffix from the sign.
func numFormat(n int64, unit string) string {
	if n == 0 {
		return "now"
	}
	abs := n
	suffix := "later"
	if n < 0 {
		abs = -n
		suffix = "ago"
	}
	plural := unit
	if abs != 1 {
		plural = unit + "s"
	}
	return fmt.Sprintf("%d %s %s", abs, plural, suffix)
}

// Relative renders a human-readable description of m's distance from
// relativeTo, cascading through year, month, day, hour, minute, and
// finally sub-second units, matching Moment$relative's tiered
// comparison of struct tm fields.
func Relative(m, relativeTo Moment, timezone string) (string, error) {
	tm, err := in(m, timezone)
	if err != nil {
		return "", err
	}
	tr, err := in(relativeTo, timezone)
	if err != nil {
		return "", err
	}
	secondDiff := SecondsTill(relativeTo, m)
	abs := math.Abs(secondDiff)

	switch {
	case tm.Year() != tr.Year() && abs > 365*24*60*60:
		return numFormat(int64(tm.Year()-tr.Year()), "year"), nil
	case tm.Month() != tr.Month() && abs > 31*24*60*60:
		months := 12*(tm.Year()-tr.Year()) + int(tm.Month()) - int(tr.Month())
		return numFormat(int64(months), "month"), nil
	case tm.YearDay() != tr.YearDay() && abs > 24*60*60:
		return numFormat(int64(math.Round(secondDiff/(24*60*60))), "day"), nil
	case tm.Hour() != tr.Hour() && abs > 60*60:
		return numFormat(int64(math.Round(secondDiff/(60*60))), "hour"), nil
	case tm.Minute() != tr.Minute() && abs > 60:
		return numFormat(int64(math.Round(secondDiff/60)), "minute"), nil
	case abs < 1e-6:
		return numFormat(int64(secondDiff*1e9), "nanosecond"), nil
	case abs < 1e-3:
		return numFormat(int64(secondDiff*1e6), "microsecond"), nil
	case abs < 1.0:
		return numFormat(int64(secondDiff*1e3), "millisecond"), nil
	default:
		return numFormat(int64(secondDiff), "second"), nil
	}
}

// UnixTimestamp and FromUnixTimestamp convert to/from a bare Unix
// second count, discarding/omitting the sub-second remainder.
func UnixTimestamp(m Moment) int64             { return m.Sec }
func FromUnixTimestamp(timestamp int64) Moment { return Moment{Sec: timestamp} }

var (
	localTZMu   sync.RWMutex
	localTZName string
	localTZLoc  = time.Local
)

// SetLocalTimezone overrides the process-wide default timezone used
// whenever a timezone argument is empty; an empty name clears the
// override back to the system default, matching Moment$set_local_timezone's
// setenv/unsetenv("TZ") pair.
func SetLocalTimezone(timezone string) error {
	if timezone == "" {
		localTZMu.Lock()
		localTZName = ""
		localTZLoc = time.Local
		localTZMu.Unlock()
		return nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	localTZMu.Lock()
	localTZName = timezone
	localTZLoc = loc
	localTZMu.Unlock()
	return nil
}

// GetLocalTimezone returns the name passed to the last SetLocalTimezone
// call, or the system default's name if none was ever set.
func GetLocalTimezone() string {
	localTZMu.RLock()
	defer localTZMu.RUnlock()
	if localTZName != "" {
		return localTZName
	}
	return time.Local.String()
}

func resolveLocation(timezone string) (*time.Location, error) {
	if timezone != "" {
		return time.LoadLocation(timezone)
	}
	localTZMu.RLock()
	defer localTZMu.RUnlock()
	return localTZLoc, nil
}

// Compare orders Moments by second, then by nanosecond remainder,
// matching Moment$compare.
func Compare(a, b Moment) int {
	if a.Sec != b.Sec {
		if a.Sec > b.Sec {
			return 1
		}
		return -1
	}
	switch {
	case a.Nsec > b.Nsec:
		return 1
	case a.Nsec < b.Nsec:
		return -1
	default:
		return 0
	}
}

// AsText renders m using the "%c %Z" locale-default format, matching
// Moment$as_text, wrapping the result in a cyan ANSI escape when
// colorize is set.
func AsText(m Moment, colorize bool) string {
	if IsNone(m) {
		return "Moment"
	}
	s, err := Format(m, "%c %Z", "")
	if err != nil {
		return "Moment"
	}
	if colorize {
		return "\x1b[36m" + s + "\x1b[m"
	}
	return s
}

// Serialize/Deserialize implement §6.4's general "fixed-width fields"
// wire shape for a value with no variable-length parts: a presence
// byte (so a none-sentinel Moment round-trips without materializing an
// invalid Sec/Nsec pair) followed by two zigzag varints. The original
// C runtime never wired serialization for Moment$info, but every other
// value type in this port has a Serialize/Deserialize pair, so Moment
// gets one for consistency.
func (m Moment) Serialize(w io.Writer) error {
	return wire.WriteOptional(w, !IsNone(m), func(w io.Writer) error {
		if err := wire.WriteZigzag(w, m.Sec); err != nil {
			return err
		}
		return wire.WriteZigzag(w, m.Nsec)
	})
}

func Deserialize(r io.Reader) (Moment, error) {
	var m Moment
	present, err := wire.ReadOptional(r, func(r io.Reader) error {
		sec, err := wire.ReadZigzag(r)
		if err != nil {
			return err
		}
		nsec, err := wire.ReadZigzag(r)
		if err != nil {
			return err
		}
		m = Moment{Sec: sec, Nsec: nsec}
		return nil
	})
	if err != nil {
		return Moment{}, err
	}
	if !present {
		return None(), nil
	}
	return m, nil
}
