package moment

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoneIsDistinctFromZeroValue(t *testing.T) {
	none := None()
	zero := Moment{}

	assert.True(t, IsNone(none))
	assert.False(t, IsNone(zero), "a zero Sec/Nsec pair (the Unix epoch) is a real moment, not none")
}

func TestNewAndAccessorsRoundTrip(t *testing.T) {
	m, err := New(2024, 3, 15, 9, 30, 45.5, "UTC")
	require.NoError(t, err)

	year, err := Year(m, "UTC")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)

	month, err := Month(m, "UTC")
	require.NoError(t, err)
	assert.Equal(t, 3, month)

	day, err := DayOfMonth(m, "UTC")
	require.NoError(t, err)
	assert.Equal(t, 15, day)

	hour, err := Hour(m, "UTC")
	require.NoError(t, err)
	assert.Equal(t, 9, hour)

	minute, err := Minute(m, "UTC")
	require.NoError(t, err)
	assert.Equal(t, 30, minute)

	second, err := Second(m, "UTC")
	require.NoError(t, err)
	assert.Equal(t, 45, second)

	assert.Equal(t, int64(500000), Microsecond(m))
}

func TestDayOfWeekIsOneBasedSundayFirst(t *testing.T) {
	// 2024-03-17 is a Sunday.
	m, err := New(2024, 3, 17, 0, 0, 0, "UTC")
	require.NoError(t, err)
	dow, err := DayOfWeek(m, "UTC")
	require.NoError(t, err)
	assert.Equal(t, 1, dow)

	// 2024-03-23 is a Saturday.
	m, err = New(2024, 3, 23, 0, 0, 0, "UTC")
	require.NoError(t, err)
	dow, err = DayOfWeek(m, "UTC")
	require.NoError(t, err)
	assert.Equal(t, 7, dow)
}

func TestDayOfYearIsZeroBased(t *testing.T) {
	m, err := New(2024, 1, 1, 0, 0, 0, "UTC")
	require.NoError(t, err)
	yday, err := DayOfYear(m, "UTC")
	require.NoError(t, err)
	assert.Equal(t, 0, yday, "January 1st is day 0, matching tm_yday's own 0-based convention")
}

func TestAfterAppliesOffsetsAndCalendarArithmetic(t *testing.T) {
	m, err := New(2024, 1, 31, 12, 0, 0, "UTC")
	require.NoError(t, err)

	later, err := After(m, 0, 0, 0, 0, 0, 1, 0, "UTC")
	require.NoError(t, err)
	month, err := Month(later, "UTC")
	require.NoError(t, err)
	assert.Equal(t, 3, month, "Jan 31 plus one month normalizes past Feb's short length, the way mktime does")

	shifted, err := After(m, 3600, 0, 0, 0, 0, 0, 0, "UTC")
	require.NoError(t, err)
	hour, err := Hour(shifted, "UTC")
	require.NoError(t, err)
	assert.Equal(t, 13, hour)
}

func TestSecondsMinutesHoursTill(t *testing.T) {
	a := Moment{Sec: 1000}
	b := Moment{Sec: 1000 + 3600}
	assert.Equal(t, 3600.0, SecondsTill(a, b))
	assert.Equal(t, 60.0, MinutesTill(a, b))
	assert.Equal(t, 1.0, HoursTill(a, b))
}

func TestFormatDateAndTime(t *testing.T) {
	m, err := New(2024, 3, 15, 9, 5, 0, "UTC")
	require.NoError(t, err)

	date, err := Date(m, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", date)

	clock, err := Time(m, false, false, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "09:05", clock)

	withSeconds, err := Time(m, true, false, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "09:05:00", withSeconds)
}

func TestParseRoundTripsFormat(t *testing.T) {
	m, err := New(2024, 3, 15, 0, 0, 0, "UTC")
	require.NoError(t, err)

	parsed := Parse("2024-03-15", "%Y-%m-%d")
	require.False(t, IsNone(parsed))
	assert.Equal(t, m.Sec, parsed.Sec)
}

func TestParseRejectsPercentZFormat(t *testing.T) {
	parsed := Parse("2024-03-15 UTC", "%Y-%m-%d %Z")
	assert.True(t, IsNone(parsed), "a %Z parse format is rejected outright, matching Moment$parse")
}

func TestParseOfInvalidInputReturnsNone(t *testing.T) {
	parsed := Parse("not a date", "%Y-%m-%d")
	assert.True(t, IsNone(parsed))
}

func TestRelativeCascadesThroughUnits(t *testing.T) {
	base, err := New(2024, 1, 1, 0, 0, 0, "UTC")
	require.NoError(t, err)

	yearLater, err := New(2026, 1, 1, 0, 0, 0, "UTC")
	require.NoError(t, err)
	rel, err := Relative(yearLater, base, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "2 years later", rel)

	minuteEarlier := Moment{Sec: base.Sec - 120}
	rel, err = Relative(minuteEarlier, base, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "2 minutes ago", rel)

	rel, err = Relative(base, base, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "now", rel)
}

func TestUnixTimestampRoundTrip(t *testing.T) {
	m := FromUnixTimestamp(1700000000)
	assert.Equal(t, int64(1700000000), UnixTimestamp(m))
}

func TestCompareOrdersBySecondThenNanosecond(t *testing.T) {
	a := Moment{Sec: 10, Nsec: 5}
	b := Moment{Sec: 10, Nsec: 6}
	c := Moment{Sec: 11, Nsec: 0}

	assert.True(t, Compare(a, b) < 0)
	assert.True(t, Compare(b, c) < 0)
	assert.Equal(t, 0, Compare(a, a))
}

func TestAsTextColorizesWithAnsiEscapes(t *testing.T) {
	m, err := New(2024, 3, 15, 9, 5, 0, "UTC")
	require.NoError(t, err)

	plain := AsText(m, false)
	assert.NotContains(t, plain, "\x1b[")

	colored := AsText(m, true)
	assert.Contains(t, colored, "\x1b[36m")
	assert.Contains(t, colored, "\x1b[m")
}

func TestAsTextOfNoneDoesNotPanic(t *testing.T) {
	assert.Equal(t, "Moment", AsText(None(), false))
}

func TestSerializeRoundTrip(t *testing.T) {
	m, err := New(2024, 3, 15, 9, 5, 30.25, "UTC")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Serialize(&buf))
	got, err := Deserialize(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestSerializeRoundTripOfNone(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, None().Serialize(&buf))
	got, err := Deserialize(&buf)
	require.NoError(t, err)
	assert.True(t, IsNone(got))
}

func TestSetAndGetLocalTimezone(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, SetLocalTimezone("")) })

	require.NoError(t, SetLocalTimezone("America/New_York"))
	assert.Equal(t, "America/New_York", GetLocalTimezone())
}
