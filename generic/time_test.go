package generic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_AcceptedLayouts(t *testing.T) {
	want := NewTimePoint(2024, time.March, 20)

	for _, in := range []string{"2024-03-20", "2024-03-20T15:04:05Z", "2024-03-20 08:30:00", "20/03/2024", "  2024-03-20  "} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%q parsed to %s", in, got)
	}
}

func TestParseDate_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "20-03-2024", "2024/03/20", "not a date", "2024-02-30"} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrInvalidDate, in)
		assert.True(t, ParseDateOrZero(in).IsZero(), in)
	}
}

func TestTimePoint_DropsTimeOfDay(t *testing.T) {
	morning := FromTime(time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC))
	evening := FromTime(time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC))

	assert.True(t, morning.Equal(evening))
	assert.False(t, morning.Before(evening))
	assert.Equal(t, "2024-01-10", evening.String())
}

func TestDaysBetween(t *testing.T) {
	// 2024 is a leap year: Jan 10 -> Mar 1 spans 21 + 29 + 1 days
	assert.Equal(t, 51, DaysBetween(NewTimePoint(2024, 1, 10), NewTimePoint(2024, 3, 1)))
	assert.Equal(t, 0, DaysBetween(NewTimePoint(2024, 1, 10), NewTimePoint(2024, 1, 10)))
	assert.Equal(t, -1, DaysBetween(NewTimePoint(2024, 1, 10), NewTimePoint(2024, 1, 9)))
}

func TestMonthRef_NextRollsYear(t *testing.T) {
	assert.Equal(t, NewMonthRef(2025, time.January), NewMonthRef(2024, time.December).Next())
	assert.Equal(t, NewMonthRef(2024, time.May), NewMonthRef(2024, time.April).Next())
}

func TestMonthRef_OrderingUsesIndex(t *testing.T) {
	dec := NewMonthRef(2023, time.December)
	jan := NewMonthRef(2024, time.January)

	assert.True(t, dec.Before(jan))
	assert.True(t, jan.After(dec))
	assert.Equal(t, jan.Index(), dec.Index()+1)
}

func TestMonthRef_Bounds(t *testing.T) {
	feb := NewMonthRef(2024, time.February)

	assert.Equal(t, "2024-02-01", feb.Start().String())
	assert.Equal(t, "2024-02-29", feb.End().String())
	assert.Equal(t, "2024-02", feb.String())
	assert.Equal(t, "February/2024", feb.Label())
	assert.False(t, NewMonthRef(2024, 13).Valid())
	assert.False(t, NewMonthRef(2024, 0).Valid())
}

func TestParseMonthRef(t *testing.T) {
	got, err := ParseMonthRef(" 2024-04 ")
	require.NoError(t, err)
	assert.Equal(t, NewMonthRef(2024, time.April), got)
	assert.Equal(t, "2024-04", got.String())

	for _, in := range []string{"", "2024-13", "04/2024", "2024-4-1"} {
		_, err := ParseMonthRef(in)
		assert.ErrorIs(t, err, ErrInvalidDate, in)
	}
}
