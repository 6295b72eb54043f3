package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - Calendar day (billing never looks below day granularity)
// =============================================================================

type TimePoint struct {
	Time time.Time
}

// DateLayout is the canonical wire/storage format for dates.
const DateLayout = "2006-01-02"

// accepted layouts for ParseDate, tried in order
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return FromTime(time.Now())
}

// ParseDate accepts ISO dates, RFC3339 timestamps and dd/mm/yyyy.
// Empty or whitespace-only input is an error like any other unparseable value.
func ParseDate(s string) (TimePoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimePoint{}, fmt.Errorf("%w: empty date", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return TimePoint{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseDateOrZero returns the zero TimePoint when s cannot be parsed.
// Callers treat IsZero() as "no usable date".
func ParseDateOrZero(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		return TimePoint{}
	}
	return tp
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, n, 0)} }

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }
func (tp TimePoint) MonthRef() MonthRef {
	return MonthRef{Year: tp.Year(), Month: tp.Month()}
}

func (tp TimePoint) String() string {
	if tp.IsZero() {
		return ""
	}
	return tp.Time.Format(DateLayout)
}

// =============================================================================
// MONTH REF - A (month, year) billing reference
// =============================================================================

// MonthRef identifies a calendar month. Ordering uses Index() (year*12+month).
type MonthRef struct {
	Year  int
	Month time.Month
}

func NewMonthRef(year int, month time.Month) MonthRef {
	return MonthRef{Year: year, Month: month}
}

// MonthLayout is the wire format of a MonthRef.
const MonthLayout = "2006-01"

// ParseMonthRef parses "2024-04".
func ParseMonthRef(s string) (MonthRef, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return MonthRef{}, fmt.Errorf("%w: month %q", ErrInvalidDate, s)
	}
	return NewMonthRef(t.Year(), t.Month()), nil
}

func (m MonthRef) Index() int                 { return m.Year*12 + int(m.Month) }
func (m MonthRef) Before(other MonthRef) bool { return m.Index() < other.Index() }
func (m MonthRef) After(other MonthRef) bool  { return m.Index() > other.Index() }
func (m MonthRef) Valid() bool                { return m.Month >= time.January && m.Month <= time.December }

// Next returns the following calendar month, rolling December into January.
func (m MonthRef) Next() MonthRef {
	if m.Month == time.December {
		return MonthRef{Year: m.Year + 1, Month: time.January}
	}
	return MonthRef{Year: m.Year, Month: m.Month + 1}
}

// Day returns the given day of this month. The day is not clamped; callers
// keep it within 1-28 so every month has it.
func (m MonthRef) Day(day int) TimePoint { return NewTimePoint(m.Year, m.Month, day) }

func (m MonthRef) Start() TimePoint { return StartOfMonth(m.Year, m.Month) }
func (m MonthRef) End() TimePoint   { return EndOfMonth(m.Year, m.Month) }

// String renders "2024-04".
func (m MonthRef) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

// Label renders "April/2024".
func (m MonthRef) Label() string { return fmt.Sprintf("%s/%d", m.Month, m.Year) }

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween counts whole calendar days from 'from' to 'to' (negative if to < from).
func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return TimePoint{Time: t}
}
