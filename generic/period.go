package generic

import "iter"

// =============================================================================
// PERIOD - Inclusive date window used by reports
// =============================================================================

// Period is an inclusive [Start, End] date window.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Valid reports whether Start <= End.
func (p Period) Valid() bool { return p.Start.BeforeOrEqual(p.End) }

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// MONTH SEQUENCE - (month, year) pairs spanning two dates
// =============================================================================

// MonthSequence enumerates the calendar months touched by [From, To].
//
// The sequence starts at From's month and stops once the generated month
// exceeds To's month (compared as year*12+month). From after To yields
// nothing. It holds no cursor, so ranging over All() twice starts over.
type MonthSequence struct {
	From TimePoint
	To   TimePoint
}

func NewMonthSequence(from, to TimePoint) MonthSequence {
	return MonthSequence{From: from, To: to}
}

// All yields months lazily.
func (s MonthSequence) All() iter.Seq[MonthRef] {
	return func(yield func(MonthRef) bool) {
		if s.From.After(s.To) {
			return
		}
		last := s.To.MonthRef()
		for m := s.From.MonthRef(); !m.After(last); m = m.Next() {
			if !yield(m) {
				return
			}
		}
	}
}

// Slice materializes the sequence.
func (s MonthSequence) Slice() []MonthRef {
	var months []MonthRef
	for m := range s.All() {
		months = append(months, m)
	}
	return months
}

// Len counts months without allocating.
func (s MonthSequence) Len() int {
	if s.From.After(s.To) {
		return 0
	}
	return s.To.MonthRef().Index() - s.From.MonthRef().Index() + 1
}
