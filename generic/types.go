/*
Package generic provides the domain-agnostic building blocks of the tuition engine.

PURPOSE:
  This package contains the types every other package agrees on: decimal
  amounts, day-granular dates, calendar-month references and the shared
  error taxonomy. It knows nothing about students or installments; the
  billing and internship packages build on top of it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 300.00 currency, 1.5 hours)
  - Unit: Currency (single denomination) or hours

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Single denomination: There is exactly one currency unit
  3. Zero is valid: A zero fee or zero hours is a legitimate value

USAGE:
  fee := generic.NewAmount(300, generic.UnitCurrency)
  total := fee.Add(generic.NewAmount(150.5, generic.UnitCurrency))

SEE ALSO:
  - time.go: TimePoint and MonthRef
  - period.go: MonthSequence (month enumeration between two dates)
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitCurrency Unit = "currency"
	UnitHours    Unit = "hours"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

// Money is shorthand for a currency amount.
func Money(value float64) Amount { return NewAmount(value, UnitCurrency) }

// Hours is shorthand for an hours amount.
func Hours(value float64) Amount { return NewAmount(value, UnitHours) }

// ParseAmount parses a decimal string. Unparseable input yields zero, which
// mirrors how non-numeric fees degrade instead of failing.
func ParseAmount(s string, unit Unit) Amount {
	return Amount{Value: MustParseDecimal(s), Unit: unit}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsPositive() bool          { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool       { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }

// Float64 is for presentation only. Arithmetic stays in decimal.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

// String renders the value with two decimal places.
func (a Amount) String() string { return a.Value.StringFixed(2) }

// Sum adds amounts of the given unit. An empty input sums to zero.
func Sum(unit Unit, amounts ...Amount) Amount {
	total := Amount{Value: decimal.Zero, Unit: unit}
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
