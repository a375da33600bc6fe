package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is an exact decimal amount of an asset. All ledger arithmetic goes
// through this type; float64 is never used for balances.
type Quantity struct {
	value decimal.Decimal
}

// ParseError reports a malformed decimal string in a reported balance.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid decimal quantity %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseQuantity parses a canonical decimal string such as "1.5" or "-0.3".
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, &ParseError{Input: s, Err: err}
	}
	return Quantity{value: d}, nil
}

// MustQuantity panics on a malformed input. Intended for constants and tests.
func MustQuantity(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func ZeroQuantity() Quantity { return Quantity{} }

func (q Quantity) Add(o Quantity) Quantity { return Quantity{value: q.value.Add(o.value)} }
func (q Quantity) Sub(o Quantity) Quantity { return Quantity{value: q.value.Sub(o.value)} }
func (q Quantity) Neg() Quantity           { return Quantity{value: q.value.Neg()} }
func (q Quantity) Equal(o Quantity) bool   { return q.value.Equal(o.value) }
func (q Quantity) IsNegative() bool        { return q.value.IsNegative() }
func (q Quantity) IsZero() bool            { return q.value.IsZero() }
func (q Quantity) String() string          { return q.value.String() }

// Shift moves the decimal point by the given power of ten. Used by connector
// code to turn raw minor units into human-readable quantities.
func (q Quantity) Shift(places int32) Quantity {
	return Quantity{value: q.value.Shift(places)}
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return q.value.MarshalJSON()
}

func (q *Quantity) UnmarshalJSON(b []byte) error {
	return q.value.UnmarshalJSON(b)
}

// Value implements driver.Valuer; quantities travel to Postgres as text and
// bind against numeric columns without any float conversion.
func (q Quantity) Value() (driver.Value, error) {
	return q.value.String(), nil
}

// Scan implements sql.Scanner for text or numeric-as-text columns.
func (q *Quantity) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		q.value = decimal.Decimal{}
		return nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return &ParseError{Input: v, Err: err}
		}
		q.value = d
		return nil
	case []byte:
		return q.Scan(string(v))
	case int64:
		q.value = decimal.NewFromInt(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Quantity", src)
	}
}
