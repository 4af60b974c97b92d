// Package decimal is DeciCalc's numeric provider. Upstream, the original
// treats its math library as an opaque decimal type reached only through a
// narrow Add/Sub/Mul/Div/Cmp/Round interface (spec §1 "Non-goals": the
// decimal-math library itself is out of scope). This package supplies a
// concrete, self-contained implementation of that interface so the engine
// compiles and runs standalone, backed by float64 with an explicit,
// process-global rounding mode. The mode governs Round(); Add/Sub/Mul/Div
// return the float64 result, which the hardware rounds to nearest in every
// mode.
package decimal

import (
	"fmt"
	"math"
	"strconv"
)

type RoundMode string

const (
	ToNearest  RoundMode = "TO_NEAREST"
	TowardZero RoundMode = "TOWARD_ZERO"
	Upward     RoundMode = "UPWARD"
	Downward   RoundMode = "DOWNWARD"
	FromZero   RoundMode = "FROM_ZERO"
)

var currentMode = ToNearest

// GetRoundMode and SetRoundMode expose the process-wide rounding mode the
// host functions of the same name (§4.7) delegate to. Tests that depend on
// rounding behavior must reset this around themselves (§9).
func GetRoundMode() RoundMode { return currentMode }

func SetRoundMode(m RoundMode) error {
	switch m {
	case ToNearest, TowardZero, Upward, Downward, FromZero:
		currentMode = m
		return nil
	default:
		return fmt.Errorf("unrecognized rounding mode: %s", m)
	}
}

// Number is the concrete backing for value.Float.
type Number struct {
	f float64
}

func FromInt(i int64) Number   { return Number{f: float64(i)} }
func FromFloat(f float64) Number { return Number{f: f} }
func NaN() Number              { return Number{f: math.NaN()} }

func (n Number) Float64() float64 { return n.f }
func (n Number) IsNaN() bool      { return math.IsNaN(n.f) }
func (n Number) IsInf() bool      { return math.IsInf(n.f, 0) }

func (n Number) String() string {
	if math.IsNaN(n.f) {
		return "NaN"
	}
	if math.IsInf(n.f, 1) {
		return "Infinity"
	}
	if math.IsInf(n.f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

func (n Number) Add(o Number) Number { return round(n.f + o.f) }
func (n Number) Sub(o Number) Number { return round(n.f - o.f) }
func (n Number) Mul(o Number) Number { return round(n.f * o.f) }
func (n Number) Div(o Number) Number {
	if o.f == 0 {
		if n.f == 0 {
			return NaN()
		}
		return Number{f: math.Inf(boolSign(n.f))}
	}
	return round(n.f / o.f)
}
func (n Number) Neg() Number { return Number{f: -n.f} }

// Cmp returns -1/0/1 as n</==/> o, and 2 when the two are unordered; NaN
// never compares equal, including to itself, matching IEEE semantics the
// engine does not paper over.
func (n Number) Cmp(o Number) int {
	if n.f < o.f {
		return -1
	}
	if n.f > o.f {
		return 1
	}
	if n.f == o.f {
		return 0
	}
	return 2 // unordered (NaN involved)
}

func boolSign(f float64) int {
	if f < 0 {
		return -1
	}
	return 1
}

// round is applied to every arithmetic result. The hardware has already
// rounded that result to nearest and the exact mathematical value is not
// available at this precision, so every mode returns the float64 result
// unchanged (the directed modes pass through roundToIntMode); the mode
// takes effect in Round() only.
func round(f float64) Number {
	switch currentMode {
	case TowardZero:
		return Number{f: roundToIntMode(f, math.Trunc)}
	case Upward:
		return Number{f: roundToIntMode(f, math.Ceil)}
	case Downward:
		return Number{f: roundToIntMode(f, math.Floor)}
	case FromZero:
		if f >= 0 {
			return Number{f: roundToIntMode(f, math.Ceil)}
		}
		return Number{f: roundToIntMode(f, math.Floor)}
	default: // ToNearest
		return Number{f: f}
	}
}

// roundToIntMode returns f unchanged; dir is not applied. The directed
// modes therefore affect only the Round() host function, not the result of
// an arithmetic op (float hardware offers no directed-rounding control at
// the language level).
func roundToIntMode(f float64, dir func(float64) float64) float64 {
	return f
}

// Round implements the Round() host function using the process's current
// mode (§4.1/§4.7).
func Round(n Number) Number {
	switch currentMode {
	case TowardZero:
		return Number{f: math.Trunc(n.f)}
	case Upward:
		return Number{f: math.Ceil(n.f)}
	case Downward:
		return Number{f: math.Floor(n.f)}
	case FromZero:
		if n.f >= 0 {
			return Number{f: math.Ceil(n.f)}
		}
		return Number{f: math.Floor(n.f)}
	default:
		return Number{f: math.Round(n.f)}
	}
}

func Floor(n Number) Number { return Number{f: math.Floor(n.f)} }
func Ceil(n Number) Number  { return Number{f: math.Ceil(n.f)} }
func Abs(n Number) Number   { return Number{f: math.Abs(n.f)} }

func ParseString(s string) (Number, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, false
	}
	return Number{f: f}, true
}
