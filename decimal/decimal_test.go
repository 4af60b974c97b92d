package decimal

import "testing"

func TestAddSubMulDiv(t *testing.T) {
	a := FromInt(7)
	b := FromInt(2)
	if got := a.Add(b).Float64(); got != 9 {
		t.Errorf("Add: got %v, want 9", got)
	}
	if got := a.Sub(b).Float64(); got != 5 {
		t.Errorf("Sub: got %v, want 5", got)
	}
	if got := a.Mul(b).Float64(); got != 14 {
		t.Errorf("Mul: got %v, want 14", got)
	}
	if got := a.Div(b).Float64(); got != 3.5 {
		t.Errorf("Div: got %v, want 3.5", got)
	}
}

func TestDivByZero(t *testing.T) {
	zero := FromInt(0)
	if !zero.Div(zero).IsNaN() {
		t.Error("0/0 should be NaN")
	}
	if !FromInt(1).Div(zero).IsInf() {
		t.Error("1/0 should be infinite")
	}
}

func TestCmpUnordered(t *testing.T) {
	if NaN().Cmp(FromInt(1)) != 2 {
		t.Error("NaN comparisons should be unordered (2)")
	}
	if FromInt(1).Cmp(FromInt(2)) != -1 {
		t.Error("1 should compare less than 2")
	}
	if FromInt(2).Cmp(FromInt(2)) != 0 {
		t.Error("2 should compare equal to 2")
	}
}

func TestRoundModes(t *testing.T) {
	defer SetRoundMode(ToNearest)

	cases := []struct {
		mode RoundMode
		in   float64
		want float64
	}{
		{ToNearest, 2.5, 3},
		{TowardZero, 2.9, 2},
		{TowardZero, -2.9, -2},
		{Upward, 2.1, 3},
		{Downward, 2.9, 2},
		{FromZero, 2.1, 3},
		{FromZero, -2.1, -3},
	}
	for _, c := range cases {
		if err := SetRoundMode(c.mode); err != nil {
			t.Fatalf("SetRoundMode(%s): %v", c.mode, err)
		}
		if got := Round(FromFloat(c.in)).Float64(); got != c.want {
			t.Errorf("Round(%v) under %s: got %v, want %v", c.in, c.mode, got, c.want)
		}
	}
}

func TestSetRoundModeRejectsUnknown(t *testing.T) {
	if err := SetRoundMode("sideways"); err == nil {
		t.Error("expected an error for an unrecognized rounding mode")
	}
}

func TestParseString(t *testing.T) {
	n, ok := ParseString("3.25")
	if !ok || n.Float64() != 3.25 {
		t.Errorf("ParseString(3.25): got %v, %v", n, ok)
	}
	if _, ok := ParseString("not a number"); ok {
		t.Error("ParseString should reject non-numeric text")
	}
}
