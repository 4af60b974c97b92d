package extsource

import (
	"testing"
	"time"

	"decicalc/interpreter"
)

func TestResultValueConversions(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want interpreter.Value
	}{
		{"nil", nil, interpreter.NIL_VALUE},
		{"int64", int64(42), &interpreter.Float{}},
		{"float64", 3.5, &interpreter.Float{}},
		{"bool true", true, interpreter.FLOAT_ONE},
		{"bool false", false, interpreter.FLOAT_ZERO},
		{"string", "hi", &interpreter.String{Value: "hi"}},
		{"bytes", []byte("hi"), &interpreter.String{Value: "hi"}},
	}
	for _, c := range cases {
		got, err := resultValue(c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got.Type() != c.want.Type() {
			t.Errorf("%s: got type %s, want %s", c.name, got.Type(), c.want.Type())
		}
	}
}

func TestResultValueNumericPrecision(t *testing.T) {
	got, err := resultValue(int64(42))
	if err != nil {
		t.Fatalf("resultValue(int64(42)): %v", err)
	}
	f, ok := got.(*interpreter.Float)
	if !ok || f.Value.Float64() != 42 {
		t.Errorf("got %v, want Float(42)", got)
	}
}

func TestResultValueTimeFormatsRFC3339(t *testing.T) {
	ts := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	got, err := resultValue(ts)
	if err != nil {
		t.Fatalf("resultValue(time.Time): %v", err)
	}
	s, ok := got.(*interpreter.String)
	if !ok || s.Value != "2026-07-31T12:00:00Z" {
		t.Errorf("got %v, want RFC3339 string", got)
	}
}

func TestResultValueUnsupportedTypeErrors(t *testing.T) {
	if _, err := resultValue(struct{}{}); err == nil {
		t.Error("an unsupported column type should error")
	}
}

func TestSourceCloseWithoutOpenIsNoop(t *testing.T) {
	s := New("postgres://unused")
	if err := s.Close(); err != nil {
		t.Errorf("Close on a never-opened Source should not error, got %v", err)
	}
}
