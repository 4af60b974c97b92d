package persistence

import (
	"strings"
	"testing"

	"decicalc/sheet"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := sheet.NewSpreadSheet()
	s.SetValueCell(0, 0, "1 + 1")
	s.SetLabelCell(1, 0, "Revenue")
	s.SetValueCell(0, 2, "EvalCell(A1)")

	var buf strings.Builder
	if err := Save(&buf, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	a1 := loaded.GetCell(0, 0)
	if a1 == nil || a1.Kind != sheet.KindValue || a1.SourceText != "1 + 1" {
		t.Errorf("A1 round-trip: got %+v", a1)
	}
	b1 := loaded.GetCell(1, 0)
	if b1 == nil || b1.Kind != sheet.KindLabel || b1.SourceText != "Revenue" {
		t.Errorf("B1 round-trip: got %+v", b1)
	}
	a3 := loaded.GetCell(0, 2)
	if a3 == nil || a3.SourceText != "EvalCell(A1)" {
		t.Errorf("A3 round-trip: got %+v", a3)
	}
}

func TestEmptyCellRoundTrips(t *testing.T) {
	s := sheet.NewSpreadSheet()
	s.SetValueCell(2, 2, "1")

	var buf strings.Builder
	if err := Save(&buf, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.Contains(buf.String(), "<td />") {
		t.Error("empty cells should be written as self-closing <td />")
	}

	loaded, err := Load(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c := loaded.GetCell(0, 0); c != nil {
		t.Errorf("(0,0) should remain empty after round-trip, got %+v", c)
	}
}

func TestEscapingSurvivesRoundTrip(t *testing.T) {
	s := sheet.NewSpreadSheet()
	s.SetValueCell(0, 0, `1 < 2 && 3 > 0 & 4`)

	var buf strings.Builder
	if err := Save(&buf, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := loaded.GetCell(0, 0)
	want := `1 < 2 && 3 > 0 & 4`
	if got == nil || got.SourceText != want {
		t.Errorf("escaped round-trip: got %+v, want source %q", got, want)
	}
}

func TestLabelCellLeadingLessThanEscaped(t *testing.T) {
	s := sheet.NewSpreadSheet()
	s.SetLabelCell(0, 0, "<not a formula")

	var buf strings.Builder
	if err := Save(&buf, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := loaded.GetCell(0, 0)
	if got == nil || got.Kind != sheet.KindLabel || got.SourceText != "<not a formula" {
		t.Errorf("label round-trip: got %+v", got)
	}
}

func TestLoadFileMissingFileYieldsEmptySheet(t *testing.T) {
	s, err := LoadFile("/nonexistent/path/to/a/sheet.html")
	if err != nil {
		t.Fatalf("LoadFile on a missing file should not error, got %v", err)
	}
	if s.MaxCol() != -1 || s.MaxRow() != 0 {
		t.Errorf("expected a fresh empty sheet, got maxCol=%d maxRow=%d", s.MaxCol(), s.MaxRow())
	}
}
