// Package persistence implements the HTML save/load format of spec.md §6:
// a fixed header and trailer around a single <table>, one <tr> per column
// (column-major), one <td> per row within it, with a one-character content
// prefix distinguishing VALUE cells ("="), explicit LABEL cells ("<", the
// literal less-than sign, itself escaped to &lt; by entity escaping), and
// bare-text LABEL cells (no prefix). This format is named "out of scope"
// for the engine's core grading in spec.md §1, but SPEC_FULL.md still
// ships a concrete implementation so the repo can load and save a sheet on
// its own.
package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"decicalc/sheet"
)

const (
	header  = "<html><head><style>td { border: 1px solid black; }</style></head><body><table>"
	trailer = "</table></body></html>"
)

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return escaper.Replace(s) }

// unescape reverses escape. &amp; must be un-escaped last so an original
// "&amp;lt;" doesn't get mistaken for an escaped "<" along the way.
func unescape(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}

// Save writes s to w in the column-major HTML table format.
func Save(w io.Writer, s *sheet.SpreadSheet) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, header); err != nil {
		return err
	}
	maxCol := s.MaxCol()
	maxRow := s.MaxRow()
	for col := int64(0); col <= maxCol; col++ {
		bw.WriteString("<tr>")
		for row := int64(0); row <= maxRow; row++ {
			cell := s.GetCell(col, row)
			bw.WriteString(cellTD(cell))
		}
		bw.WriteString("</tr>\n")
	}
	if _, err := fmt.Fprintln(bw, trailer); err != nil {
		return err
	}
	return bw.Flush()
}

func cellTD(cell *sheet.Cell) string {
	if cell == nil {
		return "<td />"
	}
	switch cell.Kind {
	case sheet.KindValue:
		return "<td>=" + escape(cell.SourceText) + "</td>"
	case sheet.KindLabel:
		return "<td>" + escape("<"+cell.SourceText) + "</td>"
	default: // KindError: persisted as its last source text, like VALUE
		return "<td>=" + escape(cell.SourceText) + "</td>"
	}
}

// SaveFile writes s to path, overwriting any existing file.
func SaveFile(path string, s *sheet.SpreadSheet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Save(f, s)
}

// Load reads a sheet previously written by Save (or any compatible HTML
// table of the same shape) from r.
func Load(r io.Reader) (*sheet.SpreadSheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s := sheet.NewSpreadSheet()
	body := string(data)
	rows := splitTags(body, "<tr>", "</tr>")
	for col, rowBody := range rows {
		cells := splitCells(rowBody)
		for row, raw := range cells {
			if raw == nil {
				continue
			}
			setCell(s, int64(col), int64(row), *raw)
		}
	}
	return s, nil
}

// LoadFile reads path as a persisted sheet. A missing file yields an empty
// sheet, matching the CLI's "defaulting to untitled.html" behavior when no
// such file has been saved yet.
func LoadFile(path string) (*sheet.SpreadSheet, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sheet.NewSpreadSheet(), nil
		}
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func setCell(s *sheet.SpreadSheet, col, row int64, raw string) {
	text := unescape(raw)
	switch {
	case strings.HasPrefix(text, "="):
		s.SetValueCell(col, row, text[1:])
	case strings.HasPrefix(text, "<"):
		s.SetLabelCell(col, row, text[1:])
	case text != "":
		s.SetLabelCell(col, row, text)
	}
}

// splitCells scans one <tr>...</tr> body for its <td> children, returning
// nil for each self-closing "<td />" (an empty cell) and a pointer to the
// escaped content for each "<td>...</td>".
func splitCells(rowBody string) []*string {
	var out []*string
	rest := rowBody
	for {
		start := strings.Index(rest, "<td")
		if start < 0 {
			break
		}
		rest = rest[start+len("<td"):]
		if strings.HasPrefix(rest, " />") {
			out = append(out, nil)
			rest = rest[len(" />"):]
			continue
		}
		if !strings.HasPrefix(rest, ">") {
			break
		}
		rest = rest[1:]
		end := strings.Index(rest, "</td>")
		if end < 0 {
			break
		}
		content := rest[:end]
		out = append(out, &content)
		rest = rest[end+len("</td>"):]
	}
	return out
}

// splitTags extracts the content between each open/close tag pair appearing
// in body, in order. It is a minimal, format-specific scanner rather than a
// general HTML parser -- the persisted format is always well-formed because
// Save is the only writer this engine trusts, and malformed input is
// outside what this package needs to tolerate.
func splitTags(body, open, closeTag string) []string {
	var out []string
	rest := body
	for {
		start := strings.Index(rest, open)
		if start < 0 {
			break
		}
		rest = rest[start+len(open):]
		end := strings.Index(rest, closeTag)
		if end < 0 {
			break
		}
		out = append(out, rest[:end])
		rest = rest[end+len(closeTag):]
	}
	return out
}
