package replline

import (
	"bytes"
	"testing"
)

func TestLineWriterInsertsCRBeforeLF(t *testing.T) {
	var buf bytes.Buffer
	w := NewLineWriter(&buf)
	if _, err := w.Write([]byte("hello\nworld\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "hello\r\nworld\r\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLineWriterDoesNotDoubleExistingCR(t *testing.T) {
	var buf bytes.Buffer
	w := NewLineWriter(&buf)
	if _, err := w.Write([]byte("already\r\nfine")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "already\r\nfine"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLineWriterReturnsOriginalLength(t *testing.T) {
	var buf bytes.Buffer
	w := NewLineWriter(&buf)
	n, err := w.Write([]byte("a\nb\n"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 4 {
		t.Errorf("Write should report the input length (4), got %d", n)
	}
}
