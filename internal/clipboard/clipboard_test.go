package clipboard

import (
	"errors"
	"testing"
)

func TestCopyPasteLines(t *testing.T) {
	b := &Memory{}
	lines := []string{"Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,hi", "plain"}
	if err := CopyLines(b, lines); err != nil {
		t.Fatalf("CopyLines failed: %v", err)
	}
	if !Equals(b, lines[0]+"\n"+lines[1]) {
		t.Error("expected lines joined by newlines")
	}

	got, err := PasteLines(b)
	if err != nil {
		t.Fatalf("PasteLines failed: %v", err)
	}
	if len(got) != 2 || got[0] != lines[0] || got[1] != lines[1] {
		t.Errorf("expected %v, got %v", lines, got)
	}
}

func TestPasteLinesNormalizes(t *testing.T) {
	b := &Memory{}
	b.WriteAll("a\r\nb\r\n")
	got, err := PasteLines(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %q", got)
	}
}

func TestEmpty(t *testing.T) {
	b := &Memory{}
	if err := CopyLines(b, nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	b.WriteAll(" \n")
	if _, err := PasteLines(b); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}
