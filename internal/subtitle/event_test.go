package subtitle

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestEventAsAss(t *testing.T) {
	e := NewEvent(1)
	e.Start = FromSeconds(1)
	e.Text = "Hello"

	want := "Dialogue: 0,0:00:01.00,0:00:05.00,Default,,0,0,0,,Hello"
	if got := e.AsAss(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	e.Comment = true
	e.LinkedExtradata = []int{3, 12}
	want = "Comment: 0,0:00:01.00,0:00:05.00,Default,,0,0,0,,{=3=12}Hello"
	if got := e.AsAss(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEventRoundTrip(t *testing.T) {
	events := []*Event{
		NewEvent(0),
		{
			ID:      4,
			Layer:   2,
			Start:   FromMillis(61230),
			End:     FromMillis(3723450),
			Style:   "Sign",
			Actor:   "Narrator",
			Margins: Margins{Left: 10, Right: 20, Vertical: 30},
			Effect:  "Banner;5",
			Text:    `Hi, there {\b1}friend{\b0}\Nsecond, line`,
		},
		{
			ID:              9,
			Comment:         true,
			Style:           "Default",
			Text:            "{note}keep, commas,,",
			LinkedExtradata: []int{1, 2},
		},
		{ID: 10, Style: "Default", Text: ""},
	}

	for _, e := range events {
		line := e.AsAss()
		got, err := EventFromAss(99, line)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", line, err)
		}
		if got.ID != 99 {
			t.Errorf("expected ID 99, got %d", got.ID)
		}
		if !got.Congruent(e) {
			t.Errorf("round trip of %q differs in %s", line, got.Diff(e))
		}
		if !reflect.DeepEqual(got.LinkedExtradata, e.LinkedExtradata) {
			t.Errorf("expected extradata %v, got %v", e.LinkedExtradata, got.LinkedExtradata)
		}
		if got.AsAss() != line {
			t.Errorf("expected %q, got %q", line, got.AsAss())
		}
	}
}

func TestEventFromAssMalformed(t *testing.T) {
	lines := []string{
		"Style: Default,Arial,20",
		"Dialogue: 0,0:00:00.00",
		"Dialogue: x,0:00:00.00,0:00:05.00,Default,,0,0,0,,text",
		"Dialogue: 0,bad,0:00:05.00,Default,,0,0,0,,text",
		"Dialogue: 0,0:00:00.00,0:00:05.00,Default,,0,zero,0,,text",
		"Comment: 0,0:00:00.00,1:2,Default,,0,0,0,,text",
	}

	for _, line := range lines {
		_, err := EventFromAss(1, line)
		if err == nil {
			t.Errorf("expected error for %q", line)
			continue
		}
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("expected ErrMalformed for %q, got %v", line, err)
		}
	}
}

func TestIsEventLine(t *testing.T) {
	tests := map[string]bool{
		"Dialogue: 0,...":       true,
		"  Comment: 0,...":      true,
		"\ufeffDialogue: 0,...": true,
		"Style: Default":        false,
		"; Dialogue: 0":         false,
	}
	for line, want := range tests {
		if got := IsEventLine(line); got != want {
			t.Errorf("IsEventLine(%q): expected %v, got %v", line, want, got)
		}
	}
}

func TestSplitFields(t *testing.T) {
	got := SplitFields("a,b,c,d,e", 3)
	want := []string{"a", "b", "c,d,e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	got = SplitFields("a,b", 4)
	if len(got) != 2 {
		t.Errorf("expected 2 fields, got %v", got)
	}
}

func TestEventCongruence(t *testing.T) {
	a := NewEvent(1)
	a.Text = "x"
	b := a.CloneWithID(2)

	if !a.Congruent(b) {
		t.Error("expected clone to be congruent")
	}
	if a.Equal(b) {
		t.Error("expected different IDs to be unequal")
	}
	if !a.Equal(a.Clone()) {
		t.Error("expected same-ID clone to be equal")
	}

	b.Actor = "someone"
	b.End = FromSeconds(9)
	if diff := a.Diff(b); diff != FieldActor|FieldEnd {
		t.Errorf("expected actor|end, got %s", diff)
	}
}

func TestEventCloneIsIndependent(t *testing.T) {
	a := NewEvent(1)
	a.LinkedExtradata = []int{1}
	b := a.Clone()
	b.LinkedExtradata[0] = 5

	if a.LinkedExtradata[0] != 1 {
		t.Error("expected clone to copy linked extradata")
	}
}

func TestEventSetFieldsNotifies(t *testing.T) {
	e := NewEvent(1)
	var seen []Field
	e.OnChange(func(f Field) { seen = append(seen, f) })

	src := NewEvent(2)
	src.Text = "new"
	src.Actor = "ignored"

	changed := e.SetFields(FieldText, src)
	if changed != FieldText {
		t.Errorf("expected text change, got %s", changed)
	}
	if e.Actor != "" {
		t.Errorf("expected actor untouched, got %q", e.Actor)
	}
	if len(seen) != 1 || seen[0] != FieldText {
		t.Errorf("expected one text notification, got %v", seen)
	}

	e.SetFields(FieldText, src)
	if len(seen) != 1 {
		t.Errorf("expected no notification without a change, got %v", seen)
	}

	e.Update(func(e *Event) { e.Start = FromSeconds(2) })
	if len(seen) != 2 || seen[1] != FieldStart {
		t.Errorf("expected start notification, got %v", seen)
	}
}

func TestCollidesWith(t *testing.T) {
	ev := func(start, end float64) *Event {
		return &Event{Start: FromSeconds(start), End: FromSeconds(end)}
	}
	tests := []struct {
		a, b *Event
		want bool
	}{
		{ev(0, 5), ev(4, 6), true},
		{ev(4, 6), ev(0, 5), true},
		{ev(0, 5), ev(5, 6), false},
		{ev(1, 2), ev(0, 10), true},
	}
	for i, tt := range tests {
		if got := tt.a.CollidesWith(tt.b); got != tt.want {
			t.Errorf("case %d: expected %v, got %v", i, tt.want, got)
		}
	}
}

func TestCPS(t *testing.T) {
	tests := []struct {
		text string
		dur  time.Duration
		want float64
	}{
		{"Hello, world", 2 * time.Second, 5},
		{`{\b1}Hi\Nthere`, time.Second, 7},
		{"...", time.Second, 0},
		{"text", 0, 0},
	}
	for _, tt := range tests {
		e := &Event{End: FromDuration(tt.dur), Text: tt.text}
		if got := e.CPS(); got != tt.want {
			t.Errorf("CPS(%q): expected %v, got %v", tt.text, tt.want, got)
		}
	}
}

func TestMaxLineWidth(t *testing.T) {
	e := &Event{Text: `Hello\Nhi {\i1}there\nok`}
	if got := e.MaxLineWidth(); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestFieldString(t *testing.T) {
	if got := (FieldStart | FieldText).String(); got != "start|text" {
		t.Errorf("expected start|text, got %s", got)
	}
	if !FieldAll.Has(FieldMeta) {
		t.Error("expected all to contain meta")
	}
	if FieldTime.Has(FieldNone) {
		t.Error("expected none to never be contained")
	}
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		in      string
		want    Field
		wantErr bool
	}{
		{"text", FieldText, false},
		{"start, End", FieldStart | FieldEnd, false},
		{"time,style", FieldTime | FieldStyle, false},
		{"all", FieldAll, false},
		{"", FieldNone, false},
		{"text,bogus", FieldNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFields(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
