package subtitle

import (
	"errors"
	"testing"
	"time"
)

func TestStyleRoundTrip(t *testing.T) {
	s := NewStyle(1, "Default")
	want := "Style: Default,Arial,48,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1"
	if got := s.AsAss(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	s.Bold = true
	s.FontSize = 52.5
	s.Name = "Sign"
	parsed, err := StyleFromAss(7, s.AsAss())
	if err != nil {
		t.Fatalf("failed to parse style: %v", err)
	}
	if parsed.ID != 7 {
		t.Errorf("expected ID 7, got %d", parsed.ID)
	}
	if !parsed.Congruent(s) {
		t.Errorf("expected %+v, got %+v", s, parsed)
	}
}

func TestStyleFromAssMalformed(t *testing.T) {
	lines := []string{
		"Dialogue: 0,0:00:00.00",
		"Style: Default,Arial,48",
		"Style: Default,Arial,big,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1",
	}
	for _, line := range lines {
		if _, err := StyleFromAss(1, line); !errors.Is(err, ErrMalformed) {
			t.Errorf("expected ErrMalformed for %q, got %v", line, err)
		}
	}
}

func TestStyleFlag(t *testing.T) {
	s := NewStyle(1, "Default")
	s.Italic = true
	if !s.Flag("i") || s.Flag("b") || s.Flag("blur") {
		t.Error("unexpected flag values")
	}

	var missing *Style
	if missing.Flag("i") {
		t.Error("expected nil style to report false")
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"0:00:00.00", 0},
		{"0:00:01.50", 1500 * time.Millisecond},
		{"1:02:03.45", time.Hour + 2*time.Minute + 3*time.Second + 450*time.Millisecond},
		{" 0:10:00.00 ", 10 * time.Minute},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.input)
		if err != nil {
			t.Errorf("ParseTime(%q): unexpected error %v", tt.input, err)
			continue
		}
		if got.Duration() != tt.want {
			t.Errorf("ParseTime(%q): expected %v, got %v", tt.input, tt.want, got.Duration())
		}
	}

	for _, bad := range []string{"", "1:00", "a:00:00.00", "0:00:00", "0:-1:00.00"} {
		if _, err := ParseTime(bad); !errors.Is(err, ErrMalformed) {
			t.Errorf("ParseTime(%q): expected ErrMalformed, got %v", bad, err)
		}
	}
}

func TestTimeArithmetic(t *testing.T) {
	if got := FromMillis(-5); got != 0 {
		t.Errorf("expected negative millis to clamp, got %v", got)
	}
	if got := FromSeconds(1).Sub(FromSeconds(3)); got != 0 {
		t.Errorf("expected sub to clamp at zero, got %v", got)
	}
	if got := FromSeconds(1).Add(-2 * time.Second); got != 0 {
		t.Errorf("expected add to clamp at zero, got %v", got)
	}
	if got := FromMillis(3723456).AsAss(); got != "1:02:03.45" {
		t.Errorf("expected 1:02:03.45, got %s", got)
	}
	if got := FromSeconds(2.5).Millis(); got != 2500 {
		t.Errorf("expected 2500, got %d", got)
	}
}
