package convert

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/subedit/internal/document"
	"github.com/mgpai22/subedit/internal/subtitle"
)

const srtSample = `1
00:00:00,620 --> 00:00:05,630
（教会の鐘の音）

2
00:00:07,130 --> 00:00:09,010
（風太郎(ふうたろう)）夢を見ていた

3
00:00:11,420 --> 00:00:13,680
（スタッフ）
起きてください 新郎様

4
00:00:13,800 --> 00:00:16,260
新婦様の準備が整いましたよ

5
00:00:17,260 --> 00:00:18,100
（風太郎）あっ
`

func texts(d *document.Document) []string {
	var out []string
	for _, e := range d.Events().Ordered() {
		out = append(out, e.Text)
	}
	return out
}

func TestReadSRT(t *testing.T) {
	d, err := ReadSRT(strings.NewReader(srtSample))
	if err != nil {
		t.Fatalf("failed to read SRT: %v", err)
	}

	ordered := d.Events().Ordered()
	if len(ordered) != 5 {
		t.Fatalf("expected 5 events, got %d", len(ordered))
	}

	last := ordered[4]
	if last.Start.Millis() != 17260 || last.End.Millis() != 18100 {
		t.Errorf("expected 17260-18100, got %d-%d", last.Start.Millis(), last.End.Millis())
	}
	if last.Text != "（風太郎）あっ" {
		t.Errorf("unexpected last text %q", last.Text)
	}
	if ordered[2].Text != `（スタッフ）\N起きてください 新郎様` {
		t.Errorf("unexpected third text %q", ordered[2].Text)
	}
}

func TestReadSRTTags(t *testing.T) {
	input := "1\n00:00:00,620 --> 00:00:05,630\n" +
		"Hey <i>dear <b>my</b></i> <u>friends</u>\n" +
		`<font face="Arial" size="32" color='#FF0044'>So cool</font>` + "\n"

	d, err := ReadSRT(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := `Hey {\i1}dear {\b1}my{\b0\i0} {\u1}friends{\u0}\N{\fnArial\fs32\c&H4400FF&}So cool{\fn\fs\c}`
	if got := texts(d)[0]; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReadSRTBlankLinesInCue(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:02,000\nfirst\n\nsecond\n\n2\n00:00:03,000 --> 00:00:04,000\nthird\n"
	d, err := ReadSRT(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	got := texts(d)
	if len(got) != 2 || got[0] != `first\N\Nsecond` || got[1] != "third" {
		t.Errorf("unexpected texts %q", got)
	}
}

func TestReadSRTErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no index", "Hello", "expected subtitle index at line 1"},
		{"no timestamps", "1\nHello", "expected timestamps at line 2"},
		{"truncated", "1\n00:00:00,620 --> 00:00:05,630", "unexpected end of SRT file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSRT(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, subtitle.ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestSRTTimeFraction(t *testing.T) {
	tests := []struct {
		frac string
		want int64
	}{
		{"5", 500},
		{"05", 50},
		{"005", 5},
		{"0051", 5},
	}
	for _, tt := range tests {
		got, err := srtTime([]string{"0", "0", "1", tt.frac})
		if err != nil {
			t.Fatal(err)
		}
		if got.Millis() != 1000+tt.want {
			t.Errorf("fraction %q: expected %d, got %d", tt.frac, 1000+tt.want, got.Millis())
		}
	}
}

func TestWriteSRT(t *testing.T) {
	d, err := ReadSRT(strings.NewReader(srtSample))
	if err != nil {
		t.Fatal(err)
	}
	ordered := d.Events().Ordered()
	ordered[0].Text = `{\pos(10,10)\i1}bent{\i0} and {\b1}bold`
	ordered[1].Comment = true

	var buf bytes.Buffer
	if err := WriteSRT(&buf, d); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"1\n00:00:00,620 --> 00:00:05,630\n<i>bent</i> and <b>bold</b>\n\n",
		"2\n00:00:11,420 --> 00:00:13,680\n（スタッフ）\n起きてください 新郎様\n\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "夢を見ていた") {
		t.Error("expected comment events to be skipped")
	}
}

func TestAssToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		m    markup
		want string
	}{
		{"plain", `a\Nb\hc`, srtMarkup, "a\nb c"},
		{"unclosed", `{\b1}a{\i1}b`, srtMarkup, "<b>a<i>b</i></b>"},
		{"crossed", `{\b1}a{\i1}b{\b0}c{\i0}`, srtMarkup, "<b>a<i>b</i></b><i>c</i>"},
		{"reset", `{\b1\u1}a{\r}b`, srtMarkup, "<b><u>a</u></b>b"},
		{"strike dropped for vtt", `{\s1}a{\s0}`, vttMarkup, "a"},
		{"drawing dropped", `{\p1}m 0 0 l 1 1{\p0}x`, srtMarkup, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := assToHTML(tt.in, tt.m); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOverrideColor(t *testing.T) {
	tests := map[string]string{
		"#FF0044": "&H4400FF&",
		"#00ff00": "&H00FF00&",
		"red":     "&H0000FF&",
	}
	for in, want := range tests {
		got, ok := overrideColor(in)
		if !ok || got != want {
			t.Errorf("%s: expected %s, got %s", in, want, got)
		}
	}
	if _, ok := overrideColor("#12"); ok {
		t.Error("expected short hex to be rejected")
	}
}

const vttSample = "\ufeffWEBVTT\n\nNOTE a comment\nthat spans lines\n\n" +
	"intro\n00:00:01.000 --> 00:00:03.500 align:start\n<v Alice>Hello <i>there</i>\n\n" +
	"00:04.000 --> 00:05.250\nshort &amp; sweet\nsecond line\n"

func TestReadVTT(t *testing.T) {
	d, err := ReadVTT(strings.NewReader(vttSample))
	if err != nil {
		t.Fatalf("failed to read VTT: %v", err)
	}
	ordered := d.Events().Ordered()
	if len(ordered) != 2 {
		t.Fatalf("expected 2 events, got %d", len(ordered))
	}
	if ordered[0].Actor != "Alice" || ordered[0].Text != `Hello {\i1}there{\i0}` {
		t.Errorf("unexpected first event %q / %q", ordered[0].Actor, ordered[0].Text)
	}
	if ordered[0].End.Millis() != 3500 {
		t.Errorf("expected end 3500, got %d", ordered[0].End.Millis())
	}
	if ordered[1].Start.Millis() != 4000 || ordered[1].Text != `short & sweet\Nsecond line` {
		t.Errorf("unexpected second event %d %q", ordered[1].Start.Millis(), ordered[1].Text)
	}
}

func TestWriteVTT(t *testing.T) {
	d, err := ReadVTT(strings.NewReader(vttSample))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteVTT(&buf, d); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "WEBVTT\n\n") {
		t.Errorf("expected WEBVTT header, got %q", out)
	}
	want := "00:00:01.000 --> 00:00:03.500\n<v Alice>Hello <i>there</i>\n\n"
	if !strings.Contains(out, want) {
		t.Errorf("expected %q in output:\n%s", want, out)
	}
}

func TestReadTXT(t *testing.T) {
	input := "# Exported by subedit\n\nAlice: Hello there\n  # a note\nplain line\n"
	d, err := ReadTXT(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	ordered := d.Events().Ordered()
	if len(ordered) != 3 {
		t.Fatalf("expected 3 events, got %d", len(ordered))
	}
	if ordered[0].Actor != "Alice" || ordered[0].Text != "Hello there" {
		t.Errorf("unexpected first event %q / %q", ordered[0].Actor, ordered[0].Text)
	}
	if !ordered[1].Comment || ordered[1].Text != "a note" {
		t.Errorf("expected comment 'a note', got %v %q", ordered[1].Comment, ordered[1].Text)
	}
	if ordered[2].Actor != "" || ordered[2].End != 0 {
		t.Errorf("expected plain zero-length event, got %+v", ordered[2])
	}
}

func TestReadTXTEmpty(t *testing.T) {
	d, err := ReadTXT(strings.NewReader("\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if d.Events().Len() != 1 {
		t.Errorf("expected a default event, got %d events", d.Events().Len())
	}
}

func TestWriteTXT(t *testing.T) {
	d, err := ReadTXT(strings.NewReader("Alice: one \\N two\n# note\nthree\n"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts TXTOptions
		want string
	}{
		{"all", TXTOptions{Comments: true, Actors: true}, "# Exported by subedit\nAlice: one two\n# note\nthree\n"},
		{"bare", TXTOptions{}, "# Exported by subedit\none two\nthree\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteTXT(&buf, d, tt.opts); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestStripNewlines(t *testing.T) {
	tests := map[string]string{
		`a\Nb`:      "a b",
		`a \n  b`:   "a b",
		`no breaks`: "no breaks",
	}
	for in, want := range tests {
		if got := StripNewlines(in); got != want {
			t.Errorf("%q: expected %q, got %q", in, want, got)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.ass":     FormatASS,
		"a.SSA":     FormatASS,
		"dir/b.srt": FormatSRT,
		"c.vtt":     FormatVTT,
		"d.txt":     FormatTXT,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("%s: expected %s, got %s (%v)", path, want, got, err)
		}
	}
	if _, err := FormatFromPath("movie.mkv"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestSaveAndOpen(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.srt")
	if err := os.WriteFile(src, []byte(srtSample), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := Open(src)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}

	for _, name := range []string{"out.ass", "out.srt", "out.vtt", "nested/out.txt"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(d, path); err != nil {
				t.Fatalf("failed to save: %v", err)
			}
			back, err := Open(path)
			if err != nil {
				t.Fatalf("failed to reopen: %v", err)
			}
			if back.Events().Len() != 5 {
				t.Errorf("expected 5 events, got %d", back.Events().Len())
			}
			got := texts(back)[4]
			if got != "（風太郎）あっ" {
				t.Errorf("unexpected last text %q", got)
			}
		})
	}
}

func TestBalance(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"fits", "short line", 42, "short line"},
		{"middle", "aaaa bbbb cccc dddd", 10, `aaaa bbbb\Ncccc dddd`},
		{"tags kept", `{\i1}aaaa bbbb{\i0} cccc dddd`, 10, `{\i1}aaaa bbbb{\i0}\Ncccc dddd`},
		{"already broken", `aaaa bbbb\Ncccc dddd`, 10, `aaaa bbbb\Ncccc dddd`},
		{"single word", "abcdefghijklmnop", 10, "abcdefghijklmnop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Balance(tt.in, tt.max); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
