package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/subedit/internal/clipboard"
	"github.com/mgpai22/subedit/internal/document"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const testASS = `[Script Info]
Title: CLI
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,48,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:03.00,Default,Alice,0,0,0,,Hello World
Dialogue: 0,0:00:04.00,0:00:08.00,Default,Bob,0,0,0,,{\i1}one\Ntwo
Dialogue: 0,0:00:09.00,0:00:10.00,Default,Alice,0,0,0,,last
`

func resetFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func resetCommand(cmd *cobra.Command) {
	resetFlags(cmd.Flags())
	resetFlags(cmd.PersistentFlags())
	for _, c := range cmd.Commands() {
		resetCommand(c)
	}
}

// run executes the root command with a missing config file and returns its
// output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetCommand(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	args = append(args, "--config", filepath.Join(t.TempDir(), "none.yaml"))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.ass")
	if err := os.WriteFile(path, []byte(testASS), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readTexts(t *testing.T, path string) []string {
	t.Helper()
	d, err := document.Open(path)
	if err != nil {
		t.Fatalf("failed to reopen %s: %v", path, err)
	}
	var out []string
	for _, e := range d.Events().Ordered() {
		out = append(out, e.Text)
	}
	return out
}

func sameTexts(t *testing.T, want, got []string) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestEventsCommand(t *testing.T) {
	path := writeSample(t)

	out, err := run(t, "events", path, "--plain")
	if err != nil {
		t.Fatalf("events failed: %v", err)
	}
	for _, want := range []string{"Hello World", `one\Ntwo`, "0:00:04.00", "Bob"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, `{\i1}`) {
		t.Errorf("expected tags to be stripped:\n%s", out)
	}

	out, err = run(t, "events", path, "--actors")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "Alice\nBob" {
		t.Errorf("expected Alice and Bob, got %q", out)
	}
}

func TestBlocksCommand(t *testing.T) {
	path := writeSample(t)
	out, err := run(t, "blocks", path, "2")
	if err != nil {
		t.Fatalf("blocks failed: %v", err)
	}
	if !strings.Contains(out, `{\i1}`) || !strings.Contains(out, `one\Ntwo`) {
		t.Errorf("unexpected blocks output:\n%s", out)
	}
}

func TestEditCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "toggle",
			args: []string{"toggle", "1", "--tag", "b", "--start", "6", "--end", "11"},
			want: []string{`Hello {\b1}World{\b0}`, `{\i1}one\Ntwo`, "last"},
		},
		{
			name: "settag",
			args: []string{"settag", "3", "--tag", "fs", "--value", "20"},
			want: []string{"Hello World", `{\i1}one\Ntwo`, `{\fs20}last`},
		},
		{
			name: "strip",
			args: []string{"strip"},
			want: []string{"Hello World", `one\Ntwo`, "last"},
		},
		{
			name: "split",
			args: []string{"split", "2"},
			want: []string{"Hello World", `{\i1}one`, "two", "last"},
		},
		{
			name: "merge",
			args: []string{"merge", "2", "3"},
			want: []string{"Hello World", `{\i1}one\Ntwo\Nlast`},
		},
		{
			name: "duplicate",
			args: []string{"duplicate", "1"},
			want: []string{"Hello World", "Hello World", `{\i1}one\Ntwo`, "last"},
		},
		{
			name: "insert",
			args: []string{"insert", "1", "--before", "--text", "first"},
			want: []string{"first", "Hello World", `{\i1}one\Ntwo`, "last"},
		},
		{
			name: "delete",
			args: []string{"delete", "1", "3"},
			want: []string{`{\i1}one\Ntwo`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSample(t)
			args := append([]string{tt.args[0], path}, tt.args[1:]...)
			if _, err := run(t, args...); err != nil {
				t.Fatalf("%s failed: %v", tt.name, err)
			}
			sameTexts(t, tt.want, readTexts(t, path))
		})
	}
}

func TestOutputFlagLeavesInputAlone(t *testing.T) {
	path := writeSample(t)
	outPath := filepath.Join(t.TempDir(), "out.ass")

	if _, err := run(t, "delete", path, "1", "-o", outPath); err != nil {
		t.Fatal(err)
	}
	if got := readTexts(t, path); len(got) != 3 {
		t.Errorf("expected input to keep 3 events, got %d", len(got))
	}
	if got := readTexts(t, outPath); len(got) != 2 {
		t.Errorf("expected output to have 2 events, got %d", len(got))
	}
}

func TestRowOutOfRange(t *testing.T) {
	path := writeSample(t)
	if _, err := run(t, "split", path, "9"); err == nil {
		t.Error("expected an error for a missing row")
	}
	if _, err := run(t, "split", path, "x"); err == nil {
		t.Error("expected an error for a non-numeric row")
	}
}

func TestCopyPaste(t *testing.T) {
	mem := &clipboard.Memory{}
	board = mem
	defer func() { board = clipboard.System{} }()

	path := writeSample(t)
	if _, err := run(t, "copy", path, "1"); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if !clipboard.Equals(mem, "Dialogue: 0,0:00:01.00,0:00:03.00,Default,Alice,0,0,0,,Hello World") {
		text, _ := mem.ReadAll()
		t.Fatalf("unexpected clipboard %q", text)
	}

	if _, err := run(t, "paste", path, "--after", "2"); err != nil {
		t.Fatalf("paste failed: %v", err)
	}
	sameTexts(t, []string{"Hello World", `{\i1}one\Ntwo`, "Hello World", "last"}, readTexts(t, path))

	_ = mem.WriteAll("new text")
	if _, err := run(t, "paste", path, "--after", "4", "--over", "--fields", "text"); err != nil {
		t.Fatalf("paste --over failed: %v", err)
	}
	sameTexts(t, []string{"Hello World", `{\i1}one\Ntwo`, "Hello World", "new text"}, readTexts(t, path))
}

func TestTranslateValidation(t *testing.T) {
	path := writeSample(t)
	t.Setenv("GEMINI_API_KEY", "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no target", []string{"translate", path}, "target language is required"},
		{"same language", []string{"translate", path, "-t", "French", "-l", "french", "-k", "x"}, "cannot be the same"},
		{"no key", []string{"translate", path, "-t", "French"}, "GEMINI_API_KEY"},
		{"bad provider", []string{"translate", path, "-t", "French", "--provider", "acme", "-k", "x"}, "unsupported translation provider"},
		{"bad model", []string{"translate", path, "-t", "French", "-k", "x", "--model", "gpt-1"}, "--model-override"},
		{"bad batch", []string{"translate", path, "-t", "French", "-k", "x", "--batch-size", "0"}, "batch-size must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestIsValidModel(t *testing.T) {
	if !isValidModel("gemini", "gemini-2.5-flash") {
		t.Error("expected gemini-2.5-flash to be valid")
	}
	if isValidModel("openai", "gemini-2.5-flash") {
		t.Error("expected models to be checked per provider")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subedit.yaml")
	resetCommand(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "init", "--config", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}
}

func TestExportCommand(t *testing.T) {
	path := writeSample(t)
	dir := t.TempDir()

	srtPath := filepath.Join(dir, "out.srt")
	if _, err := run(t, "export", path, srtPath); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(srtPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "2\n00:00:04,000 --> 00:00:08,000\n<i>one\ntwo</i>\n\n"
	if !strings.Contains(string(data), want) {
		t.Errorf("expected %q in:\n%s", want, data)
	}

	txtPath := filepath.Join(dir, "out.txt")
	if _, err := run(t, "export", path, txtPath, "--no-actors"); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err = os.ReadFile(txtPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Exported by subedit\nHello World\none two\nlast\n" {
		t.Errorf("unexpected text export %q", data)
	}

	if _, err := run(t, "export", path, filepath.Join(dir, "out.mkv")); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestEditSRTInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.srt")
	srt := "1\n00:00:01,000 --> 00:00:02,000\nfirst\n\n2\n00:00:03,000 --> 00:00:04,000\nsecond\n"
	if err := os.WriteFile(path, []byte(srt), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "delete", path, "1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "1\n00:00:03,000 --> 00:00:04,000\nsecond\n\n" {
		t.Errorf("unexpected SRT after delete %q", data)
	}
}

func TestWrapCommand(t *testing.T) {
	path := writeSample(t)
	if _, err := run(t, "wrap", path, "1", "--max", "6"); err != nil {
		t.Fatalf("wrap failed: %v", err)
	}
	sameTexts(t, []string{`Hello\NWorld`, `{\i1}one\Ntwo`, "last"}, readTexts(t, path))

	if _, err := run(t, "wrap", path, "--max", "0"); err == nil {
		t.Error("expected an error for --max 0")
	}
}

func TestKaraokeCommand(t *testing.T) {
	text := strings.Replace(testASS, ",,Hello World", `,,{\k50}Hel{\k50}lo`, 1)
	text = strings.Replace(text, `,,{\i1}one\Ntwo`, ",,two words", 1)
	path := filepath.Join(t.TempDir(), "song.ass")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "karaoke", path, "--fit"); err != nil {
		t.Fatalf("karaoke --fit failed: %v", err)
	}
	sameTexts(t, []string{`{\k50}Hel{\k150}lo`, "two words", "last"}, readTexts(t, path))

	if _, err := run(t, "karaoke", path, "2", "--auto-split", "--fit", "--type", "kf"); err != nil {
		t.Fatalf("karaoke --auto-split failed: %v", err)
	}
	sameTexts(t, []string{`{\k50}Hel{\k150}lo`, `{\kf0}two {\kf400}words`, "last"}, readTexts(t, path))

	if _, err := run(t, "karaoke", path, "--type", "kt"); err == nil {
		t.Error("expected an error for a non-syllable tag")
	}
	if _, err := run(t, "karaoke", path); err == nil {
		t.Error("expected an error with no action flags")
	}
}
