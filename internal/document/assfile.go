package document

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subedit/internal/subtitle"
)

const eventFormatLine = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"

var eventColumns = []string{"layer", "start", "end", "style", "name", "marginl", "marginr", "marginv", "effect", "text"}

type parseState int

const (
	stateUnknown parseState = iota
	stateScriptInfo
	stateGarbage
	stateStyles
	stateEvents
	stateExtradata
)

func sectionState(name string) (parseState, bool) {
	switch strings.ToUpper(name) {
	case "SCRIPT INFO":
		return stateScriptInfo, true
	case "AEGISUB PROJECT GARBAGE":
		return stateGarbage, true
	case "V4 STYLES", "V4+ STYLES", "V4++ STYLES":
		return stateStyles, true
	case "EVENTS":
		return stateEvents, true
	case "AEGISUB EXTRADATA":
		return stateExtradata, true
	}
	return stateUnknown, false
}

// Open reads an ASS file into a new document.
func Open(path string, opts ...Option) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ASS file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	d, err := Read(file, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return d, nil
}

// Read parses ASS content. Sections it does not understand are kept and
// written back unchanged. A document without styles gets Default, and one
// without events gets a single default event.
func Read(r io.Reader, opts ...Option) (*Document, error) {
	d := New(opts...)
	d.styles.reset()

	var (
		batch   []*subtitle.Event
		columns []int
		state   = stateUnknown
		current = -1
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			name := trimmed[1 : len(trimmed)-1]
			var known bool
			state, known = sectionState(name)
			current = -1
			if !known {
				d.unknown = append(d.unknown, section{header: trimmed})
				current = len(d.unknown) - 1
			}
			continue
		}

		switch state {
		case stateScriptInfo:
			d.info.parseLine(trimmed)

		case stateGarbage:
			d.garbage.parseLine(trimmed)

		case stateStyles:
			if !subtitle.IsStyleLine(trimmed) {
				continue
			}
			st, err := subtitle.StyleFromAss(d.styles.NextID(), trimmed)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			d.styles.AddOrReplace(st)

		case stateEvents:
			if strings.HasPrefix(trimmed, "Format:") {
				columns = mapColumns(strings.TrimPrefix(trimmed, "Format:"))
				continue
			}
			if !subtitle.IsEventLine(trimmed) {
				continue
			}
			raw := strings.TrimLeft(line, " \t")
			if columns != nil {
				raw = reorderEvent(raw, columns)
			}
			e, err := subtitle.EventFromAss(len(batch), raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			batch = append(batch, e)

		case stateExtradata:
			if err := d.extradata.parseLine(trimmed); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}

		default:
			if current >= 0 {
				d.unknown[current].lines = append(d.unknown[current].lines, line)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS file: %w", err)
	}

	if d.styles.Len() == 0 {
		d.styles.LoadDefault()
	}
	if err := d.events.Reset(batch); err != nil {
		return nil, err
	}
	d.history.Clear()

	d.log.Debugw("read document",
		"events", d.events.Len(),
		"styles", d.styles.Len(),
		"extradata", d.extradata.Len(),
		"unknown_sections", len(d.unknown),
	)
	return d, nil
}

// mapColumns returns, for each column of a Format line, its position in
// the standard event layout, or -1. A standard Format line maps to nil.
func mapColumns(format string) []int {
	names := strings.Split(format, ",")
	out := make([]int, len(names))
	standard := len(names) == len(eventColumns)
	for i, name := range names {
		out[i] = -1
		name = strings.ToLower(strings.TrimSpace(name))
		for j, col := range eventColumns {
			if col == name {
				out[i] = j
				break
			}
		}
		if out[i] != i {
			standard = false
		}
	}
	if standard {
		return nil
	}
	return out
}

// reorderEvent rewrites an event line laid out per columns into the
// standard layout. Missing columns are left empty or zero.
func reorderEvent(line string, columns []int) string {
	prefix, content, _ := strings.Cut(line, ":")
	fields := subtitle.SplitFields(strings.TrimSpace(content), len(columns))

	out := []string{"0", "0:00:00.00", "0:00:05.00", subtitle.DefaultStyle, "", "0", "0", "0", "", ""}
	for i, f := range fields {
		if j := columns[i]; j >= 0 {
			out[j] = f
		}
	}
	return prefix + ": " + strings.Join(out, ",")
}

// Write saves the document as an ASS file, creating parent directories.
func (d *Document) Write(path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create ASS file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := d.WriteTo(file); err != nil {
		return fmt.Errorf("failed to write ASS file: %w", err)
	}
	return nil
}

// WriteTo writes the document in ASS form.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	writer := bufio.NewWriter(cw)

	var lines []string
	add := func(header string, body []string) {
		lines = append(lines, header)
		lines = append(lines, body...)
		lines = append(lines, "")
	}

	add("[Script Info]", d.info.lines())
	if d.garbage.Len() > 0 {
		add("[Aegisub Project Garbage]", d.garbage.lines())
	}

	styles := []string{subtitle.StyleFormatLine}
	for _, st := range d.styles.All() {
		styles = append(styles, st.AsAss())
	}
	add("[V4+ Styles]", styles)

	evs := []string{eventFormatLine}
	for _, e := range d.events.Ordered() {
		evs = append(evs, e.AsAss())
	}
	add("[Events]", evs)

	if d.extradata.Len() > 0 {
		add("[Aegisub Extradata]", d.extradata.lines())
	}
	for _, s := range d.unknown {
		add(s.header, s.lines)
	}

	for _, line := range lines {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			return cw.n, err
		}
	}
	err := writer.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
