package convert

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/subedit/internal/document"
	"github.com/mgpai22/subedit/internal/subtitle"
)

var srtTimestampRegex = regexp.MustCompile(
	`^(\d{1,2}):(\d{1,2}):(\d{1,2}),(\d+)\s*-->\s*(\d{1,2}):(\d{1,2}):(\d{1,2}),(\d+)`,
)

type srtState int

const (
	srtInitial srtState = iota
	srtTimestamp
	srtFirstBody
	srtBody
	srtAfterBlank
)

// ReadSRT parses a SubRip file. Body lines are joined with \N and the
// HTML-style b, i, u, s and font tags become override tags. Blank lines
// inside a cue are kept as extra line breaks when more text follows.
func ReadSRT(r io.Reader, opts ...document.Option) (*document.Document, error) {
	lr := newLineReader(r)

	var batch []*subtitle.Event
	var current *subtitle.Event
	var text strings.Builder
	state := srtInitial
	debt := 0

	finish := func() {
		if current != nil {
			current.Text = srtToAss(strings.TrimSpace(text.String()))
			text.Reset()
		}
	}

	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		line = strings.TrimSpace(line)

		var stamp []string
		switch state {
		case srtInitial:
			if line == "" {
				continue
			}
			if isIndex(line) {
				state = srtTimestamp
				continue
			}
			if stamp = srtTimestampRegex.FindStringSubmatch(line); stamp == nil {
				return nil, malformed(lr.n, "expected subtitle index")
			}
		case srtTimestamp:
			if stamp = srtTimestampRegex.FindStringSubmatch(line); stamp == nil {
				return nil, malformed(lr.n, "expected timestamps")
			}
		case srtFirstBody:
			if line == "" {
				state = srtAfterBlank
				debt = 0
				continue
			}
			text.WriteString(line)
			state = srtBody
			continue
		case srtBody:
			if line == "" {
				state = srtAfterBlank
				debt = 1
				continue
			}
			text.WriteString(`\N`)
			text.WriteString(line)
			continue
		case srtAfterBlank:
			debt++
			if line == "" {
				continue
			}
			if isIndex(line) {
				state = srtTimestamp
				continue
			}
			if stamp = srtTimestampRegex.FindStringSubmatch(line); stamp == nil {
				for ; debt > 0; debt-- {
					text.WriteString(`\N`)
				}
				text.WriteString(line)
				state = srtBody
				continue
			}
		}

		finish()
		start, err := srtTime(stamp[1:5])
		if err != nil {
			return nil, malformed(lr.n, err.Error())
		}
		end, err := srtTime(stamp[5:9])
		if err != nil {
			return nil, malformed(lr.n, err.Error())
		}
		current = subtitle.NewEvent(len(batch))
		current.Start = start
		current.End = end
		batch = append(batch, current)
		state = srtFirstBody
	}

	if err := lr.err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}
	if state == srtTimestamp || state == srtFirstBody {
		return nil, fmt.Errorf("%w: unexpected end of SRT file", subtitle.ErrMalformed)
	}
	finish()

	return build(batch, opts)
}

func isIndex(line string) bool {
	_, err := strconv.Atoi(line)
	return err == nil
}

// srtTime reads hours, minutes, seconds and a fraction of any length.
func srtTime(parts []string) (subtitle.Time, error) {
	var v [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", strings.Join(parts, ":"))
		}
		v[i] = n
	}
	frac := parts[3]
	if len(frac) > 3 {
		frac = frac[:3]
	}
	for len(frac) < 3 {
		frac += "0"
	}
	ms, err := strconv.Atoi(frac)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", strings.Join(parts, ":"))
	}

	return subtitle.FromDuration(time.Duration(v[0])*time.Hour +
		time.Duration(v[1])*time.Minute +
		time.Duration(v[2])*time.Second +
		time.Duration(ms)*time.Millisecond), nil
}

// WriteSRT writes the dialogue events of d as SubRip cues. Comments are
// skipped.
func WriteSRT(w io.Writer, d *document.Document) error {
	n := 0
	for _, e := range d.Events().Ordered() {
		if e.Comment {
			continue
		}
		n++
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			n,
			formatSRTTime(e.Start.Duration()),
			formatSRTTime(e.End.Duration()),
			assToHTML(e.Text, srtMarkup),
		); err != nil {
			return err
		}
	}
	return nil
}

func formatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
