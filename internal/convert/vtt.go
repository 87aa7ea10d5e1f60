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

var (
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2,}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttVoiceRegex = regexp.MustCompile(`^<v(?:\.[^ >]*)?\s+([^>]+)>`)
	vttSpanRegex  = regexp.MustCompile(`</?(?:v|c|lang|ruby|rt)(?:[.\s][^>]*)?>`)
)

// ReadVTT parses a WebVTT file. NOTE and STYLE blocks are skipped, a
// leading voice span sets the actor and b, i and u spans become override
// tags.
func ReadVTT(r io.Reader, opts ...document.Option) (*document.Document, error) {
	lr := newLineReader(r)

	var batch []*subtitle.Event
	var current *subtitle.Event
	var textLines []string
	headerParsed := false
	skipping := false

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Actor, current.Text = vttText(textLines)
			batch = append(batch, current)
		}
		current = nil
		textLines = nil
	}

	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(line)

		if skipping {
			if trimmed == "" {
				skipping = false
			}
			continue
		}

		if !headerParsed && strings.HasPrefix(trimmed, "WEBVTT") {
			headerParsed = true
			continue
		}

		if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") {
			skipping = true
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		var parts []string
		if m := vttTimestampRegex.FindStringSubmatch(line); m != nil {
			parts = m[1:]
		} else if m := vttShortTimestampRegex.FindStringSubmatch(line); m != nil {
			parts = []string{"00", m[1], m[2], m[3], "00", m[4], m[5], m[6]}
		}
		if parts != nil {
			flush()
			start, err := parseVTTTimestamp(parts[0], parts[1], parts[2], parts[3])
			if err != nil {
				return nil, malformed(lr.n, "invalid start timestamp")
			}
			end, err := parseVTTTimestamp(parts[4], parts[5], parts[6], parts[7])
			if err != nil {
				return nil, malformed(lr.n, "invalid end timestamp")
			}
			current = subtitle.NewEvent(len(batch))
			current.Start = subtitle.FromDuration(start)
			current.End = subtitle.FromDuration(end)
			continue
		}

		if current != nil {
			textLines = append(textLines, trimmed)
		}
	}
	flush()

	if err := lr.err(); err != nil {
		return nil, fmt.Errorf("error reading VTT file: %w", err)
	}

	return build(batch, opts)
}

func vttText(lines []string) (actor, text string) {
	joined := strings.Join(lines, `\N`)
	if m := vttVoiceRegex.FindStringSubmatch(joined); m != nil {
		actor = strings.TrimSpace(m[1])
		joined = joined[len(m[0]):]
	}
	joined = vttSpanRegex.ReplaceAllString(joined, "")
	return actor, unescapeVTT(srtToAss(joined))
}

func unescapeVTT(s string) string {
	return strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&nbsp;", `\h`,
		"&amp;", "&",
	).Replace(s)
}

func parseVTTTimestamp(
	hours, minutes, seconds, millis string,
) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// WriteVTT writes the dialogue events of d as WebVTT cues. The actor, if
// any, is written as a voice span.
func WriteVTT(w io.Writer, d *document.Document) error {
	if _, err := fmt.Fprint(w, "WEBVTT\n\n"); err != nil {
		return err
	}

	for _, e := range d.Events().Ordered() {
		if e.Comment {
			continue
		}
		text := assToHTML(e.Text, vttMarkup)
		if e.Actor != "" {
			text = "<v " + e.Actor + ">" + text
		}
		if _, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n",
			formatVTTTime(e.Start.Duration()),
			formatVTTTime(e.End.Duration()),
			text,
		); err != nil {
			return err
		}
	}
	return nil
}

func formatVTTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}
