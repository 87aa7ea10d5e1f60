package convert

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mgpai22/subedit/internal/document"
	"github.com/mgpai22/subedit/internal/subtitle"
)

const (
	txtCommentDelim = "#"
	txtActorDelim   = ":"
	txtHeader       = "# Exported by subedit"
)

var txtNewlineRegex = regexp.MustCompile(`\ *\\[Nn]\ *`)

// ReadTXT parses a plain text script: one event per non-blank line, lines
// starting with # become comments and a "Name:" prefix sets the actor.
// Every event is zero length.
func ReadTXT(r io.Reader, opts ...document.Option) (*document.Document, error) {
	lr := newLineReader(r)
	var batch []*subtitle.Event

	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		data := strings.TrimLeft(line, " \t")
		if data == "" || strings.HasPrefix(data, txtHeader) {
			continue
		}

		e := subtitle.NewEvent(len(batch))
		e.End = 0
		if strings.HasPrefix(data, txtCommentDelim) {
			e.Comment = true
			data = strings.TrimSpace(data[len(txtCommentDelim):])
		} else if i := strings.Index(data, txtActorDelim); i >= 0 {
			e.Actor = strings.TrimRight(data[:i], " \t")
			data = strings.TrimLeft(data[i+len(txtActorDelim):], " \t")
		}
		e.Text = data
		batch = append(batch, e)
	}

	if err := lr.err(); err != nil {
		return nil, fmt.Errorf("error reading text file: %w", err)
	}
	return build(batch, opts)
}

type TXTOptions struct {
	Comments bool
	Actors   bool
}

// WriteTXT writes the stripped text of each event on its own line.
func WriteTXT(w io.Writer, d *document.Document, opts TXTOptions) error {
	if _, err := fmt.Fprintln(w, txtHeader); err != nil {
		return err
	}

	hasActors := len(d.Events().Actors()) > 0
	for _, e := range d.Events().Ordered() {
		if e.Comment && !opts.Comments {
			continue
		}
		var sb strings.Builder
		if e.Comment {
			sb.WriteString(txtCommentDelim + " ")
		}
		if hasActors && opts.Actors && e.Actor != "" {
			sb.WriteString(e.Actor + txtActorDelim + " ")
		}
		sb.WriteString(StripNewlines(e.StrippedText()))
		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// StripNewlines replaces each line break, together with any spaces around
// it, by a single space.
func StripNewlines(text string) string {
	return txtNewlineRegex.ReplaceAllString(text, " ")
}
