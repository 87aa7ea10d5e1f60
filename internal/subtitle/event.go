// Package subtitle holds the value types of a subtitle document: events,
// styles, margins and timestamps, together with their single-line ASS
// codec.
package subtitle

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mgpai22/subedit/internal/tags"
)

// ErrMalformed is returned when a serialized line cannot be decoded.
var ErrMalformed = errors.New("malformed line")

const (
	dialoguePrefix = "Dialogue:"
	commentPrefix  = "Comment:"

	DefaultStyle  = "Default"
	DefaultLength = 5 * time.Second

	eventFieldCount = 10
)

var (
	extradataRegex = regexp.MustCompile(`^\{(?:=\d+)+\}`)
	spacingRegex   = regexp.MustCompile(`\\[Nnh]`)
)

// Margins of an event or style, in script pixels.
type Margins struct {
	Left     int
	Right    int
	Vertical int
}

// Event is one dialogue or comment line. Identity is the ID; Index is a
// derived 1-based row number stamped by the owning store.
type Event struct {
	ID      int
	Comment bool
	Layer   int
	Start   Time
	End     Time
	Style   string
	Actor   string
	Margins Margins
	Effect  string
	Text    string

	Index           int
	LinkedExtradata []int

	observers []func(Field)
}

// NewEvent returns an event with editor defaults.
func NewEvent(id int) *Event {
	return &Event{
		ID:    id,
		Start: 0,
		End:   Time(DefaultLength),
		Style: DefaultStyle,
	}
}

// Clone copies the event, keeping its ID. Observers are not copied.
func (e *Event) Clone() *Event {
	return e.CloneWithID(e.ID)
}

// CloneWithID copies every field of the event onto a new ID.
func (e *Event) CloneWithID(id int) *Event {
	c := *e
	c.ID = id
	c.observers = nil
	if e.LinkedExtradata != nil {
		c.LinkedExtradata = append([]int(nil), e.LinkedExtradata...)
	}
	return &c
}

// Congruent reports whether all fields except the ID match.
func (e *Event) Congruent(o *Event) bool {
	if o == nil {
		return false
	}
	return e.Diff(o) == FieldNone
}

// Equal is ID equality plus congruence.
func (e *Event) Equal(o *Event) bool {
	return o != nil && e.ID == o.ID && e.Congruent(o)
}

// Diff returns the set of fields that differ between e and o.
func (e *Event) Diff(o *Event) Field {
	var f Field
	if e.Comment != o.Comment {
		f |= FieldComment
	}
	if e.Layer != o.Layer {
		f |= FieldLayer
	}
	if e.Start != o.Start {
		f |= FieldStart
	}
	if e.End != o.End {
		f |= FieldEnd
	}
	if e.Style != o.Style {
		f |= FieldStyle
	}
	if e.Actor != o.Actor {
		f |= FieldActor
	}
	if e.Margins.Left != o.Margins.Left {
		f |= FieldMarginLeft
	}
	if e.Margins.Right != o.Margins.Right {
		f |= FieldMarginRight
	}
	if e.Margins.Vertical != o.Margins.Vertical {
		f |= FieldMarginVertical
	}
	if e.Effect != o.Effect {
		f |= FieldEffect
	}
	if e.Text != o.Text {
		f |= FieldText
	}
	return f
}

// SetFields copies the selected fields from o and notifies observers.
func (e *Event) SetFields(fields Field, o *Event) Field {
	return e.Update(func(e *Event) {
		if fields.Has(FieldComment) {
			e.Comment = o.Comment
		}
		if fields.Has(FieldLayer) {
			e.Layer = o.Layer
		}
		if fields.Has(FieldStart) {
			e.Start = o.Start
		}
		if fields.Has(FieldEnd) {
			e.End = o.End
		}
		if fields.Has(FieldStyle) {
			e.Style = o.Style
		}
		if fields.Has(FieldActor) {
			e.Actor = o.Actor
		}
		if fields.Has(FieldMarginLeft) {
			e.Margins.Left = o.Margins.Left
		}
		if fields.Has(FieldMarginRight) {
			e.Margins.Right = o.Margins.Right
		}
		if fields.Has(FieldMarginVertical) {
			e.Margins.Vertical = o.Margins.Vertical
		}
		if fields.Has(FieldEffect) {
			e.Effect = o.Effect
		}
		if fields.Has(FieldText) {
			e.Text = o.Text
		}
	})
}

// OnChange registers a handler called with the changed fields whenever the
// event is modified through Update or SetFields.
func (e *Event) OnChange(fn func(Field)) {
	e.observers = append(e.observers, fn)
}

// Update applies fn and notifies observers of the fields it changed.
func (e *Event) Update(fn func(*Event)) Field {
	before := e.Clone()
	fn(e)
	changed := before.Diff(e)
	if changed != FieldNone {
		for _, obs := range e.observers {
			obs(changed)
		}
	}
	return changed
}

// CollidesWith reports whether the two events overlap in time.
func (e *Event) CollidesWith(o *Event) bool {
	if e.Start < o.Start {
		return o.Start < e.End
	}
	return e.Start < o.End
}

// StrippedText is the text without override blocks, comments or drawings.
func (e *Event) StrippedText() string {
	return tags.Strip(e.Text)
}

// CPS is the reading speed in characters per second. Whitespace,
// punctuation and \N, \n, \h escapes are not counted.
func (e *Event) CPS() float64 {
	secs := e.End.Sub(e.Start).Seconds()
	if secs == 0 {
		return 0
	}
	n := countChars(spacingRegex.ReplaceAllString(e.StrippedText(), ""))
	if n == 0 {
		return 0
	}
	return math.Round(float64(n) / secs)
}

// MaxLineWidth is the character count of the longest rendered line.
func (e *Event) MaxLineWidth() int {
	stripped := strings.ReplaceAll(e.StrippedText(), `\n`, `\N`)
	widest := 0
	for _, line := range strings.Split(stripped, `\N`) {
		n := countChars(spacingRegex.ReplaceAllString(line, ""))
		if n > widest {
			widest = n
		}
	}
	return widest
}

func countChars(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		n++
	}
	return n
}

// AsAss renders the event as a Dialogue: or Comment: line.
func (e *Event) AsAss() string {
	var sb strings.Builder
	if e.Comment {
		sb.WriteString(commentPrefix)
	} else {
		sb.WriteString(dialoguePrefix)
	}
	sb.WriteByte(' ')
	fields := []string{
		strconv.Itoa(e.Layer),
		e.Start.AsAss(),
		e.End.AsAss(),
		e.Style,
		e.Actor,
		strconv.Itoa(e.Margins.Left),
		strconv.Itoa(e.Margins.Right),
		strconv.Itoa(e.Margins.Vertical),
		e.Effect,
	}
	sb.WriteString(strings.Join(fields, ","))
	sb.WriteByte(',')
	if len(e.LinkedExtradata) > 0 {
		sb.WriteByte('{')
		for _, id := range e.LinkedExtradata {
			sb.WriteByte('=')
			sb.WriteString(strconv.Itoa(id))
		}
		sb.WriteByte('}')
	}
	sb.WriteString(e.Text)
	return sb.String()
}

// IsEventLine reports whether line starts with Dialogue: or Comment:.
func IsEventLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t\ufeff")
	return strings.HasPrefix(trimmed, dialoguePrefix) ||
		strings.HasPrefix(trimmed, commentPrefix)
}

// EventFromAss decodes a Dialogue: or Comment: line into an event with the
// given ID. The text field is kept byte for byte.
func EventFromAss(id int, line string) (*Event, error) {
	data := strings.TrimLeft(line, " \t\ufeff")
	isComment := false
	switch {
	case strings.HasPrefix(data, commentPrefix):
		isComment = true
		data = data[len(commentPrefix):]
	case strings.HasPrefix(data, dialoguePrefix):
		data = data[len(dialoguePrefix):]
	default:
		return nil, fmt.Errorf("%w: not an event line", ErrMalformed)
	}
	data = strings.TrimLeft(data, " ")

	parts := SplitFields(data, eventFieldCount)
	if len(parts) < eventFieldCount {
		return nil, fmt.Errorf(
			"%w: expected %d fields, got %d",
			ErrMalformed,
			eventFieldCount,
			len(parts),
		)
	}

	e := &Event{ID: id, Comment: isComment}

	var err error
	if e.Layer, err = parseInt(parts[0]); err != nil {
		return nil, fmt.Errorf("layer: %w", err)
	}
	if e.Start, err = ParseTime(parts[1]); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	if e.End, err = ParseTime(parts[2]); err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	e.Style = strings.TrimSpace(parts[3])
	e.Actor = parts[4]
	if e.Margins.Left, err = parseInt(parts[5]); err != nil {
		return nil, fmt.Errorf("margin left: %w", err)
	}
	if e.Margins.Right, err = parseInt(parts[6]); err != nil {
		return nil, fmt.Errorf("margin right: %w", err)
	}
	if e.Margins.Vertical, err = parseInt(parts[7]); err != nil {
		return nil, fmt.Errorf("margin vertical: %w", err)
	}
	e.Effect = parts[8]

	text := parts[9]
	if m := extradataRegex.FindString(text); m != "" {
		e.LinkedExtradata = parseExtradataIDs(m)
		text = text[len(m):]
	}
	e.Text = text

	return e, nil
}

// SplitFields splits content on commas into at most numFields parts; the
// last part keeps any remaining commas.
func SplitFields(content string, numFields int) []string {
	if numFields <= 0 {
		return nil
	}

	parts := make([]string, 0, numFields)
	remaining := content

	for i := 0; i < numFields-1; i++ {
		idx := strings.Index(remaining, ",")
		if idx == -1 {
			parts = append(parts, remaining)
			return parts
		}
		parts = append(parts, remaining[:idx])
		remaining = remaining[idx+1:]
	}

	return append(parts, remaining)
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid integer %q", ErrMalformed, s)
	}
	return v, nil
}

// {=12=40} -> [12 40]
func parseExtradataIDs(m string) []int {
	inner := strings.TrimSuffix(strings.TrimPrefix(m, "{="), "}")
	var ids []int
	for _, raw := range strings.Split(inner, "=") {
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
