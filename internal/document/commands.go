package document

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mgpai22/subedit/internal/events"
	"github.com/mgpai22/subedit/internal/history"
	"github.com/mgpai22/subedit/internal/karaoke"
	"github.com/mgpai22/subedit/internal/subtitle"
	"github.com/mgpai22/subedit/internal/tags"
)

var (
	// ErrNotAdjacent is returned by Merge for events that are not
	// neighbours.
	ErrNotAdjacent = errors.New("events are not adjacent")
	// ErrSplitTime is returned by SplitAt when both keepTimes and a split
	// time are given.
	ErrSplitTime = errors.New("cannot keep times and split at a time")
)

// gap used when placing inserted events
const insertGap = 5 * time.Second

var lineBreakRegex = regexp.MustCompile(`\\[Nn]`)

// Translator turns a batch of texts into their translations, in order.
type Translator interface {
	TranslateTexts(ctx context.Context, texts []string) ([]string, error)
}

// InsertBefore adds an empty event ending where id starts. It starts where
// the previous event ends when that is less than five seconds earlier.
func (d *Document) InsertBefore(id int) (*subtitle.Event, error) {
	target, err := d.events.Get(id)
	if err != nil {
		return nil, err
	}

	e := subtitle.NewEvent(d.events.NextID())
	e.Style = target.Style
	e.End = target.Start
	e.Start = target.Start.Add(-insertGap)
	if before, ok := d.events.GetBefore(id); ok && target.Start.Sub(before.End).Duration() < insertGap {
		e.Start = before.End
	}

	t := d.begin()
	if err := t.addBefore(id, e); err != nil {
		return nil, err
	}
	if err := t.commit("insert before", history.ChangeInsert); err != nil {
		return nil, err
	}
	return e, nil
}

// InsertAfter adds an empty event starting where id ends. It ends where
// the next event starts when that is less than five seconds later.
func (d *Document) InsertAfter(id int) (*subtitle.Event, error) {
	target, err := d.events.Get(id)
	if err != nil {
		return nil, err
	}

	e := subtitle.NewEvent(d.events.NextID())
	e.Style = target.Style
	e.Start = target.End
	e.End = target.End.Add(insertGap)
	if after, ok := d.events.GetAfter(id); ok && after.Start.Sub(target.End).Duration() < insertGap {
		e.End = after.Start
	}

	t := d.begin()
	if err := t.addAfter(id, e); err != nil {
		return nil, err
	}
	if err := t.commit("insert after", history.ChangeInsert); err != nil {
		return nil, err
	}
	return e, nil
}

// Duplicate places a copy of each event directly after it.
func (d *Document) Duplicate(ids ...int) ([]*subtitle.Event, error) {
	if err := d.requireAll(ids); err != nil {
		return nil, err
	}

	t := d.begin()
	out := make([]*subtitle.Event, 0, len(ids))
	for _, id := range ids {
		src, _ := d.events.Get(id)
		dup := src.CloneWithID(d.events.NextID())
		if err := t.addAfter(id, dup); err != nil {
			t.rollback()
			return nil, err
		}
		out = append(out, dup)
	}
	if err := t.commit("duplicate", history.ChangeInsert); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the events. A store left empty gets a default event,
// recorded in the same undo step.
func (d *Document) Delete(ids ...int) error {
	if err := d.requireAll(ids); err != nil {
		return err
	}

	t := d.begin()
	for _, id := range ids {
		if !d.events.Has(id) {
			continue
		}
		if err := t.remove(id); err != nil {
			t.rollback()
			return err
		}
	}
	return t.commit("delete", history.ChangeRemove)
}

// Split breaks an event at every line break into consecutive events. The
// time range is shared out by text length unless keepTimes is set. Text
// without a line break is left alone and nil is returned.
func (d *Document) Split(id int, keepTimes bool) ([]*subtitle.Event, error) {
	e, err := d.events.Get(id)
	if err != nil {
		return nil, err
	}
	segments := lineBreakRegex.Split(e.Text, -1)
	if e.Text == "" || len(segments) < 2 {
		return nil, nil
	}
	return d.splitInto(e, segments, keepTimes, "split")
}

// SplitAt breaks an event in two at the byte offset index of its text. The
// second half starts at splitTime when given, clamped to the event's
// range; otherwise times are shared out by text length unless keepTimes.
func (d *Document) SplitAt(id, index int, keepTimes bool, splitTime *subtitle.Time) ([]*subtitle.Event, error) {
	if keepTimes && splitTime != nil {
		return nil, ErrSplitTime
	}
	e, err := d.events.Get(id)
	if err != nil {
		return nil, err
	}
	index = tags.RuneStart(e.Text, index)
	segments := []string{e.Text[:index], e.Text[index:]}

	if splitTime == nil {
		return d.splitInto(e, segments, keepTimes, "split at")
	}

	at := *splitTime
	if at < e.Start {
		at = e.Start
	}
	if at > e.End {
		at = e.End
	}
	first := e.CloneWithID(d.events.NextID())
	first.Text = segments[0]
	first.End = at
	second := e.CloneWithID(d.events.NextID())
	second.Text = segments[1]
	second.Start = at
	return d.replaceWith(e, []*subtitle.Event{first, second}, "split at")
}

func (d *Document) splitInto(e *subtitle.Event, segments []string, keepTimes bool, msg string) ([]*subtitle.Event, error) {
	total := 0
	for _, s := range segments {
		total += utf8.RuneCountInString(s)
	}
	length := e.End.Sub(e.Start).Duration()

	parts := make([]*subtitle.Event, len(segments))
	rolling := e.Start
	for i, seg := range segments {
		p := e.CloneWithID(d.events.NextID())
		p.Text = seg
		if !keepTimes {
			ratio := 1 / float64(len(segments))
			if total > 0 {
				ratio = float64(utf8.RuneCountInString(seg)) / float64(total)
			}
			p.Start = rolling
			p.End = rolling.Add(time.Duration(float64(length) * ratio))
			if p.End > e.End || i == len(segments)-1 {
				p.End = e.End
			}
			rolling = p.End
		}
		parts[i] = p
	}
	return d.replaceWith(e, parts, msg)
}

// replaceWith inserts parts after e, in order, then removes e.
func (d *Document) replaceWith(e *subtitle.Event, parts []*subtitle.Event, msg string) ([]*subtitle.Event, error) {
	t := d.begin()
	prev := e.ID
	for _, p := range parts {
		if err := t.addAfter(prev, p); err != nil {
			t.rollback()
			return nil, err
		}
		prev = p.ID
	}
	if err := t.remove(e.ID); err != nil {
		t.rollback()
		return nil, err
	}
	if err := t.commit(msg, history.ChangeStructure); err != nil {
		return nil, err
	}
	return parts, nil
}

// Merge joins two neighbouring events into one spanning both, joining the
// texts with a line break. The result takes the fields of the earlier one.
func (d *Document) Merge(a, b int) (*subtitle.Event, error) {
	ea, err := d.events.Get(a)
	if err != nil {
		return nil, err
	}
	eb, err := d.events.Get(b)
	if err != nil {
		return nil, err
	}

	nl := `\N`
	if d.softBreaks {
		nl = `\n`
	}

	first, second := ea, eb
	if next, ok := d.events.GetAfter(a); !ok || next.ID != b {
		if prev, ok := d.events.GetBefore(a); !ok || prev.ID != b {
			return nil, fmt.Errorf("%w: %d and %d", ErrNotAdjacent, a, b)
		}
		first, second = eb, ea
	}

	merged := first.CloneWithID(d.events.NextID())
	merged.Start = first.Start
	merged.End = second.End
	merged.Text = first.Text + nl + second.Text

	t := d.begin()
	if err := t.addAfter(second.ID, merged); err != nil {
		return nil, err
	}
	for _, id := range []int{first.ID, second.ID} {
		if err := t.remove(id); err != nil {
			t.rollback()
			return nil, err
		}
	}
	if err := t.commit("merge", history.ChangeStructure); err != nil {
		return nil, err
	}
	return merged, nil
}

// ToggleTag flips a b, i, u or s tag over the raw selection of an event's
// text. The state outside any tag comes from the event's style. It returns
// the shift at selStart.
func (d *Document) ToggleTag(id int, name string, selStart, selEnd int) (int, error) {
	e, err := d.events.Get(id)
	if err != nil {
		return 0, err
	}
	style, _ := d.styles.TryGet(e.Style)

	ed := tags.NewEditor(e.Text)
	shift := ed.ToggleTag(name, style.Flag(name), selStart, selEnd)
	return shift, d.editText(e, ed.Text(), "toggle "+name)
}

// SetTag writes tag at the given position of an event's text and returns
// the change in length.
func (d *Document) SetTag(id int, tag *tags.Tag, normPos, rawPos int) (int, error) {
	e, err := d.events.Get(id)
	if err != nil {
		return 0, err
	}
	ed := tags.NewEditor(e.Text)
	shift := ed.SetTag(tag, normPos, rawPos)
	return shift, d.editText(e, ed.Text(), "set "+tag.Name)
}

// RemoveTag deletes the tag governing normPos and returns the change in
// length.
func (d *Document) RemoveTag(id int, name string, normPos int) (int, error) {
	e, err := d.events.Get(id)
	if err != nil {
		return 0, err
	}
	ed := tags.NewEditor(e.Text)
	shift := ed.RemoveTag(name, normPos)
	return shift, d.editText(e, ed.Text(), "remove "+name)
}

// StripTags removes override blocks, comments and drawings from the
// events, keeping only their plain text.
func (d *Document) StripTags(ids ...int) error {
	_, err := d.MapText("strip tags", tags.Strip, ids...)
	return err
}

// MapText replaces the text of each event with fn applied to it, in one
// undo step, and returns how many events changed.
func (d *Document) MapText(msg string, fn func(string) string, ids ...int) (int, error) {
	if err := d.requireAll(ids); err != nil {
		return 0, err
	}
	t := d.begin()
	n := 0
	for _, id := range ids {
		e, _ := d.events.Get(id)
		text := fn(e.Text)
		if t.edit(e, func(e *subtitle.Event) { e.Text = text }) != subtitle.FieldNone {
			n++
		}
	}
	return n, t.commit(msg, history.ChangeModifyText)
}

// MapKaraoke parses the karaoke syllables of each event, hands them to fn
// and writes the result back as one undo step. Events without syllable
// tags are skipped unless autoSplit is set. It returns the number of
// events whose text changed.
func (d *Document) MapKaraoke(msg string, autoSplit bool, fn func(*subtitle.Event, *karaoke.Line) error, ids ...int) (int, error) {
	if err := d.requireAll(ids); err != nil {
		return 0, err
	}
	t := d.begin()
	n := 0
	for _, id := range ids {
		e, _ := d.events.Get(id)
		if !autoSplit && !karaoke.Has(e.Text) {
			continue
		}
		l := karaoke.New(e, autoSplit, false)
		if err := fn(e, l); err != nil {
			t.rollback()
			return 0, fmt.Errorf("event %d: %w", id, err)
		}
		text := l.Text()
		if t.edit(e, func(e *subtitle.Event) { e.Text = text }) != subtitle.FieldNone {
			n++
		}
	}
	return n, t.commit(msg, history.ChangeModifyText)
}

// FitKaraoke stretches or trims the syllables of each event so they span
// exactly the event's start and end times.
func (d *Document) FitKaraoke(ids ...int) (int, error) {
	return d.MapKaraoke("fit karaoke", false, func(e *subtitle.Event, l *karaoke.Line) error {
		l.SetLineTimes(e.Start, e.End)
		return nil
	}, ids...)
}

// EditText replaces an event's text. Rapid edits fold into one undo step.
func (d *Document) EditText(id int, text string) error {
	e, err := d.events.Get(id)
	if err != nil {
		return err
	}
	return d.editText(e, text, "edit text")
}

func (d *Document) editText(e *subtitle.Event, text, msg string) error {
	t := d.begin()
	t.edit(e, func(e *subtitle.Event) { e.Text = text })
	return t.commit(msg, history.ChangeModifyText)
}

// EditFields applies fn to an event and records it under ct.
func (d *Document) EditFields(id int, fn func(*subtitle.Event), ct history.ChangeType) error {
	e, err := d.events.Get(id)
	if err != nil {
		return err
	}
	t := d.begin()
	t.edit(e, fn)
	return t.commit("edit", ct)
}

// Propagate copies the selected fields of src onto every target.
func (d *Document) Propagate(src int, fields subtitle.Field, targets ...int) error {
	from, err := d.events.Get(src)
	if err != nil {
		return err
	}
	if err := d.requireAll(targets); err != nil {
		return err
	}

	t := d.begin()
	for _, id := range targets {
		e, _ := d.events.Get(id)
		t.setFields(e, fields, from)
	}
	return t.commit("propagate "+fields.String(), changeTypeOf(fields))
}

func changeTypeOf(fields subtitle.Field) history.ChangeType {
	switch {
	case fields == subtitle.FieldText:
		return history.ChangeModifyText
	case fields&^subtitle.FieldTime == 0:
		return history.ChangeModifyTime
	case fields&^subtitle.FieldMeta == 0:
		return history.ChangeModifyMeta
	}
	return history.ChangeFull
}

// ToggleComment flips the comment flag of each event.
func (d *Document) ToggleComment(ids ...int) error {
	if err := d.requireAll(ids); err != nil {
		return err
	}
	t := d.begin()
	for _, id := range ids {
		e, _ := d.events.Get(id)
		t.edit(e, func(e *subtitle.Event) { e.Comment = !e.Comment })
	}
	return t.commit("toggle comment", history.ChangeModifyMeta)
}

// Copy renders the events as Dialogue:/Comment: lines in document order.
func (d *Document) Copy(ids ...int) ([]string, error) {
	if err := d.requireAll(ids); err != nil {
		return nil, err
	}
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []string
	for _, e := range d.events.Ordered() {
		if want[e.ID] {
			out = append(out, e.AsAss())
		}
	}
	return out, nil
}

// Paste adds events built from lines after the event after. Dialogue and
// Comment lines are decoded; any other line becomes the text of a new
// event. Blank lines are skipped.
func (d *Document) Paste(after int, lines []string) ([]*subtitle.Event, error) {
	if !d.events.Has(after) {
		return nil, fmt.Errorf("%w: %d", events.ErrNotFound, after)
	}
	parsed, err := d.parseLines(lines)
	if err != nil {
		return nil, err
	}

	t := d.begin()
	prev := after
	for _, e := range parsed {
		if err := t.addAfter(prev, e); err != nil {
			t.rollback()
			return nil, err
		}
		prev = e.ID
	}
	if err := t.commit("paste", history.ChangeInsert); err != nil {
		return nil, err
	}
	return parsed, nil
}

// PasteOver copies the selected fields of the pasted lines onto id and the
// events following it. Lines left over once the document ends are added
// as new events.
func (d *Document) PasteOver(id int, lines []string, fields subtitle.Field) error {
	target, err := d.events.Get(id)
	if err != nil {
		return err
	}
	parsed, err := d.parseLines(lines)
	if err != nil {
		return err
	}

	t := d.begin()
	last := id
	for _, src := range parsed {
		if target == nil {
			if err := t.addAfter(last, src); err != nil {
				t.rollback()
				return err
			}
			last = src.ID
			continue
		}
		t.setFields(target, fields, src)
		last = target.ID
		if next, ok := d.events.GetAfter(target.ID); ok {
			target = next
		} else {
			target = nil
		}
	}
	return t.commit("paste over", history.ChangeFull)
}

func (d *Document) parseLines(lines []string) ([]*subtitle.Event, error) {
	var out []*subtitle.Event
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if subtitle.IsEventLine(trimmed) {
			e, err := subtitle.EventFromAss(d.events.NextID(), trimmed)
			if err != nil {
				return nil, fmt.Errorf("failed to parse pasted line %d: %w", i+1, err)
			}
			out = append(out, e)
			continue
		}
		e := subtitle.NewEvent(d.events.NextID())
		e.Style = d.defaultStyle
		e.Text = trimmed
		out = append(out, e)
	}
	return out, nil
}

// TranslateEvents replaces the plain text of the events with tr's
// translation, leaving override blocks, comments and drawings in place.
// All events change in one undo step. No events means all of them.
func (d *Document) TranslateEvents(ctx context.Context, tr Translator, ids ...int) (int, error) {
	if len(ids) == 0 {
		ids = d.events.IDs()
	}
	if err := d.requireAll(ids); err != nil {
		return 0, err
	}

	type slot struct {
		blocks []tags.Block
		plain  []*tags.PlainBlock
	}
	slots := make([]slot, len(ids))
	var texts []string
	for i, id := range ids {
		e, _ := d.events.Get(id)
		blocks := tags.Parse(e.Text)
		slots[i].blocks = blocks
		for _, b := range blocks {
			if p, ok := b.(*tags.PlainBlock); ok && strings.TrimSpace(p.Value) != "" {
				slots[i].plain = append(slots[i].plain, p)
				texts = append(texts, p.Value)
			}
		}
	}
	if len(texts) == 0 {
		return 0, nil
	}

	translated, err := tr.TranslateTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to translate events: %w", err)
	}
	if len(translated) != len(texts) {
		return 0, fmt.Errorf("expected %d translations, got %d", len(texts), len(translated))
	}

	t := d.begin()
	n := 0
	k := 0
	for i, id := range ids {
		if len(slots[i].plain) == 0 {
			continue
		}
		for _, p := range slots[i].plain {
			p.Value = translated[k]
			k++
		}
		text := tags.Join(slots[i].blocks)
		e, _ := d.events.Get(id)
		if t.edit(e, func(e *subtitle.Event) { e.Text = text }) != subtitle.FieldNone {
			n++
		}
	}
	d.log.Infow("translated events", "events", n, "texts", len(texts))
	return n, t.commit("translate", history.ChangeFull)
}

// RenameStyle renames a style and every event reference to it. The event
// side is one undo step; the style table itself is not versioned.
func (d *Document) RenameStyle(from, to string) (int, error) {
	if err := d.styles.rename(from, to); err != nil {
		return 0, err
	}
	t := d.begin()
	n := 0
	for _, e := range d.events.Ordered() {
		if e.Style != from {
			continue
		}
		t.edit(e, func(e *subtitle.Event) { e.Style = to })
		n++
	}
	return n, t.commit("rename style", history.ChangeModifyMeta)
}

func (d *Document) requireAll(ids []int) error {
	for _, id := range ids {
		if !d.events.Has(id) {
			return fmt.Errorf("%w: %d", events.ErrNotFound, id)
		}
	}
	return nil
}

func (t *tx) setFields(e *subtitle.Event, fields subtitle.Field, src *subtitle.Event) {
	before := e.Clone()
	if e.SetFields(fields, src) != subtitle.FieldNone {
		t.snaps = append(t.snaps, history.NewSnapshot(history.ActionEdit, before, nil))
	}
}
