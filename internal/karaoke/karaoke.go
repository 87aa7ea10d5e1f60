// Package karaoke splits event text into timed syllables marked by \k,
// \K, \kf and \ko tags and writes them back after retiming.
//
// Syllable durations are kept in milliseconds and written as
// centiseconds, rounded to the nearest one.
package karaoke

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mgpai22/subedit/internal/subtitle"
	"github.com/mgpai22/subedit/internal/tags"
)

var (
	ErrIndex   = errors.New("syllable index out of range")
	ErrTagType = errors.New("not a karaoke tag")
)

// syllable-starting tags
var syllableTags = map[string]bool{
	tags.K:      true,
	tags.KUpper: true,
	tags.Kf:     true,
	tags.Ko:     true,
}

// IsSyllableTag reports whether name starts a new syllable.
func IsSyllableTag(name string) bool {
	return syllableTags[name]
}

// Has reports whether text carries at least one syllable tag.
func Has(text string) bool {
	for _, b := range tags.Parse(text) {
		ob, ok := b.(*tags.OverrideBlock)
		if !ok {
			continue
		}
		for _, t := range ob.Tags {
			if syllableTags[t.Name] {
				return true
			}
		}
	}
	return false
}

// Syllable is one timed run of text. Start is absolute, not relative to
// the line.
type Syllable struct {
	Start    subtitle.Time
	Duration time.Duration
	TagType  string
	Text     string

	// Overrides holds non-karaoke markup keyed by the byte offset in Text
	// it precedes.
	Overrides map[int]string
}

func newSyllable(start subtitle.Time, d time.Duration, tagType string) *Syllable {
	return &Syllable{
		Start:     start,
		Duration:  d,
		TagType:   tagType,
		Overrides: make(map[int]string),
	}
}

func (s *Syllable) End() subtitle.Time {
	return s.Start.Add(s.Duration)
}

// Centis is the duration as written in the tag.
func (s *Syllable) Centis() int64 {
	ms := s.Duration.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return (ms + 5) / 10
}

// Format renders the syllable text with its overrides, led by its
// karaoke tag when withTag is set.
func (s *Syllable) Format(withTag bool) string {
	var sb strings.Builder
	if withTag {
		fmt.Fprintf(&sb, `{\%s%d}`, s.TagType, s.Centis())
	}

	keys := make([]int, 0, len(s.Overrides))
	for k := range s.Overrides {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	i := 0
	for _, k := range keys {
		at := min(max(k, i), len(s.Text))
		sb.WriteString(s.Text[i:at])
		sb.WriteString(s.Overrides[k])
		i = at
	}
	sb.WriteString(s.Text[i:])
	return sb.String()
}

// Line is the syllable list of one event.
type Line struct {
	syllables []*Syllable
}

// New parses e into syllables. With normalize, syllables running past the
// event end are cut at it. With autoSplit, a line holding a single
// syllable is split after every space.
func New(e *subtitle.Event, autoSplit, normalize bool) *Line {
	l := &Line{}
	l.SetLine(e, autoSplit, normalize)
	return l
}

// SetLine replaces the syllables with those parsed from e.
func (l *Line) SetLine(e *subtitle.Event, autoSplit, normalize bool) {
	last := l.parse(e.Text, e.Start)

	if normalize && last.End() > e.End {
		for _, s := range l.syllables {
			if s.Start > e.End {
				s.Start = e.End
				s.Duration = 0
				continue
			}
			s.Duration = min(s.Duration, e.End.Sub(s.Start).Duration())
		}
	}

	if autoSplit && len(l.syllables) == 1 {
		for {
			idx := len(l.syllables) - 1
			text := l.syllables[idx].Text
			pos := strings.IndexByte(text, ' ')
			if pos < 0 || pos+1 >= len(text) {
				break
			}
			_ = l.AddSplit(idx, pos+1)
		}
	}
}

// parse fills l.syllables and returns the final syllable
func (l *Line) parse(text string, start subtitle.Time) *Syllable {
	l.syllables = l.syllables[:0]
	syl := newSyllable(start, 0, tags.K)

	for _, b := range tags.Parse(text) {
		switch b := b.(type) {
		case *tags.PlainBlock:
			syl.Text += b.Value
		case *tags.CommentBlock, *tags.DrawingBlock:
			syl.Overrides[len(syl.Text)] += b.Text()
		case *tags.OverrideBlock:
			open := false
			prefix := b.Prefix
			for _, t := range b.Tags {
				if !syllableTags[t.Name] {
					if !open {
						syl.Overrides[len(syl.Text)] += "{" + prefix
						prefix = ""
						open = true
					}
					syl.Overrides[len(syl.Text)] += t.String()
					continue
				}

				if open {
					syl.Overrides[len(syl.Text)] += "}"
					open = false
				}
				// empty leading syllables are folded into the next one
				if syl.Duration > 0 || syl.Text != "" {
					l.syllables = append(l.syllables, syl)
					syl = newSyllable(syl.Start, syl.Duration, syl.TagType)
				}
				syl.TagType = t.Name
				syl.Start = syl.Start.Add(syl.Duration)
				syl.Duration = tagDuration(t)
			}
			if open {
				syl.Overrides[len(syl.Text)] += "}"
			}
		}
	}

	l.syllables = append(l.syllables, syl)
	return syl
}

// \k values are centiseconds
func tagDuration(t *tags.Tag) time.Duration {
	v, err := strconv.ParseFloat(strings.TrimSpace(t.Value()), 64)
	if err != nil || v < 0 {
		return 0
	}
	return time.Duration(math.Round(v*10)) * time.Millisecond
}

func (l *Line) Len() int {
	return len(l.syllables)
}

func (l *Line) Syllables() []*Syllable {
	return l.syllables
}

// Text joins every syllable back into event text.
func (l *Line) Text() string {
	var sb strings.Builder
	for _, s := range l.syllables {
		sb.WriteString(s.Format(true))
	}
	return sb.String()
}

// TagType is the tag of the first syllable, or "" for an empty line.
func (l *Line) TagType() string {
	if len(l.syllables) == 0 {
		return ""
	}
	return l.syllables[0].TagType
}

// SetTagType switches every syllable to name, given with or without its
// backslash.
func (l *Line) SetTagType(name string) error {
	name = strings.TrimPrefix(name, `\`)
	if !syllableTags[name] {
		return fmt.Errorf("%w: %q", ErrTagType, name)
	}
	for _, s := range l.syllables {
		s.TagType = name
	}
	return nil
}

func (l *Line) check(index int) error {
	if index < 0 || index >= len(l.syllables) {
		return fmt.Errorf("%w: %d of %d", ErrIndex, index, len(l.syllables))
	}
	return nil
}

// AddSplit cuts syllable index at byte offset pos of its text. The
// duration is shared by character count, rounded to whole centiseconds
// for the new syllable.
func (l *Line) AddSplit(index, pos int) error {
	if err := l.check(index); err != nil {
		return err
	}
	pre := l.syllables[index]
	next := newSyllable(0, 0, pre.TagType)

	pos = tags.RuneStart(pre.Text, pos)
	next.Text = pre.Text[pos:]
	pre.Text = pre.Text[:pos]

	preLen := utf8.RuneCountInString(pre.Text)
	nextLen := utf8.RuneCountInString(next.Text)
	switch {
	case nextLen == 0:
	case preLen == 0:
		next.Duration = pre.Duration
		pre.Duration = 0
	default:
		ms := pre.Duration.Milliseconds()
		share := (ms*int64(nextLen)/int64(preLen+nextLen) + 5) / 10 * 10
		next.Duration = time.Duration(share) * time.Millisecond
		pre.Duration -= next.Duration
	}
	next.Start = pre.End()

	for k, v := range pre.Overrides {
		if k < pos {
			continue
		}
		next.Overrides[k-pos] = v
		delete(pre.Overrides, k)
	}

	l.syllables = append(l.syllables, nil)
	copy(l.syllables[index+2:], l.syllables[index+1:])
	l.syllables[index+1] = next
	return nil
}

// RemoveSplit joins syllable index onto the one before it. Index 0 is left
// alone.
func (l *Line) RemoveSplit(index int) error {
	if err := l.check(index); err != nil {
		return err
	}
	if index == 0 {
		return nil
	}
	syl := l.syllables[index]
	pre := l.syllables[index-1]

	pre.Duration += syl.Duration
	for k, v := range syl.Overrides {
		pre.Overrides[k+len(pre.Text)] += v
	}
	pre.Text += syl.Text

	l.syllables = append(l.syllables[:index], l.syllables[index+1:]...)
	return nil
}

// SetStartTime moves the boundary between syllable index and the one
// before it to at. Times outside the two syllables are ignored.
func (l *Line) SetStartTime(index int, at subtitle.Time) error {
	if err := l.check(index); err != nil {
		return err
	}
	if index == 0 {
		return nil
	}
	syl := l.syllables[index]
	pre := l.syllables[index-1]
	if at < pre.Start || at > syl.End() {
		return nil
	}

	delta := time.Duration(at) - time.Duration(syl.Start)
	syl.Start = at
	syl.Duration -= delta
	pre.Duration += delta
	return nil
}

// SetLineTimes fits the syllables into start..end: leading syllables are
// trimmed to start, those beginning after end collapse onto it and the
// last one left absorbs the remainder.
func (l *Line) SetLineTimes(start, end subtitle.Time) {
	if end < start || len(l.syllables) == 0 {
		return
	}

	for i, s := range l.syllables {
		if i > 0 && s.Start >= start {
			break
		}
		delta := time.Duration(start) - time.Duration(s.Start)
		s.Start = start
		s.Duration = max(0, s.Duration-delta)
	}

	i := len(l.syllables) - 1
	for i > 0 && l.syllables[i].Start > end {
		l.syllables[i].Start = end
		l.syllables[i].Duration = 0
		i--
	}
	l.syllables[i].Duration = time.Duration(end) - time.Duration(l.syllables[i].Start)
}
