package tags

import "unicode/utf8"

// toggleable override tags
var flags = map[string]bool{B: true, I: true, U: true, S: true}

// Editor rewrites override tags of one text. Build it per edit; offsets
// are byte offsets. "Raw" positions index the full text, "normalized"
// positions index the text with braced blocks removed.
type Editor struct {
	blocks []Block
}

func NewEditor(text string) *Editor {
	return &Editor{blocks: Parse(text)}
}

func (e *Editor) Blocks() []Block {
	return e.blocks
}

func (e *Editor) Text() string {
	return Join(e.blocks)
}

func (e *Editor) reparse() {
	e.blocks = Parse(Join(e.blocks))
}

// BlockAt returns the index of the block governing the normalized
// position n. A position that falls right before a braced block belongs to
// that block, so tags set there extend an existing override.
func (e *Editor) BlockAt(n int) int {
	remaining := n
	idx := 0
	for i, b := range e.blocks {
		next := i+1 < len(e.blocks)
		nextBraced := next && braced(e.blocks[i+1])

		if braced(b) {
			if i > 0 && remaining >= 0 {
				idx++
			}
			if remaining > 0 && !nextBraced {
				idx++
			}
			continue
		}

		remaining -= len(b.Text())
		if remaining < 0 {
			return e.clamp(idx)
		}
		if remaining == 0 {
			if nextBraced {
				return e.clamp(idx + 1)
			}
			return e.clamp(idx)
		}
	}
	return e.clamp(idx)
}

func (e *Editor) clamp(idx int) int {
	if idx >= len(e.blocks) {
		return len(e.blocks) - 1
	}
	return idx
}

// NormalizeIndex converts a raw offset to a normalized one. Offsets inside
// braces map to the position of the brace.
func (e *Editor) NormalizeIndex(raw int) int {
	pos, norm := 0, 0
	for _, b := range e.blocks {
		if raw <= pos {
			break
		}
		l := len(b.Text())
		if braced(b) {
			pos += l
			if raw < pos {
				return norm
			}
			continue
		}
		if raw < pos+l {
			return norm + raw - pos
		}
		pos += l
		norm += l
	}
	return norm
}

// FindTag returns the most recent name (or alt) tag in the override blocks
// at or before block idx.
func (e *Editor) FindTag(idx int, name, alt string) (*Tag, bool) {
	if idx >= len(e.blocks) {
		idx = len(e.blocks) - 1
	}
	for i := idx; i >= 0; i-- {
		ob, ok := e.blocks[i].(*OverrideBlock)
		if !ok {
			continue
		}
		if t, ok := ob.Find(name, alt); ok {
			return t, true
		}
	}
	return nil, false
}

// SetTag writes tag into the override block governing normPos, or inserts a
// new {tag} block at rawPos when the position is plain text. It returns the
// change in text length.
func (e *Editor) SetTag(tag *Tag, normPos, rawPos int) int {
	for i := e.BlockAt(normPos); i >= 0; i-- {
		switch b := e.blocks[i].(type) {
		case *CommentBlock, *DrawingBlock:
			continue
		case *OverrideBlock:
			shift := setInBlock(b, tag)
			e.reparse()
			return shift
		case *PlainBlock:
			return e.insertAt(rawPos, tag)
		}
	}
	return e.insertAt(0, tag)
}

// RuneStart clamps i to [0, len(s)] and moves it back to the first byte of
// the character it falls in.
func RuneStart(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// updates the first match under the caller's spelling, drops later
// duplicates, appends when absent
func setInBlock(b *OverrideBlock, tag *Tag) int {
	before := len(b.Text())
	alt := AltName(tag.Name)

	found := false
	kept := make([]*Tag, 0, len(b.Tags)+1)
	for _, t := range b.Tags {
		if !matches(t, tag.Name, alt) {
			kept = append(kept, t)
			continue
		}
		if found {
			continue
		}
		found = true
		t.Name = tag.Name
		t.Set(tag.Params...)
		kept = append(kept, t)
	}
	if !found {
		kept = append(kept, tag.Clone())
	}
	b.Tags = kept

	return len(b.Text()) - before
}

func (e *Editor) insertAt(raw int, tag *Tag) int {
	text := e.Text()
	raw = RuneStart(text, raw)
	inserted := "{" + tag.String() + "}"
	e.blocks = Parse(text[:raw] + inserted + text[raw:])
	return len(inserted)
}

// RemoveTag deletes name from the nearest override block at or before
// normPos that carries it. An override left empty is removed. The returned
// shift is zero or negative.
func (e *Editor) RemoveTag(name string, normPos int) int {
	alt := AltName(name)
	for i := e.BlockAt(normPos); i >= 0; i-- {
		ob, ok := e.blocks[i].(*OverrideBlock)
		if !ok {
			continue
		}
		if _, ok := ob.Find(name, alt); !ok {
			continue
		}

		before := len(ob.Text())
		kept := ob.Tags[:0]
		for _, t := range ob.Tags {
			if !matches(t, name, alt) {
				kept = append(kept, t)
			}
		}
		ob.Tags = kept

		if len(ob.Tags) == 0 && ob.Prefix == "" {
			e.blocks = append(e.blocks[:i], e.blocks[i+1:]...)
			e.reparse()
			return -before
		}
		shift := len(ob.Text()) - before
		e.reparse()
		return shift
	}
	return 0
}

// ToggleTag flips one of b, i, u or s over the raw selection. The current
// state comes from the tag governing selStart, falling back to
// styleDefault. The inverse is written at the start and, for a non-empty
// selection, the original state is restored at the end. It returns the
// shift caused at the start.
func (e *Editor) ToggleTag(name string, styleDefault bool, selStart, selEnd int) int {
	if !flags[name] {
		return 0
	}
	if selStart > selEnd {
		selStart, selEnd = selEnd, selStart
	}
	text := e.Text()
	selStart, selEnd = RuneStart(text, selStart), RuneStart(text, selEnd)

	normStart := e.NormalizeIndex(selStart)
	state := styleDefault
	if t, ok := e.FindTag(e.BlockAt(normStart), name, ""); ok {
		if v, ok := t.Bool(); ok {
			state = v
		}
	}

	shift := e.SetTag(BoolTag(name, !state), normStart, selStart)
	if selEnd != selStart {
		end := selEnd + shift
		e.SetTag(BoolTag(name, state), e.NormalizeIndex(end), end)
	}
	return shift
}
