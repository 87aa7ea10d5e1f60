// Package tags parses the inline override markup of event text into blocks
// and edits it in place.
//
// Text is split into plain runs, {\tag...} override blocks, {comment}
// blocks and drawing runs. Parsing never fails: anything ambiguous is kept
// as plain text, and joining the blocks always gives back the input.
package tags

import (
	"strconv"
	"strings"
)

type BlockKind int

const (
	KindPlain BlockKind = iota
	KindOverride
	KindComment
	KindDrawing
)

func (k BlockKind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindOverride:
		return "override"
	case KindComment:
		return "comment"
	case KindDrawing:
		return "drawing"
	}
	return "unknown"
}

// Block is one parsed segment of event text.
type Block interface {
	Kind() BlockKind
	// Text is the raw source of the block, braces included.
	Text() string
}

// literal text run
type PlainBlock struct {
	Value string
}

func (b *PlainBlock) Kind() BlockKind { return KindPlain }
func (b *PlainBlock) Text() string    { return b.Value }

// braced content without any backslash
type CommentBlock struct {
	Value string
}

func (b *CommentBlock) Kind() BlockKind { return KindComment }
func (b *CommentBlock) Text() string    { return "{" + b.Value + "}" }

// vector path data written while \p is non-zero
type DrawingBlock struct {
	Value string
	Level int
}

func (b *DrawingBlock) Kind() BlockKind { return KindDrawing }
func (b *DrawingBlock) Text() string    { return b.Value }

// OverrideBlock is a braced tag list. Prefix holds any text between the
// opening brace and the first backslash.
type OverrideBlock struct {
	Prefix string
	Tags   []*Tag
}

func (b *OverrideBlock) Kind() BlockKind { return KindOverride }

func (b *OverrideBlock) Text() string {
	var sb strings.Builder
	sb.WriteByte('{')
	sb.WriteString(b.Prefix)
	for _, t := range b.Tags {
		sb.WriteString(t.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Find returns the last tag in the block named name or alt.
func (b *OverrideBlock) Find(name, alt string) (*Tag, bool) {
	for i := len(b.Tags) - 1; i >= 0; i-- {
		if matches(b.Tags[i], name, alt) {
			return b.Tags[i], true
		}
	}
	return nil, false
}

func matches(t *Tag, name, alt string) bool {
	return t.Name == name || (alt != "" && t.Name == alt)
}

// braced blocks occupy no rendered characters
func braced(b Block) bool {
	k := b.Kind()
	return k == KindOverride || k == KindComment
}

// Parse splits text into blocks. Empty text gives a single empty plain
// block.
func Parse(text string) []Block {
	if text == "" {
		return []Block{&PlainBlock{}}
	}

	var blocks []Block
	drawing := 0
	data := text

	for len(data) > 0 {
		if data[0] == '{' {
			if end := strings.IndexByte(data, '}'); end != -1 {
				content := data[1:end]
				data = data[end+1:]

				if content != "" && !strings.Contains(content, `\`) {
					blocks = append(blocks, &CommentBlock{Value: content})
					continue
				}

				ob := parseOverride(content)
				for _, t := range ob.Tags {
					if t.Name == P {
						drawing = drawingLevel(t)
					}
				}
				blocks = append(blocks, ob)
				continue
			}
		}

		// text runs up to the next brace that closes
		start := 0
		if data[0] == '{' {
			start = 1
		}
		end := len(data)
		if i := strings.IndexByte(data[start:], '{'); i != -1 {
			if strings.IndexByte(data[start+i:], '}') != -1 {
				end = start + i
			}
		}

		run := data[:end]
		data = data[end:]
		if drawing != 0 {
			blocks = append(blocks, &DrawingBlock{Value: run, Level: drawing})
		} else {
			blocks = append(blocks, &PlainBlock{Value: run})
		}
	}

	return blocks
}

func parseOverride(content string) *OverrideBlock {
	ob := &OverrideBlock{}
	first := strings.IndexByte(content, '\\')
	if first == -1 {
		ob.Prefix = content
		return ob
	}
	ob.Prefix = content[:first]
	rest := content[first:]

	depth, start := 0, 0
	for i := 1; i < len(rest); i++ {
		switch rest[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '\\':
			if depth == 0 {
				ob.Tags = append(ob.Tags, ParseTag(rest[start:i]))
				start = i
			}
		}
	}
	ob.Tags = append(ob.Tags, ParseTag(rest[start:]))
	return ob
}

func drawingLevel(t *Tag) int {
	n, err := strconv.Atoi(strings.TrimSpace(t.Value()))
	if err != nil {
		return 0
	}
	return n
}

// Join concatenates the raw text of blocks.
func Join(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b.Text())
	}
	return sb.String()
}

// Strip returns only the plain text of s.
func Strip(s string) string {
	var sb strings.Builder
	for _, b := range Parse(s) {
		if p, ok := b.(*PlainBlock); ok {
			sb.WriteString(p.Value)
		}
	}
	return sb.String()
}
