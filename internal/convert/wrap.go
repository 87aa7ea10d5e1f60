package convert

import (
	"strings"
	"unicode/utf8"

	"github.com/mgpai22/subedit/internal/tags"
)

// DefaultLineLength is the line length Balance aims for.
const DefaultLineLength = 42

// Balance splits text that renders longer than maxChars into two lines,
// breaking at the space nearest the middle of the visible text. Override
// blocks are left alone and text that already has a line break is
// returned unchanged.
func Balance(text string, maxChars int) string {
	stripped := strings.TrimSpace(tags.Strip(text))
	runeCount := utf8.RuneCountInString(stripped)

	// if text fits on one line, return as is
	if runeCount <= maxChars || strings.Contains(stripped, `\N`) || strings.Contains(stripped, `\n`) {
		return text
	}

	blocks := tags.Parse(text)
	middle := runeCount / 2
	bestBlock, bestByte := -1, 0
	bestDiff := runeCount

	// visible position runs across plain blocks only
	pos := 0
	lead := true
	for bi, b := range blocks {
		p, ok := b.(*tags.PlainBlock)
		if !ok {
			continue
		}
		for i, r := range p.Value {
			if lead && r == ' ' {
				continue
			}
			lead = false
			if r == ' ' && pos > 0 {
				if diff := abs(pos - middle); diff < bestDiff {
					bestDiff = diff
					bestBlock, bestByte = bi, i
				}
			}
			pos++
		}
	}

	if bestBlock < 0 {
		return text
	}
	p := blocks[bestBlock].(*tags.PlainBlock)
	p.Value = p.Value[:bestByte] + `\N` + p.Value[bestByte+1:]
	return tags.Join(blocks)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
