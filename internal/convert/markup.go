package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mgpai22/subedit/internal/tags"
)

var (
	htmlTagRegex  = regexp.MustCompile(`(?is)^(.*?)<(/?(?:b|i|u|s|font))\b([^>]*)>(.*)$`)
	fontAttrRegex = regexp.MustCompile(`(?i)\b(face|color|size)=("[^"]*"|'[^']*')`)
)

var namedColors = map[string]string{
	"black":   "000000",
	"white":   "FFFFFF",
	"red":     "FF0000",
	"lime":    "00FF00",
	"green":   "008000",
	"blue":    "0000FF",
	"yellow":  "FFFF00",
	"cyan":    "00FFFF",
	"aqua":    "00FFFF",
	"magenta": "FF00FF",
	"fuchsia": "FF00FF",
	"gray":    "808080",
	"grey":    "808080",
	"silver":  "C0C0C0",
	"maroon":  "800000",
	"navy":    "000080",
	"olive":   "808000",
	"purple":  "800080",
	"teal":    "008080",
	"orange":  "FFA500",
}

// nesting counter for one on/off tag
type toggle struct {
	name  string
	level int
}

func (t *toggle) open(sb *strings.Builder) {
	if t.level == 0 {
		fmt.Fprintf(sb, `{\%s1}`, t.name)
	}
	t.level++
}

func (t *toggle) close(sb *strings.Builder) {
	if t.level == 1 {
		fmt.Fprintf(sb, `{\%s0}`, t.name)
	}
	if t.level > 0 {
		t.level--
	}
}

type fontInfo struct {
	face, size, color string
}

// srtToAss converts HTML-style markup to override tags. Adjacent override
// blocks are merged.
func srtToAss(text string) string {
	toggles := map[string]*toggle{
		"b": {name: "b"},
		"i": {name: "i"},
		"u": {name: "u"},
		"s": {name: "s"},
	}
	var fonts []fontInfo
	var sb strings.Builder

	for text != "" {
		m := htmlTagRegex.FindStringSubmatch(text)
		if m == nil {
			sb.WriteString(text)
			break
		}
		sb.WriteString(m[1])
		name := strings.ToLower(m[2])
		attrs := m[3]
		text = m[4]

		switch name {
		case "b", "i", "u", "s":
			toggles[name].open(&sb)
		case "/b", "/i", "/u", "/s":
			toggles[name[1:]].close(&sb)
		case "font":
			var prev fontInfo
			if len(fonts) > 0 {
				prev = fonts[len(fonts)-1]
			}
			next := prev
			for _, a := range fontAttrRegex.FindAllStringSubmatch(attrs, -1) {
				value := a[2][1 : len(a[2])-1]
				switch strings.ToLower(a[1]) {
				case "face":
					next.face = `{\fn` + value + `}`
				case "size":
					next.size = `{\fs` + value + `}`
				case "color":
					if c, ok := overrideColor(value); ok {
						next.color = `{\c` + c + `}`
					}
				}
			}
			if next.face != prev.face {
				sb.WriteString(next.face)
			}
			if next.size != prev.size {
				sb.WriteString(next.size)
			}
			if next.color != prev.color {
				sb.WriteString(next.color)
			}
			fonts = append(fonts, next)
		case "/font":
			if len(fonts) == 0 {
				break
			}
			cur := fonts[len(fonts)-1]
			fonts = fonts[:len(fonts)-1]
			var prev fontInfo
			if len(fonts) > 0 {
				prev = fonts[len(fonts)-1]
			}
			if cur.face != prev.face {
				sb.WriteString(orReset(prev.face, `{\fn}`))
			}
			if cur.size != prev.size {
				sb.WriteString(orReset(prev.size, `{\fs}`))
			}
			if cur.color != prev.color {
				sb.WriteString(orReset(prev.color, `{\c}`))
			}
		}
	}

	return strings.ReplaceAll(sb.String(), "}{", "")
}

func orReset(v, reset string) string {
	if v == "" {
		return reset
	}
	return v
}

// overrideColor turns #RRGGBB or a named HTML color into &HBBGGRR&.
func overrideColor(v string) (string, bool) {
	hex := strings.TrimPrefix(v, "#")
	if hex == v {
		named, ok := namedColors[strings.ToLower(v)]
		if !ok {
			return "", false
		}
		hex = named
	}
	if len(hex) != 6 {
		return "", false
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", false
	}
	hex = strings.ToUpper(hex)
	return "&H" + hex[4:6] + hex[2:4] + hex[0:2] + "&", true
}

// markup lists the on/off tags a plain format can carry as HTML.
type markup []string

var (
	srtMarkup = markup{tags.B, tags.I, tags.U, tags.S}
	vttMarkup = markup{tags.B, tags.I, tags.U}
)

func (m markup) has(name string) bool {
	for _, n := range m {
		if n == name {
			return true
		}
	}
	return false
}

// assToHTML renders event text for a plain format: hard and soft breaks
// become newlines, \h becomes a space, the supported on/off tags become
// HTML tags and everything else is dropped.
func assToHTML(text string, m markup) string {
	var sb strings.Builder
	var open []string

	closeTag := func(name string) {
		for i := len(open) - 1; i >= 0; i-- {
			if open[i] != name {
				continue
			}
			// close the inner tags too, then reopen them
			inner := append([]string(nil), open[i+1:]...)
			for j := len(open) - 1; j >= i; j-- {
				sb.WriteString("</" + open[j] + ">")
			}
			open = open[:i]
			for _, n := range inner {
				sb.WriteString("<" + n + ">")
				open = append(open, n)
			}
			return
		}
	}
	isOpen := func(name string) bool {
		for _, n := range open {
			if n == name {
				return true
			}
		}
		return false
	}

	for _, b := range tags.Parse(text) {
		switch blk := b.(type) {
		case *tags.PlainBlock:
			sb.WriteString(plainText(blk.Value))
		case *tags.OverrideBlock:
			for _, t := range blk.Tags {
				if t.Name == tags.R {
					for len(open) > 0 {
						closeTag(open[len(open)-1])
					}
					continue
				}
				if !m.has(t.Name) {
					continue
				}
				on, ok := t.Bool()
				if !ok {
					continue
				}
				if on && !isOpen(t.Name) {
					sb.WriteString("<" + t.Name + ">")
					open = append(open, t.Name)
				} else if !on && isOpen(t.Name) {
					closeTag(t.Name)
				}
			}
		}
	}
	for i := len(open) - 1; i >= 0; i-- {
		sb.WriteString("</" + open[i] + ">")
	}
	return sb.String()
}

func plainText(s string) string {
	s = strings.ReplaceAll(s, `\N`, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	return strings.ReplaceAll(s, `\h`, " ")
}
