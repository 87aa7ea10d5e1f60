package subtitle

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	stylePrefix     = "Style:"
	styleFieldCount = 23

	StyleFormatLine = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"
)

// Style is a named set of rendering defaults referenced by events.
type Style struct {
	ID              int
	Name            string
	FontFamily      string
	FontSize        float64
	PrimaryColor    string
	SecondaryColor  string
	OutlineColor    string
	ShadowColor     string
	Bold            bool
	Italic          bool
	Underline       bool
	Strikeout       bool
	ScaleX          float64
	ScaleY          float64
	Spacing         float64
	Angle           float64
	BorderStyle     int
	BorderThickness float64
	ShadowDistance  float64
	Alignment       int
	Margins         Margins
	Encoding        int
}

// NewStyle returns a style with the usual Default values.
func NewStyle(id int, name string) *Style {
	return &Style{
		ID:              id,
		Name:            name,
		FontFamily:      "Arial",
		FontSize:        48,
		PrimaryColor:    "&H00FFFFFF",
		SecondaryColor:  "&H000000FF",
		OutlineColor:    "&H00000000",
		ShadowColor:     "&H00000000",
		ScaleX:          100,
		ScaleY:          100,
		BorderStyle:     1,
		BorderThickness: 2,
		ShadowDistance:  2,
		Alignment:       2,
		Margins:         Margins{Left: 10, Right: 10, Vertical: 10},
		Encoding:        1,
	}
}

func (s *Style) Clone() *Style {
	c := *s
	return &c
}

// Congruent compares every field but the ID.
func (s *Style) Congruent(o *Style) bool {
	if o == nil {
		return false
	}
	a, b := *s, *o
	a.ID, b.ID = 0, 0
	return a == b
}

// Flag returns the style default for one of the boolean override tags
// (b, i, u, s). Unknown names report false.
func (s *Style) Flag(tag string) bool {
	if s == nil {
		return false
	}
	switch tag {
	case "b":
		return s.Bold
	case "i":
		return s.Italic
	case "u":
		return s.Underline
	case "s":
		return s.Strikeout
	}
	return false
}

func (s *Style) AsAss() string {
	fields := []string{
		s.Name,
		s.FontFamily,
		formatFloat(s.FontSize),
		s.PrimaryColor,
		s.SecondaryColor,
		s.OutlineColor,
		s.ShadowColor,
		formatBool(s.Bold),
		formatBool(s.Italic),
		formatBool(s.Underline),
		formatBool(s.Strikeout),
		formatFloat(s.ScaleX),
		formatFloat(s.ScaleY),
		formatFloat(s.Spacing),
		formatFloat(s.Angle),
		strconv.Itoa(s.BorderStyle),
		formatFloat(s.BorderThickness),
		formatFloat(s.ShadowDistance),
		strconv.Itoa(s.Alignment),
		strconv.Itoa(s.Margins.Left),
		strconv.Itoa(s.Margins.Right),
		strconv.Itoa(s.Margins.Vertical),
		strconv.Itoa(s.Encoding),
	}
	return stylePrefix + " " + strings.Join(fields, ",")
}

// IsStyleLine reports whether line starts with Style:.
func IsStyleLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), stylePrefix)
}

// StyleFromAss decodes a V4+ Style: line.
func StyleFromAss(id int, line string) (*Style, error) {
	data := strings.TrimSpace(line)
	if !strings.HasPrefix(data, stylePrefix) {
		return nil, fmt.Errorf("%w: not a style line", ErrMalformed)
	}
	data = strings.TrimSpace(strings.TrimPrefix(data, stylePrefix))

	parts := strings.Split(data, ",")
	if len(parts) != styleFieldCount {
		return nil, fmt.Errorf(
			"%w: expected %d style fields, got %d",
			ErrMalformed,
			styleFieldCount,
			len(parts),
		)
	}

	p := &fieldParser{parts: parts}
	s := &Style{ID: id}
	s.Name = p.str()
	s.FontFamily = p.str()
	s.FontSize = p.number()
	s.PrimaryColor = p.str()
	s.SecondaryColor = p.str()
	s.OutlineColor = p.str()
	s.ShadowColor = p.str()
	s.Bold = p.flag()
	s.Italic = p.flag()
	s.Underline = p.flag()
	s.Strikeout = p.flag()
	s.ScaleX = p.number()
	s.ScaleY = p.number()
	s.Spacing = p.number()
	s.Angle = p.number()
	s.BorderStyle = p.integer()
	s.BorderThickness = p.number()
	s.ShadowDistance = p.number()
	s.Alignment = p.integer()
	s.Margins.Left = p.integer()
	s.Margins.Right = p.integer()
	s.Margins.Vertical = p.integer()
	s.Encoding = p.integer()

	if p.err != nil {
		return nil, fmt.Errorf("style %q: %w", s.Name, p.err)
	}
	return s, nil
}

// fieldParser consumes comma-split fields, remembering the first error.
type fieldParser struct {
	parts []string
	pos   int
	err   error
}

func (p *fieldParser) next() string {
	v := strings.TrimSpace(p.parts[p.pos])
	p.pos++
	return v
}

func (p *fieldParser) str() string {
	return p.next()
}

func (p *fieldParser) integer() int {
	raw := p.next()
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%w: field %d: invalid integer %q", ErrMalformed, p.pos, raw)
	}
	return v
}

func (p *fieldParser) number() float64 {
	raw := p.next()
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%w: field %d: invalid number %q", ErrMalformed, p.pos, raw)
	}
	return v
}

// ASS writes -1 for true; any non-zero value is accepted.
func (p *fieldParser) flag() bool {
	return p.integer() != 0
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "-1"
	}
	return "0"
}
