package tags

import (
	"sort"
	"strconv"
	"strings"
)

// Known override tag names. Anything else is kept as an opaque tag.
const (
	A         = "a"
	A1        = "1a"
	A2        = "2a"
	A3        = "3a"
	A4        = "4a"
	Alpha     = "alpha"
	An        = "an"
	B         = "b"
	Be        = "be"
	Blur      = "blur"
	Bord      = "bord"
	C         = "c"
	C1        = "1c"
	C2        = "2c"
	C3        = "3c"
	C4        = "4c"
	Clip      = "clip"
	Fad       = "fad"
	Fade      = "fade"
	FaX       = "fax"
	FaY       = "fay"
	Fe        = "fe"
	Fn        = "fn"
	Fr        = "fr"
	FrX       = "frx"
	FrY       = "fry"
	FrZ       = "frz"
	Fs        = "fs"
	Fsc       = "fsc"
	FscX      = "fscx"
	FscY      = "fscy"
	Fsp       = "fsp"
	I         = "i"
	IClip     = "iclip"
	K         = "k"
	KUpper    = "K"
	Kf        = "kf"
	Ko        = "ko"
	Kt        = "kt"
	Move      = "move"
	Org       = "org"
	P         = "p"
	Pbo       = "pbo"
	Pos       = "pos"
	Q         = "q"
	R         = "r"
	S         = "s"
	Shad      = "shad"
	T         = "t"
	U         = "u"
	XBord     = "xbord"
	XShad     = "xshad"
	YBord     = "ybord"
	YShad     = "yshad"
)

// longest names first so prefix matching picks \blur over \b
var vocabulary = func() []string {
	names := []string{
		A, A1, A2, A3, A4, Alpha, An, B, Be, Blur, Bord, C, C1, C2, C3, C4,
		Clip, Fad, Fade, FaX, FaY, Fe, Fn, Fr, FrX, FrY, FrZ, Fs, Fsc, FscX,
		FscY, Fsp, I, IClip, K, KUpper, Kf, Ko, Kt, Move, Org, P, Pbo, Pos,
		Q, R, S, Shad, T, U, XBord, XShad, YBord, YShad,
	}
	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})
	return names
}()

// tags whose arguments are always written in parentheses
var functional = map[string]bool{
	Clip: true, IClip: true, Fad: true, Fade: true, Move: true,
	Org: true, Pos: true, T: true,
}

// AltName returns the alternate spelling that sets the same property
// (\c and \1c, \fr and \frz), or "".
func AltName(name string) string {
	switch name {
	case C:
		return C1
	case C1:
		return C
	case Fr:
		return FrZ
	case FrZ:
		return Fr
	}
	return ""
}

// Tag is a single override such as \b1 or \pos(10,20).
type Tag struct {
	Name   string
	Params []string

	paren bool
	raw   string
}

// NewTag builds a tag; it is serialized from Name and Params.
func NewTag(name string, params ...string) *Tag {
	return &Tag{Name: name, Params: params, paren: functional[name]}
}

// BoolTag builds \name1 or \name0.
func BoolTag(name string, v bool) *Tag {
	if v {
		return NewTag(name, "1")
	}
	return NewTag(name, "0")
}

// ParseTag parses one tag starting at its backslash. Unknown names are
// taken as the leading letters and round-trip unchanged.
func ParseTag(raw string) *Tag {
	t := &Tag{raw: raw}
	body := strings.TrimPrefix(raw, `\`)

	t.Name = matchName(body)
	rest := body[len(t.Name):]

	if strings.HasPrefix(rest, "(") {
		t.paren = true
		inner := strings.TrimPrefix(rest, "(")
		inner = strings.TrimSuffix(inner, ")")
		t.Params = splitArgs(inner)
	} else if rest != "" {
		t.Params = []string{rest}
	}
	return t
}

func matchName(body string) string {
	for _, name := range vocabulary {
		if strings.HasPrefix(body, name) {
			return name
		}
	}
	// opaque: optional digit followed by letters
	i := 0
	if i < len(body) && body[i] >= '0' && body[i] <= '9' {
		i++
	}
	for i < len(body) && isLetter(body[i]) {
		i++
	}
	if i == 1 && !isLetter(body[0]) {
		return ""
	}
	return body[:i]
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// splits on commas outside nested parentheses
func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	return append(args, s[start:])
}

// Value returns the first parameter, or "" when the tag has none.
func (t *Tag) Value() string {
	if len(t.Params) == 0 {
		return ""
	}
	return t.Params[0]
}

// Bool interprets the first parameter as a flag. ok is false when the tag
// has no usable value (for example a bare \b that resets to the style).
func (t *Tag) Bool() (v bool, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(t.Value()))
	if err != nil {
		return false, false
	}
	return n != 0, true
}

// Set replaces the parameters; the tag is re-serialized afterwards.
func (t *Tag) Set(params ...string) {
	t.Params = params
	t.raw = ""
}

// Raw reports whether the tag still carries its source text.
func (t *Tag) Raw() bool {
	return t.raw != ""
}

func (t *Tag) String() string {
	if t.raw != "" {
		return t.raw
	}
	var sb strings.Builder
	sb.WriteByte('\\')
	sb.WriteString(t.Name)
	switch {
	case len(t.Params) == 0:
	case t.paren || len(t.Params) > 1:
		sb.WriteByte('(')
		sb.WriteString(strings.Join(t.Params, ","))
		sb.WriteByte(')')
	default:
		sb.WriteString(t.Params[0])
	}
	return sb.String()
}

// Clone returns an independent copy.
func (t *Tag) Clone() *Tag {
	c := *t
	c.Params = append([]string(nil), t.Params...)
	return &c
}
