package subtitle

import (
	"fmt"
	"strings"
)

// Field is a bit set of event fields.
type Field uint16

const FieldNone Field = 0

const (
	FieldComment Field = 1 << iota
	FieldLayer
	FieldStart
	FieldEnd
	FieldStyle
	FieldActor
	FieldMarginLeft
	FieldMarginRight
	FieldMarginVertical
	FieldEffect
	FieldText
)

const (
	FieldTime = FieldStart | FieldEnd
	FieldMeta = FieldComment | FieldLayer | FieldStyle | FieldActor |
		FieldMarginLeft | FieldMarginRight | FieldMarginVertical | FieldEffect
	FieldAll = FieldMeta | FieldTime | FieldText
)

var fieldNames = []struct {
	f    Field
	name string
}{
	{FieldComment, "comment"},
	{FieldLayer, "layer"},
	{FieldStart, "start"},
	{FieldEnd, "end"},
	{FieldStyle, "style"},
	{FieldActor, "actor"},
	{FieldMarginLeft, "margin_l"},
	{FieldMarginRight, "margin_r"},
	{FieldMarginVertical, "margin_v"},
	{FieldEffect, "effect"},
	{FieldText, "text"},
}

func (f Field) Has(o Field) bool {
	return f&o == o && o != FieldNone
}

func (f Field) String() string {
	if f == FieldNone {
		return "none"
	}
	var names []string
	for _, fn := range fieldNames {
		if f&fn.f != 0 {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseFields reads a comma separated list of field names. The groups
// time, meta and all are accepted too.
func ParseFields(s string) (Field, error) {
	var f Field
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "":
			continue
		case "time":
			f |= FieldTime
			continue
		case "meta":
			f |= FieldMeta
			continue
		case "all":
			f |= FieldAll
			continue
		}
		found := false
		for _, fn := range fieldNames {
			if fn.name == name {
				f |= fn.f
				found = true
				break
			}
		}
		if !found {
			return FieldNone, fmt.Errorf("unknown field %q", name)
		}
	}
	return f, nil
}
