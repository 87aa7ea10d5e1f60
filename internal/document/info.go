package document

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Properties is an ordered set of key/value pairs, as found in the
// [Script Info] and [Aegisub Project Garbage] sections.
type Properties struct {
	keys   []string
	values map[string]string
}

func NewProperties() *Properties {
	return &Properties{values: make(map[string]string)}
}

// default script info, in file order
var defaultInfo = [][2]string{
	{"Title", "Default File"},
	{"Original Script", ""},
	{"Original Translation", ""},
	{"Original Editing", ""},
	{"Original Timing", ""},
	{"Synch Point", ""},
	{"Script Updated By", ""},
	{"Update Details", ""},
	{"ScriptType", "v4.00+"},
	{"PlayResX", "1920"},
	{"PlayResY", "1080"},
	{"Timer", "0.0000"},
	{"WrapStyle", "0"},
	{"ScaledBorderAndShadow", "yes"},
	{"YCbCr Matrix", "TV.709"},
}

// NewScriptInfo returns properties holding the default script info.
func NewScriptInfo() *Properties {
	p := NewProperties()
	p.LoadDefault()
	return p
}

// LoadDefault replaces the contents with the default script info.
func (p *Properties) LoadDefault() {
	p.Clear()
	for _, kv := range defaultInfo {
		p.Set(kv[0], kv[1])
	}
}

func (p *Properties) Clear() {
	p.keys = nil
	p.values = make(map[string]string)
}

// Set adds key at the end or overwrites it in place.
func (p *Properties) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

func (p *Properties) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *Properties) Remove(key string) bool {
	if _, ok := p.values[key]; !ok {
		return false
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
	return true
}

func (p *Properties) Keys() []string {
	return append([]string(nil), p.keys...)
}

func (p *Properties) Len() int {
	return len(p.keys)
}

// parseLine reads a "key: value" line. Comments starting with ';' and
// lines without a key are ignored.
func (p *Properties) parseLine(line string) {
	if line == "" || line[0] == ';' {
		return
	}
	sep := strings.IndexByte(line, ':')
	if sep <= 0 {
		return
	}
	p.Set(strings.TrimSpace(line[:sep]), strings.TrimSpace(line[sep+1:]))
}

func (p *Properties) lines() []string {
	out := make([]string, 0, len(p.keys))
	for _, k := range p.keys {
		out = append(out, k+": "+p.values[k])
	}
	return out
}

// ExtradataEntry is a key/value blob that events reference by ID.
type ExtradataEntry struct {
	ID    int
	Key   string
	Value string
}

var extradataLineRegex = regexp.MustCompile(`^Data:\ *(\d+),([^,]+),(.)(.*)`)

// Extradata owns the entries events link to through LinkedExtradata.
type Extradata struct {
	entries []ExtradataEntry
	nextID  int
}

func NewExtradata() *Extradata {
	return &Extradata{}
}

// Add stores a key/value pair and returns its ID. An identical pair
// already present is reused.
func (x *Extradata) Add(key, value string) int {
	for _, e := range x.entries {
		if e.Key == key && e.Value == value {
			return e.ID
		}
	}
	id := x.nextID
	x.nextID++
	x.entries = append(x.entries, ExtradataEntry{ID: id, Key: key, Value: value})
	return id
}

func (x *Extradata) Get(id int) (ExtradataEntry, bool) {
	for _, e := range x.entries {
		if e.ID == id {
			return e, true
		}
	}
	return ExtradataEntry{}, false
}

// Lookup returns the entries with the given IDs, in ID order.
func (x *Extradata) Lookup(ids []int) []ExtradataEntry {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []ExtradataEntry
	for _, e := range x.entries {
		if want[e.ID] {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (x *Extradata) All() []ExtradataEntry {
	return append([]ExtradataEntry(nil), x.entries...)
}

func (x *Extradata) Len() int {
	return len(x.entries)
}

func (x *Extradata) parseLine(line string) error {
	m := extradataLineRegex.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return fmt.Errorf("invalid extradata id %q: %w", m[1], err)
	}

	var value string
	switch m[3] {
	case "b":
		raw, err := base64.StdEncoding.DecodeString(m[4])
		if err != nil {
			return fmt.Errorf("invalid extradata value: %w", err)
		}
		value = string(raw)
	case "e":
		value = inlineDecode(m[4])
	}
	if value == "" {
		return nil
	}

	if id+1 > x.nextID {
		x.nextID = id + 1
	}
	x.entries = append(x.entries, ExtradataEntry{ID: id, Key: inlineDecode(m[2]), Value: value})
	return nil
}

func (x *Extradata) lines() []string {
	out := make([]string, 0, len(x.entries))
	for _, e := range x.entries {
		out = append(out, fmt.Sprintf("Data: %d,%s,b%s",
			e.ID, inlineEncode(e.Key), base64.StdEncoding.EncodeToString([]byte(e.Value))))
	}
	return out
}

func inlineEncode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x1F || c == '#' || c == ',' || c == ':' || c == '|' {
			fmt.Fprintf(&sb, "#%02X", c)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func inlineDecode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '#' && i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				sb.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func (x *Extradata) Clear() {
	x.entries = nil
	x.nextID = 0
}
