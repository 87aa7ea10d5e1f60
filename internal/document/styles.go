package document

import (
	"errors"
	"fmt"

	"github.com/mgpai22/subedit/internal/subtitle"
)

var (
	ErrStyleExists   = errors.New("style already exists")
	ErrStyleNotFound = errors.New("style not found")
)

// Styles is the style table of a document, in file order. It is never
// left empty: removing the last style brings back Default.
type Styles struct {
	order  []*subtitle.Style
	nextID int
}

func NewStyles() *Styles {
	s := &Styles{}
	s.LoadDefault()
	return s
}

// LoadDefault replaces the table with a single Default style.
func (s *Styles) LoadDefault() {
	s.order = nil
	s.nextID = 0
	s.order = append(s.order, subtitle.NewStyle(s.NextID(), subtitle.DefaultStyle))
}

func (s *Styles) NextID() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Styles) index(name string) int {
	for i, st := range s.order {
		if st.Name == name {
			return i
		}
	}
	return -1
}

// Add appends st. Names and IDs must be unique.
func (s *Styles) Add(st *subtitle.Style) error {
	for _, o := range s.order {
		if o.Name == st.Name || o.ID == st.ID {
			return fmt.Errorf("%w: %s", ErrStyleExists, st.Name)
		}
	}
	s.order = append(s.order, st)
	if st.ID >= s.nextID {
		s.nextID = st.ID + 1
	}
	return nil
}

// AddOrReplace overwrites the style with st's name, or appends st.
func (s *Styles) AddOrReplace(st *subtitle.Style) {
	if i := s.index(st.Name); i >= 0 {
		s.order[i] = st
		return
	}
	s.order = append(s.order, st)
	if st.ID >= s.nextID {
		s.nextID = st.ID + 1
	}
}

func (s *Styles) Get(name string) (*subtitle.Style, error) {
	st, ok := s.TryGet(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStyleNotFound, name)
	}
	return st, nil
}

func (s *Styles) TryGet(name string) (*subtitle.Style, bool) {
	if i := s.index(name); i >= 0 {
		return s.order[i], true
	}
	return nil, false
}

// Remove drops the named style and reports whether it existed.
func (s *Styles) Remove(name string) bool {
	i := s.index(name)
	if i < 0 {
		return false
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	if len(s.order) == 0 {
		s.order = append(s.order, subtitle.NewStyle(s.NextID(), subtitle.DefaultStyle))
	}
	return true
}

func (s *Styles) rename(from, to string) error {
	st, err := s.Get(from)
	if err != nil {
		return err
	}
	if _, ok := s.TryGet(to); ok {
		return fmt.Errorf("%w: %s", ErrStyleExists, to)
	}
	st.Name = to
	return nil
}

func (s *Styles) Names() []string {
	out := make([]string, len(s.order))
	for i, st := range s.order {
		out[i] = st.Name
	}
	return out
}

func (s *Styles) All() []*subtitle.Style {
	return append([]*subtitle.Style(nil), s.order...)
}

func (s *Styles) Len() int {
	return len(s.order)
}

// reset empties the table without seeding Default; used while reading a
// file.
func (s *Styles) reset() {
	s.order = nil
	s.nextID = 0
}
