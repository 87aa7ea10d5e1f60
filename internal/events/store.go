// Package events keeps the events of a document in order.
//
// A Store pairs an ID-keyed map with a linked ordering of the same IDs, so
// lookups, neighbour queries and insertion next to a known event are all
// constant time. The two structures are only ever changed together.
//
// Store is not safe for concurrent use.
package events

import (
	"container/list"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mgpai22/subedit/internal/subtitle"
)

var (
	// ErrNotFound is returned when an operation names an ID the store does
	// not hold.
	ErrNotFound = errors.New("event not found")
	// ErrDuplicate is returned when an added event reuses a live ID.
	ErrDuplicate = errors.New("event id already in use")
)

// gap used when creating neighbours of an event
const neighbourLength = 5 * time.Second

type Store struct {
	chain  *list.List
	links  map[int]*list.Element
	events map[int]*subtitle.Event
	nextID int

	notifier notifier
}

// New returns a store holding a single default event.
func New() *Store {
	s := &Store{}
	s.reset()
	s.seed()
	return s
}

func (s *Store) reset() {
	s.chain = list.New()
	s.links = make(map[int]*list.Element)
	s.events = make(map[int]*subtitle.Event)
}

func (s *Store) seed() {
	e := subtitle.NewEvent(s.NextID())
	s.links[e.ID] = s.chain.PushBack(e.ID)
	s.events[e.ID] = e
}

// LoadDefault drops every event, restarts ID generation and seeds one
// default event. Commits taken before the call must be discarded.
func (s *Store) LoadDefault() {
	s.reset()
	s.nextID = 0
	s.seed()
	s.notifier.notify()
}

// Reset replaces the contents with batch, in order. ID generation continues
// above the highest ID seen. An empty batch leaves a default event.
func (s *Store) Reset(batch []*subtitle.Event) error {
	seen := make(map[int]bool, len(batch))
	for _, e := range batch {
		if seen[e.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicate, e.ID)
		}
		seen[e.ID] = true
	}

	s.reset()
	for _, e := range batch {
		s.links[e.ID] = s.chain.PushBack(e.ID)
		s.events[e.ID] = e
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	if len(batch) == 0 {
		s.seed()
	}
	s.notifier.notify()
	return nil
}

// NextID returns a fresh ID. IDs are never handed out twice by a store,
// even after the event holding one is removed.
func (s *Store) NextID() int {
	id := s.nextID
	s.nextID++
	return id
}

// Subscribe registers fn to be called after every structural change. The
// returned func removes it.
func (s *Store) Subscribe(fn func()) func() {
	return s.notifier.subscribe(fn)
}

func (s *Store) Len() int {
	return len(s.events)
}

func (s *Store) Has(id int) bool {
	_, ok := s.events[id]
	return ok
}

func (s *Store) Get(id int) (*subtitle.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return e, nil
}

func (s *Store) TryGet(id int) (*subtitle.Event, bool) {
	e, ok := s.events[id]
	return e, ok
}

// GetAfter returns the event following id, if any.
func (s *Store) GetAfter(id int) (*subtitle.Event, bool) {
	el, ok := s.links[id]
	if !ok || el.Next() == nil {
		return nil, false
	}
	return s.events[el.Next().Value.(int)], true
}

// GetBefore returns the event preceding id, if any.
func (s *Store) GetBefore(id int) (*subtitle.Event, bool) {
	el, ok := s.links[id]
	if !ok || el.Prev() == nil {
		return nil, false
	}
	return s.events[el.Prev().Value.(int)], true
}

func (s *Store) Head() (*subtitle.Event, bool) {
	if s.chain.Len() == 0 {
		return nil, false
	}
	return s.events[s.chain.Front().Value.(int)], true
}

func (s *Store) Tail() (*subtitle.Event, bool) {
	if s.chain.Len() == 0 {
		return nil, false
	}
	return s.events[s.chain.Back().Value.(int)], true
}

// IDs returns the IDs in document order.
func (s *Store) IDs() []int {
	ids := make([]int, 0, s.chain.Len())
	for el := s.chain.Front(); el != nil; el = el.Next() {
		ids = append(ids, el.Value.(int))
	}
	return ids
}

// Ordered returns the events in document order and stamps each one's
// Index (1-based) as a side effect.
func (s *Store) Ordered() []*subtitle.Event {
	out := make([]*subtitle.Event, 0, s.chain.Len())
	i := 1
	for el := s.chain.Front(); el != nil; el = el.Next() {
		e := s.events[el.Value.(int)]
		e.Index = i
		out = append(out, e)
		i++
	}
	return out
}

func (s *Store) link(e *subtitle.Event) error {
	if _, ok := s.events[e.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicate, e.ID)
	}
	return nil
}

func (s *Store) anchor(id int) (*list.Element, error) {
	el, ok := s.links[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return el, nil
}

func (s *Store) checkNew(batch []*subtitle.Event) error {
	seen := make(map[int]bool, len(batch))
	for _, e := range batch {
		if err := s.link(e); err != nil {
			return err
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicate, e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

func (s *Store) insertAfter(mark *list.Element, e *subtitle.Event) *list.Element {
	el := s.chain.InsertAfter(e.ID, mark)
	s.links[e.ID] = el
	s.events[e.ID] = e
	return el
}

func (s *Store) insertBefore(mark *list.Element, e *subtitle.Event) *list.Element {
	el := s.chain.InsertBefore(e.ID, mark)
	s.links[e.ID] = el
	s.events[e.ID] = e
	return el
}

func (s *Store) pushFront(e *subtitle.Event) *list.Element {
	el := s.chain.PushFront(e.ID)
	s.links[e.ID] = el
	s.events[e.ID] = e
	return el
}

func (s *Store) pushBack(e *subtitle.Event) *list.Element {
	el := s.chain.PushBack(e.ID)
	s.links[e.ID] = el
	s.events[e.ID] = e
	return el
}

// AddAfter inserts e directly after id.
func (s *Store) AddAfter(id int, e *subtitle.Event) error {
	mark, err := s.anchor(id)
	if err != nil {
		return err
	}
	if err := s.link(e); err != nil {
		return err
	}
	s.insertAfter(mark, e)
	s.notifier.notify()
	return nil
}

// AddBefore inserts e directly before id.
func (s *Store) AddBefore(id int, e *subtitle.Event) error {
	mark, err := s.anchor(id)
	if err != nil {
		return err
	}
	if err := s.link(e); err != nil {
		return err
	}
	s.insertBefore(mark, e)
	s.notifier.notify()
	return nil
}

// AddAfterMany inserts batch after id, keeping its order: anchor, A, B, C.
func (s *Store) AddAfterMany(id int, batch []*subtitle.Event) error {
	mark, err := s.anchor(id)
	if err != nil {
		return err
	}
	if err := s.checkNew(batch); err != nil {
		return err
	}
	for _, e := range batch {
		mark = s.insertAfter(mark, e)
	}
	s.notifier.notify()
	return nil
}

// AddBeforeMany inserts batch before id. When ascending, every element goes
// before the previous one, giving C, B, A, anchor. Otherwise the first
// element goes before the anchor and the rest follow it: A, B, C, anchor.
func (s *Store) AddBeforeMany(id int, batch []*subtitle.Event, ascending bool) error {
	mark, err := s.anchor(id)
	if err != nil {
		return err
	}
	if err := s.checkNew(batch); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	if ascending {
		for _, e := range batch {
			mark = s.insertBefore(mark, e)
		}
	} else {
		mark = s.insertBefore(mark, batch[0])
		for _, e := range batch[1:] {
			mark = s.insertAfter(mark, e)
		}
	}
	s.notifier.notify()
	return nil
}

func (s *Store) AddFirst(e *subtitle.Event) error {
	if err := s.link(e); err != nil {
		return err
	}
	s.pushFront(e)
	s.notifier.notify()
	return nil
}

func (s *Store) AddLast(e *subtitle.Event) error {
	if err := s.link(e); err != nil {
		return err
	}
	s.pushBack(e)
	s.notifier.notify()
	return nil
}

// AddFirstMany puts batch at the head. Ascending pushes each element to the
// front in turn (C, B, A, ...); otherwise the batch keeps its order
// (A, B, C, ...).
func (s *Store) AddFirstMany(batch []*subtitle.Event, ascending bool) error {
	if err := s.checkNew(batch); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	if ascending {
		for _, e := range batch {
			s.pushFront(e)
		}
	} else {
		mark := s.pushFront(batch[0])
		for _, e := range batch[1:] {
			mark = s.insertAfter(mark, e)
		}
	}
	s.notifier.notify()
	return nil
}

// AddLastMany appends batch in order.
func (s *Store) AddLastMany(batch []*subtitle.Event) error {
	if err := s.checkNew(batch); err != nil {
		return err
	}
	for _, e := range batch {
		s.pushBack(e)
	}
	if len(batch) > 0 {
		s.notifier.notify()
	}
	return nil
}

// Replace puts e at the position of id and returns the event it displaced.
// e may carry a different ID.
func (s *Store) Replace(id int, e *subtitle.Event) (*subtitle.Event, error) {
	el, err := s.anchor(id)
	if err != nil {
		return nil, err
	}
	if e.ID != id {
		if err := s.link(e); err != nil {
			return nil, err
		}
	}

	old := s.events[id]
	delete(s.events, id)
	delete(s.links, id)

	el.Value = e.ID
	s.links[e.ID] = el
	s.events[e.ID] = e

	s.notifier.notify()
	return old, nil
}

// ReplaceInPlace overwrites the fields of the live event with e's ID. The
// live pointer is kept so its change observers still fire.
func (s *Store) ReplaceInPlace(e *subtitle.Event) error {
	if err := s.replaceFields(e); err != nil {
		return err
	}
	s.notifier.notify()
	return nil
}

func (s *Store) ReplaceInPlaceMany(batch []*subtitle.Event) error {
	for _, e := range batch {
		if !s.Has(e.ID) {
			return fmt.Errorf("%w: %d", ErrNotFound, e.ID)
		}
	}
	for _, e := range batch {
		if err := s.replaceFields(e); err != nil {
			return err
		}
	}
	if len(batch) > 0 {
		s.notifier.notify()
	}
	return nil
}

func (s *Store) replaceFields(e *subtitle.Event) error {
	live, ok := s.events[e.ID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, e.ID)
	}
	if live == e {
		return nil
	}
	live.SetFields(subtitle.FieldAll, e)
	live.LinkedExtradata = append([]int(nil), e.LinkedExtradata...)
	return nil
}

// Remove detaches id from both the map and the ordering.
func (s *Store) Remove(id int) error {
	if !s.remove(id) {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	s.notifier.notify()
	return nil
}

// RemoveMany removes every listed ID that exists. It reports false when the
// batch is empty or any ID was missing; the present ones are still removed.
func (s *Store) RemoveMany(ids []int) bool {
	if len(ids) == 0 {
		return false
	}
	all := true
	removed := false
	for _, id := range ids {
		if s.remove(id) {
			removed = true
		} else {
			all = false
		}
	}
	if removed {
		s.notifier.notify()
	}
	return all
}

func (s *Store) remove(id int) bool {
	el, ok := s.links[id]
	if !ok {
		return false
	}
	s.chain.Remove(el)
	delete(s.links, id)
	delete(s.events, id)
	return true
}

// GetOrCreateAfter returns the event after id, or appends a new one that
// starts where id ends.
func (s *Store) GetOrCreateAfter(id int) (*subtitle.Event, error) {
	anchor, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if next, ok := s.GetAfter(id); ok {
		return next, nil
	}

	e := subtitle.NewEvent(s.NextID())
	e.Style = anchor.Style
	e.Start = anchor.End
	e.End = anchor.End.Add(neighbourLength)
	if err := s.AddAfter(id, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetOrCreateBefore returns the event before id, or prepends a new one that
// ends where id starts.
func (s *Store) GetOrCreateBefore(id int) (*subtitle.Event, error) {
	anchor, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if prev, ok := s.GetBefore(id); ok {
		return prev, nil
	}

	e := subtitle.NewEvent(s.NextID())
	e.Style = anchor.Style
	e.Start = anchor.Start.Add(-neighbourLength)
	e.End = anchor.Start
	if err := s.AddBefore(id, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Actors lists the distinct non-empty actors in use, sorted.
func (s *Store) Actors() []string {
	return s.distinct(func(e *subtitle.Event) string { return e.Actor })
}

// Effects lists the distinct non-empty effects in use, sorted.
func (s *Store) Effects() []string {
	return s.distinct(func(e *subtitle.Event) string { return e.Effect })
}

func (s *Store) distinct(field func(*subtitle.Event) string) []string {
	set := make(map[string]struct{})
	for _, e := range s.events {
		if v := field(e); v != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ChangeStyle points every event using style from at style to and returns
// how many were changed.
func (s *Store) ChangeStyle(from, to string) int {
	n := 0
	for _, e := range s.events {
		if e.Style != from {
			continue
		}
		e.Update(func(e *subtitle.Event) { e.Style = to })
		n++
	}
	return n
}
