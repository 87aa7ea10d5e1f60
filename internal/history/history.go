// Package history records reversible changes to an event store as commits
// on an undo stack and a redo stack.
//
// The manager only stores commits. Applying a popped commit to the store
// and pushing its reverse onto the opposite stack is the caller's job (see
// package document).
package history

import (
	"errors"
	"time"

	"github.com/mgpai22/subedit/internal/subtitle"
)

// ErrNoCommit is returned by Amend when there is nothing to amend.
var ErrNoCommit = errors.New("no commit to amend")

const DefaultAmendWindow = 30 * time.Second

// Action says what applying a snapshot does to the store.
type Action int

const (
	// ActionInsert puts the stored event back after its parent.
	ActionInsert Action = iota
	// ActionEdit overwrites the live event with the stored one.
	ActionEdit
	// ActionDelete removes the event with the stored ID.
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// ChangeType groups commits for amending.
type ChangeType int

const (
	ChangeModifyText ChangeType = iota
	ChangeModifyMeta
	ChangeModifyTime
	ChangeInsert
	ChangeRemove
	ChangeStructure
	// ChangeFull rewrites whole events, as a paste or translation does.
	ChangeFull
)

func (c ChangeType) String() string {
	switch c {
	case ChangeModifyText:
		return "modify text"
	case ChangeModifyMeta:
		return "modify meta"
	case ChangeModifyTime:
		return "modify time"
	case ChangeInsert:
		return "insert"
	case ChangeRemove:
		return "remove"
	case ChangeStructure:
		return "structure"
	case ChangeFull:
		return "full"
	}
	return "unknown"
}

// Amendable reports whether commits of this type merge with a recent
// commit of the same type.
func (c ChangeType) Amendable() bool {
	return c == ChangeModifyText || c == ChangeModifyMeta || c == ChangeModifyTime
}

// Snapshot pairs a copy of an event with the ID of the event before it at
// capture time. ParentID is nil when the event was first.
type Snapshot struct {
	Action   Action
	Event    *subtitle.Event
	ParentID *int
}

// NewSnapshot clones e so later edits to the live event do not leak in.
func NewSnapshot(action Action, e *subtitle.Event, parent *int) Snapshot {
	var p *int
	if parent != nil {
		id := *parent
		p = &id
	}
	return Snapshot{Action: action, Event: e.Clone(), ParentID: p}
}

type Commit struct {
	ID        int
	Message   string
	Type      ChangeType
	Time      time.Time
	Snapshots []Snapshot
}

// reports whether the commit already holds an edit of id
func (c *Commit) hasEdit(id int) bool {
	for _, s := range c.Snapshots {
		if s.Action == ActionEdit && s.Event.ID == id {
			return true
		}
	}
	return false
}

func (c *Commit) merge(msg string, snaps []Snapshot) {
	if msg != "" {
		c.Message += ";" + msg
	}
	for _, s := range snaps {
		// keep the earliest state of an event
		if s.Action == ActionEdit && c.hasEdit(s.Event.ID) {
			continue
		}
		c.Snapshots = append(c.Snapshots, s)
	}
}

type Option func(*Manager)

// WithAmendWindow sets how long after a commit an edit of the same type is
// folded into it.
func WithAmendWindow(d time.Duration) Option {
	return func(m *Manager) {
		m.window = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

type Manager struct {
	history []*Commit
	future  []*Commit

	window   time.Duration
	now      func() time.Time
	nextID   int
	handlers []func()
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		window: DefaultAmendWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnChange registers fn to run after a commit is recorded, amended or
// pushed, and after Clear.
func (m *Manager) OnChange(fn func()) {
	m.handlers = append(m.handlers, fn)
}

func (m *Manager) changed() {
	for _, fn := range m.handlers {
		fn()
	}
}

// Commit records snaps as one undo step and drops the redo stack. An
// amendable change of the same type as the last commit, made within the
// amend window, is merged into that commit instead; amended reports which
// happened.
func (m *Manager) Commit(msg string, ct ChangeType, snaps ...Snapshot) (id int, amended bool) {
	now := m.now()
	m.future = nil

	if top := m.PeekHistory(); top != nil &&
		ct.Amendable() &&
		top.Type == ct &&
		now.Sub(top.Time) < m.window {
		top.merge(msg, snaps)
		top.Time = now
		m.changed()
		return top.ID, true
	}

	c := &Commit{
		ID:        m.nextID,
		Message:   msg,
		Type:      ct,
		Time:      now,
		Snapshots: append([]Snapshot(nil), snaps...),
	}
	m.nextID++
	m.history = append(m.history, c)
	m.changed()
	return c.ID, false
}

// Amend merges snaps into the last commit regardless of type or age.
func (m *Manager) Amend(msg string, snaps ...Snapshot) (int, error) {
	top := m.PeekHistory()
	if top == nil {
		return 0, ErrNoCommit
	}
	m.future = nil
	top.merge(msg, snaps)
	top.Time = m.now()
	m.changed()
	return top.ID, nil
}

// Undo pops the most recent commit. ok is false when there is none.
func (m *Manager) Undo() (c *Commit, ok bool) {
	if len(m.history) == 0 {
		return nil, false
	}
	c = m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	return c, true
}

// Redo pops the most recently undone commit. ok is false when there is
// none.
func (m *Manager) Redo() (c *Commit, ok bool) {
	if len(m.future) == 0 {
		return nil, false
	}
	c = m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	return c, true
}

// PushHistory puts c on the undo stack without touching the redo stack.
func (m *Manager) PushHistory(c *Commit) {
	m.history = append(m.history, c)
	m.changed()
}

// PushFuture puts c on the redo stack.
func (m *Manager) PushFuture(c *Commit) {
	m.future = append(m.future, c)
	m.changed()
}

func (m *Manager) CanUndo() bool { return len(m.history) > 0 }
func (m *Manager) CanRedo() bool { return len(m.future) > 0 }

func (m *Manager) HistoryLen() int { return len(m.history) }
func (m *Manager) FutureLen() int  { return len(m.future) }

func (m *Manager) PeekHistory() *Commit {
	if len(m.history) == 0 {
		return nil
	}
	return m.history[len(m.history)-1]
}

func (m *Manager) PeekFuture() *Commit {
	if len(m.future) == 0 {
		return nil
	}
	return m.future[len(m.future)-1]
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.history = nil
	m.future = nil
	m.changed()
}
