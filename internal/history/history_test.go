package history

import (
	"errors"
	"testing"
	"time"

	"github.com/mgpai22/subedit/internal/subtitle"
)

// clock advanced by hand
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newManager(opts ...Option) (*Manager, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewManager(opts...), clock
}

func edit(id int, text string) Snapshot {
	e := subtitle.NewEvent(id)
	e.Text = text
	return NewSnapshot(ActionEdit, e, nil)
}

func TestCommitPushesAndClearsFuture(t *testing.T) {
	m, _ := newManager()

	id, amended := m.Commit("insert", ChangeInsert, edit(1, "a"))
	if amended || id != 0 {
		t.Errorf("expected new commit 0, got %d (amended %v)", id, amended)
	}

	c, ok := m.Undo()
	if !ok {
		t.Fatal("expected commit to undo")
	}
	m.PushFuture(c)
	if !m.CanRedo() {
		t.Fatal("expected redo to be available")
	}

	m.Commit("other", ChangeRemove, edit(2, "b"))
	if m.CanRedo() {
		t.Error("expected commit to clear the redo stack")
	}
}

func TestAmendBound(t *testing.T) {
	m, clock := newManager()

	for i := 0; i < 5; i++ {
		m.Commit("typing", ChangeModifyText, edit(1, string(rune('a'+i))))
		clock.Advance(400 * time.Millisecond)
	}
	if m.HistoryLen() != 1 {
		t.Fatalf("expected 1 commit, got %d", m.HistoryLen())
	}

	top := m.PeekHistory()
	if len(top.Snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(top.Snapshots))
	}
	if top.Snapshots[0].Event.Text != "a" {
		t.Errorf("expected earliest state to be kept, got %q", top.Snapshots[0].Event.Text)
	}
	if top.Message != "typing;typing;typing;typing;typing" {
		t.Errorf("unexpected message %q", top.Message)
	}

	_, amended := m.Commit("retime", ChangeModifyTime, edit(1, "x"))
	if amended {
		t.Error("expected a different type not to amend")
	}
	if m.HistoryLen() != 2 {
		t.Errorf("expected 2 commits, got %d", m.HistoryLen())
	}
}

func TestAmendAddsNewEvents(t *testing.T) {
	m, _ := newManager()
	m.Commit("edit", ChangeModifyMeta, edit(1, "a"))
	m.Commit("edit", ChangeModifyMeta, edit(2, "b"), edit(1, "later"))

	top := m.PeekHistory()
	if len(top.Snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(top.Snapshots))
	}
	if top.Snapshots[1].Event.ID != 2 {
		t.Errorf("expected event 2 to be appended, got %d", top.Snapshots[1].Event.ID)
	}
}

func TestAmendWindowExpires(t *testing.T) {
	m, clock := newManager(WithAmendWindow(2 * time.Second))

	m.Commit("a", ChangeModifyText, edit(1, "a"))
	clock.Advance(2 * time.Second)
	if _, amended := m.Commit("b", ChangeModifyText, edit(1, "b")); amended {
		t.Error("expected commit at the window edge not to amend")
	}
	clock.Advance(time.Second)
	if _, amended := m.Commit("c", ChangeModifyText, edit(1, "c")); !amended {
		t.Error("expected commit inside the window to amend")
	}
	if m.HistoryLen() != 2 {
		t.Errorf("expected 2 commits, got %d", m.HistoryLen())
	}
}

func TestStructuralChangesNeverAmend(t *testing.T) {
	m, _ := newManager()
	for _, ct := range []ChangeType{ChangeInsert, ChangeInsert, ChangeRemove, ChangeRemove, ChangeStructure, ChangeStructure} {
		if _, amended := m.Commit("op", ct, edit(1, "x")); amended {
			t.Errorf("expected %s not to amend", ct)
		}
	}
	if m.HistoryLen() != 6 {
		t.Errorf("expected 6 commits, got %d", m.HistoryLen())
	}
}

func TestForcedAmend(t *testing.T) {
	m, _ := newManager()
	if _, err := m.Amend("nothing"); !errors.Is(err, ErrNoCommit) {
		t.Errorf("expected ErrNoCommit, got %v", err)
	}

	id, _ := m.Commit("insert", ChangeInsert, NewSnapshot(ActionDelete, subtitle.NewEvent(3), nil))
	got, err := m.Amend("fix", edit(3, "x"))
	if err != nil {
		t.Fatalf("Amend failed: %v", err)
	}
	if got != id || m.HistoryLen() != 1 {
		t.Errorf("expected amend into %d, got %d with %d commits", id, got, m.HistoryLen())
	}
	if n := len(m.PeekHistory().Snapshots); n != 2 {
		t.Errorf("expected 2 snapshots, got %d", n)
	}
}

func TestEmptyStacks(t *testing.T) {
	m, _ := newManager()
	if _, ok := m.Undo(); ok {
		t.Error("expected undo on empty history to report false")
	}
	if _, ok := m.Redo(); ok {
		t.Error("expected redo on empty future to report false")
	}
	if m.PeekHistory() != nil || m.PeekFuture() != nil {
		t.Error("expected nothing to peek")
	}
}

func TestUndoRedoOrder(t *testing.T) {
	m, _ := newManager()
	m.Commit("first", ChangeInsert)
	m.Commit("second", ChangeRemove)

	c, _ := m.Undo()
	if c.Message != "second" {
		t.Fatalf("expected second, got %s", c.Message)
	}
	m.PushFuture(c)

	r, _ := m.Redo()
	if r != c {
		t.Error("expected redo to return the undone commit")
	}
	m.PushHistory(r)
	if m.HistoryLen() != 2 || m.CanRedo() {
		t.Errorf("unexpected stacks: %d history, redo %v", m.HistoryLen(), m.CanRedo())
	}
}

func TestSnapshotClonesEvent(t *testing.T) {
	e := subtitle.NewEvent(1)
	e.Text = "before"
	parent := 0
	s := NewSnapshot(ActionInsert, e, &parent)

	e.Text = "after"
	parent = 9
	if s.Event.Text != "before" {
		t.Errorf("expected snapshot to be a copy, got %q", s.Event.Text)
	}
	if *s.ParentID != 0 {
		t.Errorf("expected parent 0, got %d", *s.ParentID)
	}
}

func TestOnChange(t *testing.T) {
	m, _ := newManager()
	calls := 0
	m.OnChange(func() { calls++ })

	m.Commit("a", ChangeModifyText)
	m.Commit("b", ChangeModifyText)
	c, _ := m.Undo()
	m.PushFuture(c)
	m.Clear()

	if calls != 4 {
		t.Errorf("expected 4 notifications, got %d", calls)
	}
	if m.CanUndo() || m.CanRedo() {
		t.Error("expected clear to empty both stacks")
	}
}
