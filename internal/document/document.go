// Package document ties an event store, its undo history and the style,
// script info and extradata tables of a subtitle file together.
//
// Every editing command on Document records exactly one commit, so one
// call is one undo step. Undo and Redo apply a commit's snapshots in
// reverse and push the inverse commit onto the opposite stack.
package document

import (
	"fmt"

	"github.com/mgpai22/subedit/internal/events"
	"github.com/mgpai22/subedit/internal/history"
	"github.com/mgpai22/subedit/internal/logging"
	"github.com/mgpai22/subedit/internal/subtitle"
)

type Option func(*Document)

func WithLogger(l *logging.Logger) Option {
	return func(d *Document) {
		d.log = l
	}
}

func WithHistory(h *history.Manager) Option {
	return func(d *Document) {
		d.history = h
	}
}

// WithSoftLinebreaks makes Merge join with \n instead of \N.
func WithSoftLinebreaks(soft bool) Option {
	return func(d *Document) {
		d.softBreaks = soft
	}
}

// WithDefaultStyle sets the style given to events pasted as plain text.
func WithDefaultStyle(name string) Option {
	return func(d *Document) {
		d.defaultStyle = name
	}
}

// section is an unrecognised file section, kept so it can be written back
// unchanged.
type section struct {
	header string
	lines  []string
}

type Document struct {
	events    *events.Store
	history   *history.Manager
	styles    *Styles
	info      *Properties
	garbage   *Properties
	extradata *Extradata
	unknown   []section

	log          *logging.Logger
	softBreaks   bool
	defaultStyle string
}

// New returns a document with one default event, the Default style and
// default script info.
func New(opts ...Option) *Document {
	d := &Document{
		events:    events.New(),
		styles:    NewStyles(),
		info:      NewScriptInfo(),
		garbage:   NewProperties(),
		extradata: NewExtradata(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.history == nil {
		d.history = history.NewManager()
	}
	if d.log == nil {
		d.log = logging.NewNop()
	}
	if d.defaultStyle == "" {
		d.defaultStyle = subtitle.DefaultStyle
	}
	return d
}

func (d *Document) Events() *events.Store { return d.events }
func (d *Document) History() *history.Manager { return d.history }
func (d *Document) Styles() *Styles { return d.styles }
func (d *Document) Info() *Properties { return d.info }
func (d *Document) ProjectGarbage() *Properties { return d.garbage }
func (d *Document) Extradata() *Extradata { return d.extradata }

// Commit records snaps as an undo step and returns the commit ID.
func (d *Document) Commit(msg string, ct history.ChangeType, snaps ...history.Snapshot) int {
	id, amended := d.history.Commit(msg, ct, snaps...)
	d.log.Debugw("commit",
		"id", id,
		"message", msg,
		"type", ct.String(),
		"snapshots", len(snaps),
		"amended", amended,
	)
	return id
}

// Undo reverts the most recent commit. It does nothing when there is
// nothing to undo.
func (d *Document) Undo() error {
	c, ok := d.history.Undo()
	if !ok {
		return nil
	}
	inverse, err := d.apply(c)
	if err != nil {
		d.history.PushHistory(c)
		return fmt.Errorf("failed to undo %q: %w", c.Message, err)
	}
	d.history.PushFuture(inverse)
	d.log.Debugw("undo", "id", c.ID, "message", c.Message)
	return nil
}

// Redo reapplies the most recently undone commit.
func (d *Document) Redo() error {
	c, ok := d.history.Redo()
	if !ok {
		return nil
	}
	inverse, err := d.apply(c)
	if err != nil {
		d.history.PushFuture(c)
		return fmt.Errorf("failed to redo %q: %w", c.Message, err)
	}
	d.history.PushHistory(inverse)
	d.log.Debugw("redo", "id", c.ID, "message", c.Message)
	return nil
}

// apply runs the snapshots of c in reverse and returns the commit that
// reverses what it did. Nothing is changed when a snapshot names an event
// that is missing, or one that is unexpectedly present.
func (d *Document) apply(c *history.Commit) (*history.Commit, error) {
	if err := d.check(c); err != nil {
		return nil, err
	}

	inverse := &history.Commit{
		ID:      c.ID,
		Message: c.Message,
		Type:    c.Type,
		Time:    c.Time,
	}
	for i := len(c.Snapshots) - 1; i >= 0; i-- {
		s := c.Snapshots[i]
		id := s.Event.ID

		switch s.Action {
		case history.ActionEdit:
			live, err := d.events.Get(id)
			if err != nil {
				return nil, err
			}
			inverse.Snapshots = append(inverse.Snapshots, history.NewSnapshot(history.ActionEdit, live, nil))
			if err := d.events.ReplaceInPlace(s.Event.Clone()); err != nil {
				return nil, err
			}

		case history.ActionDelete:
			live, err := d.events.Get(id)
			if err != nil {
				return nil, err
			}
			inverse.Snapshots = append(inverse.Snapshots, history.NewSnapshot(history.ActionInsert, live, d.parentOf(id)))
			if err := d.events.Remove(id); err != nil {
				return nil, err
			}

		case history.ActionInsert:
			e := s.Event.Clone()
			var err error
			if s.ParentID == nil {
				err = d.events.AddFirst(e)
			} else {
				err = d.events.AddAfter(*s.ParentID, e)
			}
			if err != nil {
				return nil, err
			}
			inverse.Snapshots = append(inverse.Snapshots, history.NewSnapshot(history.ActionDelete, e, s.ParentID))
		}
	}

	if d.events.Len() == 0 {
		e := subtitle.NewEvent(d.events.NextID())
		if err := d.events.AddFirst(e); err != nil {
			return nil, err
		}
		inverse.Snapshots = append(inverse.Snapshots, history.NewSnapshot(history.ActionDelete, e, nil))
	}
	return inverse, nil
}

// check walks the snapshots in application order, tracking which IDs would
// be present, and fails on the first one that cannot be applied.
func (d *Document) check(c *history.Commit) error {
	present := make(map[int]bool)
	has := func(id int) bool {
		if v, ok := present[id]; ok {
			return v
		}
		return d.events.Has(id)
	}

	for i := len(c.Snapshots) - 1; i >= 0; i-- {
		s := c.Snapshots[i]
		id := s.Event.ID
		switch s.Action {
		case history.ActionEdit:
			if !has(id) {
				return fmt.Errorf("%w: %d", events.ErrNotFound, id)
			}
		case history.ActionDelete:
			if !has(id) {
				return fmt.Errorf("%w: %d", events.ErrNotFound, id)
			}
			present[id] = false
		case history.ActionInsert:
			if has(id) {
				return fmt.Errorf("%w: %d", events.ErrDuplicate, id)
			}
			if s.ParentID != nil && !has(*s.ParentID) {
				return fmt.Errorf("%w: parent %d", events.ErrNotFound, *s.ParentID)
			}
			present[id] = true
		}
	}
	return nil
}

func (d *Document) parentOf(id int) *int {
	if p, ok := d.events.GetBefore(id); ok {
		pid := p.ID
		return &pid
	}
	return nil
}

// tx collects the snapshots of one command. Each store change goes through
// it so the parent recorded is the one at the moment of the change.
type tx struct {
	d     *Document
	snaps []history.Snapshot
}

func (d *Document) begin() *tx {
	return &tx{d: d}
}

func (t *tx) addAfter(id int, e *subtitle.Event) error {
	if err := t.d.events.AddAfter(id, e); err != nil {
		return err
	}
	t.inserted(e)
	return nil
}

func (t *tx) addBefore(id int, e *subtitle.Event) error {
	if err := t.d.events.AddBefore(id, e); err != nil {
		return err
	}
	t.inserted(e)
	return nil
}

func (t *tx) addLast(e *subtitle.Event) error {
	if err := t.d.events.AddLast(e); err != nil {
		return err
	}
	t.inserted(e)
	return nil
}

func (t *tx) inserted(e *subtitle.Event) {
	t.snaps = append(t.snaps, history.NewSnapshot(history.ActionDelete, e, t.d.parentOf(e.ID)))
}

func (t *tx) remove(id int) error {
	e, err := t.d.events.Get(id)
	if err != nil {
		return err
	}
	parent := t.d.parentOf(id)
	if err := t.d.events.Remove(id); err != nil {
		return err
	}
	t.snaps = append(t.snaps, history.NewSnapshot(history.ActionInsert, e, parent))
	return nil
}

// edit applies fn to e and records e's prior state if anything changed.
func (t *tx) edit(e *subtitle.Event, fn func(*subtitle.Event)) subtitle.Field {
	before := e.Clone()
	changed := e.Update(fn)
	if changed != subtitle.FieldNone {
		t.snaps = append(t.snaps, history.NewSnapshot(history.ActionEdit, before, nil))
	}
	return changed
}

// commit seeds a default event if the store was emptied, then records the
// collected snapshots. An empty transaction records nothing.
func (t *tx) commit(msg string, ct history.ChangeType) error {
	if t.d.events.Len() == 0 {
		e := subtitle.NewEvent(t.d.events.NextID())
		if err := t.d.events.AddFirst(e); err != nil {
			return err
		}
		t.inserted(e)
	}
	if len(t.snaps) == 0 {
		return nil
	}
	t.d.Commit(msg, ct, t.snaps...)
	return nil
}

// rollback undoes what the transaction has done so far. Used when a
// command fails part way.
func (t *tx) rollback() {
	if len(t.snaps) == 0 {
		return
	}
	if _, err := t.d.apply(&history.Commit{Snapshots: t.snaps}); err != nil {
		t.d.log.Warnw("rollback failed", "error", err)
	}
	t.snaps = nil
}
