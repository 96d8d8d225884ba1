package overlay

import (
	"errors"
	"testing"
)

type failingRestorer struct{}

func (failingRestorer) Restore(Snapshot) error { return &RestoreError{Err: errBoom} }

func TestHistoryRecordDedup(t *testing.T) {
	s := NewScene()
	h := NewHistory(s.Snapshot())
	if h.Record(s.Snapshot()) {
		t.Error("recording the baseline again pushed an entry")
	}
	s.Add(redaction(0, 0, Black))
	if !h.Record(s.Snapshot()) {
		t.Error("new content was not recorded")
	}
	if h.Record(s.Snapshot()) {
		t.Error("identical snapshot recorded twice")
	}
	if u, r := h.Depth(); u != 2 || r != 0 {
		t.Errorf("Depth = %d, %d", u, r)
	}
}

func TestHistoryRecordClearsRedo(t *testing.T) {
	s := NewScene()
	h := NewHistory(s.Snapshot())
	s.Add(redaction(0, 0, Black))
	h.Record(s.Snapshot())
	if err := h.Undo(s); err != nil {
		t.Fatal(err)
	}
	if !h.CanRedo() {
		t.Fatal("nothing to redo after undo")
	}
	// Recording the current top again is a no-op push but still drops
	// the redo branch.
	h.Record(s.Snapshot())
	if h.CanRedo() {
		t.Error("redo survived a record")
	}
}

func TestHistoryUndoFloor(t *testing.T) {
	s := NewScene()
	h := NewHistory(s.Snapshot())
	for i := 0; i < 3; i++ {
		if err := h.Undo(s); err != nil {
			t.Fatal(err)
		}
	}
	if h.CanUndo() || s.Len() != 0 {
		t.Error("undo went below the baseline")
	}
	if err := h.Redo(s); err != nil || h.CanRedo() {
		t.Errorf("redo on empty redo stack: %v", err)
	}
}

func TestHistoryUndoRedoDuality(t *testing.T) {
	c := attached(t)
	tools := NewTools(DefaultToolConfig(), nil, nil)

	steps := []func() error{
		func() error { _, err := tools.Select(c, ToolTextInsert); return err },
		func() error { return tools.HandleKey(c, KeyEvent{Type: KeyRune, Rune: '!'}) },
		func() error { _, err := tools.Select(c, ToolRedact); return err },
		func() error {
			tools.Select(c, ToolFreehand)
			tools.PointerDown(c, Point{5, 5})
			tools.PointerMove(c, Point{50, 40})
			return tools.PointerUp(c, Point{80, 90})
		},
		func() error { return c.Update(2, Patch{Color: &White}) },
		func() error { return c.Remove(1) },
	}
	snaps := []Snapshot{c.Scene().Snapshot()}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		snaps = append(snaps, c.Scene().Snapshot())
	}
	n := len(steps)
	if u, _ := c.History().Depth(); u != n+1 {
		t.Fatalf("undo depth = %d, want %d", u, n+1)
	}

	for i := n - 1; i >= 0; i-- {
		if err := c.Undo(); err != nil {
			t.Fatal(err)
		}
		if got := c.Scene().Snapshot(); !got.Equal(snaps[i]) {
			t.Fatalf("after undo to %d:\n got %s\nwant %s", i, got, snaps[i])
		}
	}
	for i := 1; i <= n; i++ {
		if err := c.Redo(); err != nil {
			t.Fatal(err)
		}
		if got := c.Scene().Snapshot(); !got.Equal(snaps[i]) {
			t.Fatalf("after redo to %d:\n got %s\nwant %s", i, got, snaps[i])
		}
	}
	top, _ := c.History().Top()
	if !top.Equal(c.Scene().Snapshot()) {
		t.Error("scene does not match the top of history")
	}
}

func TestHistoryFailedRestoreKeepsStacks(t *testing.T) {
	s := NewScene()
	h := NewHistory(s.Snapshot())
	s.Add(redaction(0, 0, Black))
	h.Record(s.Snapshot())

	err := h.Undo(failingRestorer{})
	var re *RestoreError
	if !errors.As(err, &re) {
		t.Fatalf("got %v, want RestoreError", err)
	}
	if u, r := h.Depth(); u != 2 || r != 0 {
		t.Errorf("Depth after failed undo = %d, %d", u, r)
	}

	if err := h.Undo(s); err != nil {
		t.Fatal(err)
	}
	if err := h.Redo(failingRestorer{}); err == nil {
		t.Fatal("failed redo reported no error")
	}
	if u, r := h.Depth(); u != 1 || r != 1 {
		t.Errorf("Depth after failed redo = %d, %d", u, r)
	}
}
