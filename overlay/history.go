package overlay

// Restorer is the target of undo and redo. *Scene implements it.
type Restorer interface {
	Restore(Snapshot) error
}

// History keeps snapshot stacks for one page. The bottom entry of undone
// is the baseline and is never popped.
type History struct {
	undone []Snapshot
	redone []Snapshot
}

func NewHistory(baseline Snapshot) *History {
	return &History{undone: []Snapshot{baseline}}
}

// Record pushes s unless it equals the current top. The redo stack is
// cleared either way.
func (h *History) Record(s Snapshot) bool {
	h.redone = nil
	if top, ok := h.Top(); ok && top.Equal(s) {
		return false
	}
	h.undone = append(h.undone, s)
	return true
}

// Undo restores the entry below the top. It is a no-op at the baseline.
// If the target rejects the snapshot the stacks are left unchanged.
func (h *History) Undo(target Restorer) error {
	n := len(h.undone)
	if n <= 1 {
		return nil
	}
	if err := target.Restore(h.undone[n-2]); err != nil {
		return err
	}
	h.redone = append(h.redone, h.undone[n-1])
	h.undone = h.undone[:n-1]
	return nil
}

// Redo reapplies the most recently undone snapshot.
func (h *History) Redo(target Restorer) error {
	n := len(h.redone)
	if n == 0 {
		return nil
	}
	s := h.redone[n-1]
	if err := target.Restore(s); err != nil {
		return err
	}
	h.redone = h.redone[:n-1]
	h.undone = append(h.undone, s)
	return nil
}

func (h *History) Top() (Snapshot, bool) {
	if len(h.undone) == 0 {
		return Snapshot{}, false
	}
	return h.undone[len(h.undone)-1], true
}

func (h *History) CanUndo() bool { return len(h.undone) > 1 }
func (h *History) CanRedo() bool { return len(h.redone) > 0 }

// Depth returns the sizes of the undo and redo stacks.
func (h *History) Depth() (undone, redone int) { return len(h.undone), len(h.redone) }
