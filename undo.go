package main

import "pdfink/overlay"

func (m *model) undo() {
	if err := m.session.Undo(); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.syncEditMode()
}

func (m *model) redo() {
	if err := m.session.Redo(); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.syncEditMode()
}

// syncEditMode enters text editing while a text object is focused and
// leaves it otherwise.
func (m *model) syncEditMode() {
	if m.mode != ModeNormal && m.mode != ModeEditing {
		return
	}
	obj, ok := m.session.Active()
	if ok && obj.Kind == overlay.KindText {
		m.mode = ModeEditing
	} else {
		m.mode = ModeNormal
	}
}
