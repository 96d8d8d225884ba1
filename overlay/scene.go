package overlay

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot is an immutable serialized copy of a scene's objects.
type Snapshot struct {
	data []byte
}

// SnapshotFromBytes wraps previously serialized scene data. It is not
// validated until restored.
func SnapshotFromBytes(b []byte) Snapshot {
	return Snapshot{data: append([]byte(nil), b...)}
}

func (s Snapshot) Bytes() []byte { return append([]byte(nil), s.data...) }
func (s Snapshot) Equal(o Snapshot) bool { return bytes.Equal(s.data, o.data) }
func (s Snapshot) String() string { return string(s.data) }

const snapshotVersion = 1

type snapshotDoc struct {
	Version int      `json:"version"`
	Objects []Object `json:"objects"`
}

// Scene is the ordered set of annotations on one page. Order is paint
// order: later objects are drawn on top.
type Scene struct {
	objects []Object
	nextID  ID
	active  ID
}

func NewScene() *Scene {
	return &Scene{objects: []Object{}, nextID: 1}
}

func (s *Scene) Len() int { return len(s.objects) }

// Objects returns copies of the objects in paint order.
func (s *Scene) Objects() []Object {
	out := make([]Object, len(s.objects))
	for i, o := range s.objects {
		out[i] = o.Clone()
	}
	return out
}

func (s *Scene) index(id ID) int {
	for i := range s.objects {
		if s.objects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Scene) Get(id ID) (Object, bool) {
	i := s.index(id)
	if i < 0 {
		return Object{}, false
	}
	return s.objects[i].Clone(), true
}

// Add appends obj on top of the scene and returns its new ID.
func (s *Scene) Add(obj Object) (ID, error) {
	obj = obj.Clone()
	obj.ID = s.nextID
	if err := obj.Validate(); err != nil {
		return 0, &InputError{Op: "add object", Err: err}
	}
	s.nextID++
	s.objects = append(s.objects, obj)
	return obj.ID, nil
}

func (s *Scene) Remove(id ID) error {
	i := s.index(id)
	if i < 0 {
		return &InputError{Op: "remove object", Err: fmt.Errorf("%w %d", ErrUnknownObject, id)}
	}
	s.objects = append(s.objects[:i:i], s.objects[i+1:]...)
	if s.active == id {
		s.active = 0
	}
	return nil
}

// Update applies p to the object. On error the object is unchanged.
func (s *Scene) Update(id ID, p Patch) error {
	i := s.index(id)
	if i < 0 {
		return &InputError{Op: "update object", Err: fmt.Errorf("%w %d", ErrUnknownObject, id)}
	}
	obj := s.objects[i].Clone()
	if err := p.apply(&obj); err != nil {
		return &InputError{Op: "update object", Err: fmt.Errorf("object %d (%s): %w", id, obj.Kind, err)}
	}
	if err := obj.Validate(); err != nil {
		return &InputError{Op: "update object", Err: err}
	}
	s.objects[i] = obj
	return nil
}

// Translate moves the object by d in document units.
func (s *Scene) Translate(id ID, d Point) error {
	i := s.index(id)
	if i < 0 {
		return &InputError{Op: "move object", Err: fmt.Errorf("%w %d", ErrUnknownObject, id)}
	}
	obj := s.objects[i].Clone()
	obj.translate(d)
	if err := obj.Validate(); err != nil {
		return &InputError{Op: "move object", Err: err}
	}
	s.objects[i] = obj
	return nil
}

// SetActive marks id as the active (focused) object. Zero clears it.
func (s *Scene) SetActive(id ID) error {
	if id != 0 && s.index(id) < 0 {
		return &InputError{Op: "activate object", Err: fmt.Errorf("%w %d", ErrUnknownObject, id)}
	}
	s.active = id
	return nil
}

func (s *Scene) Active() ID { return s.active }

func (s *Scene) Clear() {
	s.objects = []Object{}
	s.active = 0
}

// HitTest returns the topmost object containing p, or zero.
func (s *Scene) HitTest(p Point) ID {
	for i := len(s.objects) - 1; i >= 0; i-- {
		if s.objects[i].Bounds().Contains(p) {
			return s.objects[i].ID
		}
	}
	return 0
}

func (s *Scene) Snapshot() Snapshot {
	doc := snapshotDoc{Version: snapshotVersion, Objects: s.objects}
	data, err := json.Marshal(doc)
	if err != nil {
		// Objects are validated on the way in, so every field marshals.
		panic(fmt.Sprintf("overlay: marshal scene: %v", err))
	}
	return Snapshot{data: data}
}

// Restore replaces the whole object collection with the snapshot. The
// scene is untouched if the snapshot is malformed.
func (s *Scene) Restore(snap Snapshot) error {
	objs, err := decodeSnapshot(snap)
	if err != nil {
		return &RestoreError{Err: err}
	}
	next := s.nextID
	for _, o := range objs {
		if o.ID >= next {
			next = o.ID + 1
		}
	}
	s.objects = objs
	s.nextID = next
	if s.index(s.active) < 0 {
		s.active = 0
	}
	return nil
}

func decodeSnapshot(snap Snapshot) ([]Object, error) {
	var doc snapshotDoc
	dec := json.NewDecoder(bytes.NewReader(snap.data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if doc.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}
	seen := make(map[ID]bool, len(doc.Objects))
	for _, o := range doc.Objects {
		if o.ID == 0 || seen[o.ID] {
			return nil, fmt.Errorf("invalid or duplicate object id %d", o.ID)
		}
		seen[o.ID] = true
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}
	if doc.Objects == nil {
		doc.Objects = []Object{}
	}
	return doc.Objects, nil
}

func (s *Scene) ClearActive() { s.active = 0 }

// Clone returns an independent copy, for work that runs off the
// session's thread.
func (s *Scene) Clone() *Scene {
	return &Scene{objects: s.Objects(), nextID: s.nextID, active: s.active}
}
