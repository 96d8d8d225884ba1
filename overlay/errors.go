package overlay

import (
	"errors"
	"fmt"
)

var (
	ErrNoDocument    = errors.New("no document loaded")
	ErrNoSurface     = errors.New("no drawing surface")
	ErrSurfaceClosed = errors.New("drawing surface disposed")
	ErrUnknownObject = errors.New("unknown object")
)

// InputError reports a wrong asset, document or argument. Nothing was
// mutated.
type InputError struct {
	Op  string
	Err error
}

func (e *InputError) Error() string { return fmt.Sprintf("%s: invalid input: %v", e.Op, e.Err) }
func (e *InputError) Unwrap() error { return e.Err }

// UnsupportedAssetError is returned when an inserted asset is not a
// recognized raster image.
type UnsupportedAssetError struct {
	Format string
}

func (e *UnsupportedAssetError) Error() string {
	if e.Format == "" {
		return "unsupported asset: unrecognized image format"
	}
	return fmt.Sprintf("unsupported asset: %s", e.Format)
}

// DecodeError wraps a failure to decode a page, document or image asset.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("%s: decode failed: %v", e.Op, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// RestoreError reports a snapshot that could not be applied. The scene
// and the history stacks are left as they were.
type RestoreError struct {
	Err error
}

func (e *RestoreError) Error() string { return fmt.Sprintf("restore snapshot: %v", e.Err) }
func (e *RestoreError) Unwrap() error { return e.Err }

// ExportError is returned when no output could be produced. No partial
// document accompanies it.
type ExportError struct {
	Page int // -1 if not page specific
	Err  error
}

func (e *ExportError) Error() string {
	if e.Page < 0 {
		return fmt.Sprintf("export: %v", e.Err)
	}
	return fmt.Sprintf("export page %d: %v", e.Page+1, e.Err)
}
func (e *ExportError) Unwrap() error { return e.Err }

// OperationError means a tool was driven while no live surface existed.
// It reflects a UI race and the session swallows it.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *OperationError) Unwrap() error { return e.Err }

// EmptySceneWarning is a non-fatal export diagnostic for a page without
// annotations. The page is emitted unchanged.
type EmptySceneWarning struct {
	Page int
}

func (w *EmptySceneWarning) Error() string {
	return fmt.Sprintf("page %d has no annotations", w.Page+1)
}

func inputErr(op string, format string, args ...any) error {
	return &InputError{Op: op, Err: fmt.Errorf(format, args...)}
}

// IsOperationError reports whether err is a swallowed surface race.
func IsOperationError(err error) bool {
	var oe *OperationError
	return errors.As(err, &oe)
}
