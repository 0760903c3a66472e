// Package listview implements the list/create/delete-with-confirmation pattern
// shared by every management page of the console.
//
// A View holds one page worth of records fetched from a Resource, the text the
// operator is typing into the create form and the deletion phase. Every
// successful mutation is followed by a full refetch; the local list is never
// patched in place.
package listview

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrNothingToConfirm is returned by ConfirmDelete when no deletion is staged.
var ErrNothingToConfirm = errors.New("no deletion is awaiting confirmation")

// ErrUnbound is returned when a scoped view is used before it was mounted.
var ErrUnbound = errors.New("view is not bound to a resource")

// Record is a row of a managed list.
type Record interface {
	RecordID() uint
	DisplayText() string
}

// Resource is the remote collection a View manages.
type Resource[T Record] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, text string) error
	Delete(ctx context.Context, id uint) error
}

// DeletePhase is either Idle or Confirming.
type DeletePhase interface {
	deletePhase()
}

// Idle means no confirmation dialog is showing.
type Idle struct{}

// Confirming means the dialog is showing for the staged record id.
type Confirming struct {
	ID uint
}

func (Idle) deletePhase()       {}
func (Confirming) deletePhase() {}

// State is a point-in-time copy of a View, safe to hand to a renderer.
type State[T Record] struct {
	Items []T
	Draft string
	Phase DeletePhase
}

// PendingDelete returns the staged id and true while a confirmation is showing.
func (s State[T]) PendingDelete() (uint, bool) {
	c, ok := s.Phase.(Confirming)
	return c.ID, ok
}

// Empty reports whether the placeholder row should be rendered.
func (s State[T]) Empty() bool { return len(s.Items) == 0 }

// View is a managed list over one Resource.
//
// Overlapping loads are resolved with a ticket sequence: a list response is
// applied only when it was issued after the last applied one, so an older
// response that arrives late never overwrites newer data.
type View[T Record] struct {
	mu       sync.Mutex
	name     string
	resource Resource[T]
	logger   *zap.Logger

	items []T
	draft string
	phase DeletePhase

	issued  uint64
	applied uint64
}

// New returns an idle, empty view. name labels diagnostic records.
func New[T Record](name string, resource Resource[T], logger *zap.Logger) *View[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View[T]{
		name:     name,
		resource: resource,
		logger:   logger.With(zap.String("view", name)),
		phase:    Idle{},
	}
}

// Name returns the label given to New.
func (v *View[T]) Name() string { return v.name }

// Load fetches the collection and replaces the items with the response verbatim.
// On failure the previous items are kept.
func (v *View[T]) Load(ctx context.Context) error {
	v.mu.Lock()
	v.issued++
	ticket := v.issued
	resource := v.resource
	v.mu.Unlock()
	if resource == nil {
		return ErrUnbound
	}

	items, err := resource.List(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.logger.Warn("list request failed", zap.Uint64("ticket", ticket), zap.Error(err))
		return err
	}
	if ticket <= v.applied {
		v.logger.Debug("discarding stale list response",
			zap.Uint64("ticket", ticket), zap.Uint64("applied", v.applied))
		return nil
	}
	v.applied = ticket
	v.items = items
	return nil
}

// SetDraft records the text currently typed into the create form.
func (v *View[T]) SetDraft(text string) {
	v.mu.Lock()
	v.draft = text
	v.mu.Unlock()
}

// Create sends text to the resource and refetches. Blank text is ignored
// without contacting the server. The text is sent as typed, not trimmed.
func (v *View[T]) Create(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	v.mu.Lock()
	v.draft = text
	resource := v.resource
	v.mu.Unlock()
	if resource == nil {
		return ErrUnbound
	}

	if err := resource.Create(ctx, text); err != nil {
		v.logger.Warn("create request failed", zap.Error(err))
		return err
	}

	v.mu.Lock()
	if v.draft == text {
		v.draft = ""
	}
	v.mu.Unlock()

	return v.Load(ctx)
}

// RequestDelete stages id and opens the confirmation dialog. No request is made.
func (v *View[T]) RequestDelete(id uint) {
	v.mu.Lock()
	v.phase = Confirming{ID: id}
	v.mu.Unlock()
}

// CancelDelete closes the confirmation dialog. No request is made.
func (v *View[T]) CancelDelete() {
	v.mu.Lock()
	v.phase = Idle{}
	v.mu.Unlock()
}

// ConfirmDelete deletes the staged record and refetches. On failure the
// dialog stays open so the operator can confirm again.
func (v *View[T]) ConfirmDelete(ctx context.Context) error {
	v.mu.Lock()
	pending, ok := v.phase.(Confirming)
	resource := v.resource
	v.mu.Unlock()
	if !ok {
		return ErrNothingToConfirm
	}
	if resource == nil {
		return ErrUnbound
	}

	if err := resource.Delete(ctx, pending.ID); err != nil {
		v.logger.Warn("delete request failed", zap.Uint("id", pending.ID), zap.Error(err))
		return err
	}

	v.mu.Lock()
	if c, still := v.phase.(Confirming); still && c.ID == pending.ID {
		v.phase = Idle{}
	}
	v.mu.Unlock()

	return v.Load(ctx)
}

// Snapshot copies the current state.
func (v *View[T]) Snapshot() State[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	items := make([]T, len(v.items))
	copy(items, v.items)
	return State[T]{Items: items, Draft: v.draft, Phase: v.phase}
}

// rebind swaps the resource and resets the state. Loads issued before the
// swap are treated as stale.
func (v *View[T]) rebind(resource Resource[T]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resource = resource
	v.items = nil
	v.draft = ""
	v.phase = Idle{}
	v.applied = v.issued
}
