package listview

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Scoped is a View whose resource depends on an owning record id, such as the
// jokes of one trigger.
type Scoped[T Record] struct {
	*View[T]

	mu      sync.Mutex
	factory func(scope uint) Resource[T]
	scope   uint
	bound   bool
}

// NewScoped returns a view that is not bound to any scope until Mount.
func NewScoped[T Record](name string, factory func(scope uint) Resource[T], logger *zap.Logger) *Scoped[T] {
	return &Scoped[T]{
		View:    New[T](name, nil, logger),
		factory: factory,
	}
}

// Scope returns the bound scope id and whether the view has been mounted.
func (s *Scoped[T]) Scope() (uint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope, s.bound
}

// Bind attaches the view to scope without loading. It reports whether the
// binding changed, in which case the items, draft and phase were reset.
func (s *Scoped[T]) Bind(scope uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound && s.scope == scope {
		return false
	}
	s.View.rebind(s.factory(scope))
	s.scope = scope
	s.bound = true
	return true
}

// Mount binds the view to scope, resetting it when the scope changed, and
// performs exactly one Load against the scoped resource.
func (s *Scoped[T]) Mount(ctx context.Context, scope uint) error {
	s.Bind(scope)
	return s.Load(ctx)
}
