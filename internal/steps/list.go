package steps

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Saveable is notified after a list it owns changes.
type Saveable interface {
	Save(ctx context.Context) error
}

type noopSaveable struct{}

func (noopSaveable) Save(context.Context) error { return nil }

// Noop swallows change notifications.
var Noop Saveable = noopSaveable{}

type CapabilityError struct {
	Kind     string
	Expected Capability
}

func (e CapabilityError) Error() string {
	return fmt.Sprintf("step kind %q is not a registered %s", e.Kind, e.Expected)
}

// List is an ordered collection of steps of one capability. Keyed lists keep
// at most one step per kind.
type List struct {
	mu         sync.RWMutex
	registry   *Registry
	capability Capability
	keyed      bool
	owner      Saveable
	items      []Step
}

func NewList(registry *Registry, capability Capability, keyed bool, owner Saveable) *List {
	if owner == nil {
		owner = Noop
	}
	return &List{
		registry:   registry,
		capability: capability,
		keyed:      keyed,
		owner:      owner,
		items:      make([]Step, 0),
	}
}

func NewWrapperList(registry *Registry, owner Saveable) *List {
	return NewList(registry, CapabilityWrapper, true, owner)
}

func NewBuilderList(registry *Registry, owner Saveable) *List {
	return NewList(registry, CapabilityBuilder, false, owner)
}

func NewPublisherList(registry *Registry, owner Saveable) *List {
	return NewList(registry, CapabilityPublisher, true, owner)
}

func (l *List) Capability() Capability {
	return l.capability
}

func (l *List) Owner() Saveable {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.owner
}

func (l *List) SetOwner(owner Saveable) {
	if owner == nil {
		owner = Noop
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.owner = owner
}

func (l *List) IsDetached() bool {
	return l.Owner() == Noop
}

// Items returns a copy of the slice; the steps themselves are shared.
func (l *List) Items() []Step {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *List) Get(kind string) (Step, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.items {
		if s.Kind() == kind {
			return s, true
		}
	}
	return nil, false
}

// ReplaceBy swaps the whole content and notifies the owner. Items of the
// wrong capability leave the list untouched.
func (l *List) ReplaceBy(ctx context.Context, items []Step) error {
	for _, s := range items {
		if isNil(s) {
			return CapabilityError{Kind: "<nil>", Expected: l.capability}
		}
		d, ok := l.registry.Lookup(s.Kind())
		if !ok || d.Capability != l.capability {
			return CapabilityError{Kind: s.Kind(), Expected: l.capability}
		}
	}
	next := slices.Clone(items)
	if l.keyed {
		next = ToSet(next)
	}
	if next == nil {
		next = make([]Step, 0)
	}

	l.mu.Lock()
	l.items = next
	owner := l.owner
	l.mu.Unlock()

	return owner.Save(ctx)
}

// Detach points every list at Noop and returns a function restoring the
// owners they had before. Callers defer the restore so it runs on every exit
// path, panics included.
func Detach(lists ...*List) (restore func()) {
	owners := make([]Saveable, len(lists))
	for i, l := range lists {
		owners[i] = l.Owner()
		l.SetOwner(Noop)
	}
	return func() {
		for i, l := range lists {
			l.SetOwner(owners[i])
		}
	}
}

// isNil also catches typed nil pointers stored in the interface.
func isNil(s Step) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
