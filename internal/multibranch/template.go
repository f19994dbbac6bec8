package multibranch

import (
	"sync"

	"github.com/haatos/freestyle-multibranch/internal/steps"
)

// Template is the step configuration every branch job of a project is
// copied from. Readers never observe a half-applied replace.
type Template struct {
	mu         sync.RWMutex
	registry   *steps.Registry
	wrappers   *steps.List
	builders   *steps.List
	publishers *steps.List
}

type Snapshot struct {
	Wrappers   []steps.Step `json:"wrappers"`
	Builders   []steps.Step `json:"builders"`
	Publishers []steps.Step `json:"publishers"`
}

func newTemplate(registry *steps.Registry, owner steps.Saveable) *Template {
	return &Template{
		registry:   registry,
		wrappers:   steps.NewWrapperList(registry, owner),
		builders:   steps.NewBuilderList(registry, owner),
		publishers: steps.NewPublisherList(registry, owner),
	}
}

func (t *Template) Registry() *steps.Registry {
	return t.registry
}

// Snapshot returns deep copies of the three lists taken under one read lock.
func (t *Template) Snapshot() (Snapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotLists(t.registry, t.wrappers, t.builders, t.publishers)
}

func (t *Template) lists() []*steps.List {
	return []*steps.List{t.wrappers, t.builders, t.publishers}
}

func snapshotLists(registry *steps.Registry, wrappers, builders, publishers *steps.List) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Wrappers, err = registry.Clone(wrappers.Items()); err != nil {
		return Snapshot{}, err
	}
	if snap.Builders, err = registry.Clone(builders.Items()); err != nil {
		return Snapshot{}, err
	}
	if snap.Publishers, err = registry.Clone(publishers.Items()); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
