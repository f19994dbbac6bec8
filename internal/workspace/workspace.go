package workspace

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Lease grants exclusive use of one workspace path on one node until
// Release is called.
type Lease struct {
	ID         uuid.UUID `json:"id"`
	Node       string    `json:"node"`
	Path       string    `json:"path"`
	AcquiredAt time.Time `json:"acquired_at"`

	once    sync.Once
	release func()
}

// Release returns the path to the list. Calling it more than once is a no-op.
func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		if l.release != nil {
			l.release()
		}
	})
}

type key struct {
	node string
	path string
}

type slot struct {
	token   chan struct{}
	waiters int
	holder  *Lease
}

// List hands out workspace leases. Leases on different paths never block
// each other; a second lease on a held path waits for the first release.
type List struct {
	mu    sync.Mutex
	slots map[key]*slot
	now   func() time.Time
}

func NewList() *List {
	return &List{
		slots: make(map[key]*slot),
		now:   time.Now,
	}
}

// Allocate blocks until the path on node is free or ctx is done.
func (wl *List) Allocate(ctx context.Context, node, path string) (*Lease, error) {
	k := key{node: node, path: path}

	wl.mu.Lock()
	s := wl.slotFor(k)
	s.waiters++
	wl.mu.Unlock()

	select {
	case <-s.token:
	case <-ctx.Done():
		wl.mu.Lock()
		s.waiters--
		wl.dropIfIdle(k, s)
		wl.mu.Unlock()
		return nil, ctx.Err()
	}

	wl.mu.Lock()
	defer wl.mu.Unlock()
	return wl.grant(k, s), nil
}

// TryAllocate leases path on node only if it is free right now.
func (wl *List) TryAllocate(node, path string) (*Lease, bool) {
	k := key{node: node, path: path}

	wl.mu.Lock()
	defer wl.mu.Unlock()
	s := wl.slotFor(k)
	select {
	case <-s.token:
	default:
		return nil, false
	}
	s.waiters++
	return wl.grant(k, s), true
}

// slotFor must be called with wl.mu held.
func (wl *List) slotFor(k key) *slot {
	s, ok := wl.slots[k]
	if !ok {
		s = &slot{token: make(chan struct{}, 1)}
		s.token <- struct{}{}
		wl.slots[k] = s
	}
	return s
}

// grant must be called with wl.mu held and the slot's token taken.
func (wl *List) grant(k key, s *slot) *Lease {
	lease := &Lease{
		ID:         uuid.New(),
		Node:       k.node,
		Path:       k.path,
		AcquiredAt: wl.now(),
	}
	lease.release = func() { wl.release(k, s) }
	s.holder = lease
	return lease
}

func (wl *List) release(k key, s *slot) {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	s.holder = nil
	s.waiters--
	s.token <- struct{}{}
	wl.dropIfIdle(k, s)
}

// dropIfIdle must be called with wl.mu held.
func (wl *List) dropIfIdle(k key, s *slot) {
	if s.waiters == 0 && wl.slots[k] == s {
		delete(wl.slots, k)
	}
}

// InUse reports whether path on node is currently leased.
func (wl *List) InUse(node, path string) bool {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	s, ok := wl.slots[key{node: node, path: path}]
	return ok && s.holder != nil
}

// Leases lists the held leases ordered by node and path.
func (wl *List) Leases() []*Lease {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	leases := make([]*Lease, 0, len(wl.slots))
	for _, s := range wl.slots {
		if s.holder != nil {
			leases = append(leases, s.holder)
		}
	}
	sort.Slice(leases, func(i, j int) bool {
		if leases[i].Node != leases[j].Node {
			return leases[i].Node < leases[j].Node
		}
		return leases[i].Path < leases[j].Path
	})
	return leases
}
