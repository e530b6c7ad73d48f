package usecase

import "sync"

// Guard is the per-database in-flight marker: at most one dump may run
// for a database id at any time.
type Guard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{running: make(map[string]struct{})}
}

// TryAcquire marks id as in flight. It reports false when a dump for id
// is already running.
func (g *Guard) TryAcquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.running[id]; ok {
		return false
	}
	g.running[id] = struct{}{}
	return true
}

// Release clears the marker. Must be called exactly once per successful
// TryAcquire, on every exit path.
func (g *Guard) Release(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, id)
}
