package uv

import (
	"sync"

	"github.com/google/uuid"
	"github.com/RickCarlino/solar-forth/internal/logx"
	"github.com/RickCarlino/solar-forth/internal/uv/evloop"
)

// Registry is the mutex-guarded store of live Handles, mirroring
// pawscript's storeObject pattern (executor_objects.go)
// but keyed on a uuid string instead of an incrementing int, since
// Handle identity needs to be diagnosable across process restarts in
// logs without colliding with any other ID space in the interpreter.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*Handle
	log     *logx.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry(log *logx.Logger) *Registry {
	return &Registry{handles: make(map[string]*Handle), log: log}
}

func (r *Registry) newHandle(loop *evloop.Loop, kind Kind) *Handle {
	h := &Handle{
		id:   uuid.NewString(),
		kind: kind,
		loop: loop,
	}
	r.mu.Lock()
	r.handles[h.id] = h
	r.mu.Unlock()
	r.log.DebugCat(logx.CatUV, "registered handle %s (kind %d)", h.id, kind)
	return h
}

// Get looks up a live Handle by ID, returning false if it was closed
// and released, or never existed.
func (r *Registry) Get(id string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	return h, ok
}

func (r *Registry) release(id string) {
	r.mu.Lock()
	delete(r.handles, id)
	r.mu.Unlock()
	r.log.DebugCat(logx.CatUV, "released handle %s", id)
}
