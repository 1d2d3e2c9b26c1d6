// Package uv binds the vm interpreter's uv:* words (spec-level "the
// event-loop bindings") onto internal/uv/evloop's native loop. It is the
// only package allowed to import both internal/vm and internal/uv/evloop;
// internal/vm never imports this package, breaking what would otherwise
// be a cycle through the vm.Handle marker interface.
package uv

import (
	"net"
	"sync"

	"github.com/RickCarlino/solar-forth/internal/uv/evloop"
	"github.com/RickCarlino/solar-forth/internal/vm"
)

// Kind distinguishes what native resource a Handle wraps.
type Kind int

const (
	KindTimer Kind = iota
	KindTCP
)

// Handle is the shared-ownership record backing every value of
// vm.KindHandle on the stack: referenced by the stack (zero or more
// times), by the loop while pinned, and by its own callback quotation.
// Final release only happens through close (uv:close), never through a stack pop
// going out of scope (spec: "model as a shared-ownership record whose
// final release is gated on provider-confirmed close").
type Handle struct {
	mu   sync.Mutex
	id   string
	kind Kind
	loop *evloop.Loop

	hasCallback bool
	callback    vm.QuoteID

	closed  bool
	closing bool
	pinned  bool

	// timer state
	generation uint64
	timeoutMS  int64
	repeatMS   int64
	armed      bool

	// tcp state
	addr     string
	bound    bool
	listener net.Listener
	conn     net.Conn
}

// HandleID implements vm.Handle.
func (h *Handle) HandleID() string {
	return h.id
}

func (h *Handle) setCallback(q vm.QuoteID) (prior vm.QuoteID, hadPrior bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	prior, hadPrior = h.callback, h.hasCallback
	h.callback = q
	h.hasCallback = true
	return prior, hadPrior
}

func (h *Handle) getCallback() (vm.QuoteID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.callback, h.hasCallback
}

func (h *Handle) pin() {
	h.mu.Lock()
	already := h.pinned
	h.pinned = true
	h.mu.Unlock()
	if !already {
		h.loop.Pin()
	}
}

func (h *Handle) unpin() {
	h.mu.Lock()
	was := h.pinned
	h.pinned = false
	h.mu.Unlock()
	if was {
		h.loop.Unpin()
	}
}

func (h *Handle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
