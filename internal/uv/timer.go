package uv

import (
	"time"

	"github.com/RickCarlino/solar-forth/internal/uv/evloop"
)

// armTimer schedules the next tick using h's current generation as a
// cancellation token: timer-stop and close bump the generation, so a
// goroutine that fires after the fact recognizes it is stale and does
// nothing (spec: "there is no general cancellation token" for anything
// but timers/streams — this is the timer-specific mechanism that backs
// uv:timer-stop).
func (h *Handle) armTimer() {
	h.mu.Lock()
	gen := h.generation
	timeout := h.timeoutMS
	h.mu.Unlock()

	time.AfterFunc(time.Duration(timeout)*time.Millisecond, func() {
		h.fireTimer(gen)
	})
}

func (h *Handle) fireTimer(gen uint64) {
	h.mu.Lock()
	if h.generation != gen || h.closed || !h.armed {
		h.mu.Unlock()
		return
	}
	repeat := h.repeatMS
	h.mu.Unlock()

	h.loop.Emit(evloop.Event{HandleID: h.id, Kind: evloop.EventTimerTick})

	h.mu.Lock()
	stillLive := h.generation == gen && !h.closed && h.armed
	h.mu.Unlock()
	if !stillLive {
		return
	}

	if repeat > 0 {
		h.mu.Lock()
		h.timeoutMS = repeat
		h.mu.Unlock()
		h.armTimer()
		return
	}

	h.mu.Lock()
	h.armed = false
	h.mu.Unlock()
	h.unpin()
}

// startTimer arms h with the given timeout/repeat in milliseconds,
// invalidating any timer already in flight.
func (h *Handle) startTimer(timeoutMS, repeatMS int64) {
	h.mu.Lock()
	h.generation++
	h.timeoutMS = timeoutMS
	h.repeatMS = repeatMS
	h.armed = true
	h.mu.Unlock()

	h.pin()
	h.armTimer()
}

// stopTimer disarms h without discarding its stored callback, per spec
// ("callback retained in case of re-arm").
func (h *Handle) stopTimer() {
	h.mu.Lock()
	h.generation++
	h.armed = false
	h.mu.Unlock()
	h.unpin()
}
