package uv

import (
	"errors"
	"io"
	"net"
	"strconv"

	"github.com/RickCarlino/solar-forth/internal/logx"
	"github.com/RickCarlino/solar-forth/internal/uv/evloop"
)

// bind validates ip as IPv4 and port as a 16-bit value and stashes the
// resulting address for listen. Validation failure is a bind failure
// per spec: reported and non-fatal, the handle simply never becomes
// listenable. The actual OS-level bind happens inside net.Listen, which
// Go does not let us split into separate bind/listen steps (see
// DESIGN.md).
func (h *Handle) bind(ip string, port int64, log *logx.Logger) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		log.WarnCat(logx.CatTCP, "uv:tcp-bind: %q is not a valid IPv4 address", ip)
		return
	}
	if port < 0 || port > 65535 {
		log.WarnCat(logx.CatTCP, "uv:tcp-bind: port %d is out of 16-bit range", port)
		return
	}

	h.mu.Lock()
	h.addr = net.JoinHostPort(ip, strconv.FormatInt(port, 10))
	h.bound = true
	h.mu.Unlock()
}

// listen opens the bound address and starts an accept loop, one
// goroutine per listening Handle, that only ever emits events — the
// new client Handle itself is created by the loop's consumer, in
// dispatch, so that Registry access from the accept goroutine never
// races with anything running on the interpreter's own goroutine. A
// listen failure, like a bind failure, is reported and non-fatal.
func (h *Handle) listen(backlog int64, log *logx.Logger) {
	h.mu.Lock()
	addr := h.addr
	bound := h.bound
	h.mu.Unlock()
	if !bound {
		log.WarnCat(logx.CatTCP, "uv:listen: handle %s was never successfully bound", h.id)
		return
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.WarnCat(logx.CatTCP, "uv:listen: %v", err)
		return
	}
	h.mu.Lock()
	h.listener = ln
	h.mu.Unlock()

	h.pin()
	go h.acceptLoop(log)
}

// acceptLoop keeps calling Accept until the listener is closed. Per
// spec §7 a single accept failure is transient — "close the orphan
// client Handle; continue listening" — so only a close initiated by
// uv:close (h.closing, or Accept returning net.ErrClosed) actually
// stops the loop; any other error is reported and accepting resumes.
func (h *Handle) acceptLoop(log *logx.Logger) {
	for {
		h.mu.Lock()
		ln := h.listener
		closing := h.closing
		h.mu.Unlock()
		if closing || ln == nil {
			return
		}

		conn, err := ln.Accept()
		if err != nil {
			h.mu.Lock()
			closing := h.closing
			h.mu.Unlock()
			if closing || errors.Is(err, net.ErrClosed) {
				h.unpin()
				return
			}
			log.WarnCat(logx.CatTCP, "accept on handle %s failed: %v", h.id, err)
			continue
		}
		h.loop.Emit(evloop.Event{HandleID: h.id, Kind: evloop.EventTCPAccept, Conn: conn})
	}
}

// readStart begins a per-connection read loop. Per spec: data emits the
// bytes, EOF emits an empty string then stops reading, any other error
// stops reading silently with no further event.
func (h *Handle) readStart() {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()
	if conn == nil {
		return
	}

	h.pin()
	go func() {
		defer h.unpin()
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				h.loop.Emit(evloop.Event{HandleID: h.id, Kind: evloop.EventTCPRead, Data: data})
			}
			if err == io.EOF {
				h.loop.Emit(evloop.Event{HandleID: h.id, Kind: evloop.EventTCPEOF})
				return
			}
			if err != nil {
				return
			}
		}
	}()
}

func (h *Handle) connect(ip string, port int64) {
	addr := net.JoinHostPort(ip, strconv.FormatInt(port, 10))
	h.pin()
	go func() {
		defer h.unpin()
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			h.loop.Emit(evloop.Event{HandleID: h.id, Kind: evloop.EventTCPConnectError})
			return
		}
		h.mu.Lock()
		h.conn = conn
		h.mu.Unlock()
		h.loop.Emit(evloop.Event{HandleID: h.id, Kind: evloop.EventTCPConnect, Conn: conn})
	}()
}

// write is a direct, synchronous send: uv:write has no completion
// callback in the word set, so there is nothing for the loop to
// dispatch back to a quotation once the bytes are on the wire.
func (h *Handle) write(data string, log *logx.Logger) {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()
	if conn == nil {
		return
	}
	if _, err := conn.Write([]byte(data)); err != nil {
		log.WarnCat(logx.CatTCP, "write on handle %s failed: %v", h.id, err)
	}
}

func (h *Handle) close() {
	h.mu.Lock()
	h.closing = true
	ln := h.listener
	conn := h.conn
	h.generation++
	h.armed = false
	h.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}

	h.unpin()

	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}
