package uv

import (
	"github.com/RickCarlino/solar-forth/internal/logx"
	"github.com/RickCarlino/solar-forth/internal/uv/evloop"
	"github.com/RickCarlino/solar-forth/internal/vm"
)

// Binder owns the native loop and Handle registry, and installs the
// uv:* words into a vm.Dictionary. It is deliberately the only bridge
// between internal/vm and internal/uv/evloop, so vm stays free of any
// import on this package (see vm.Handle).
type Binder struct {
	loop *evloop.Loop
	reg  *Registry
	log  *logx.Logger
}

// NewBinder constructs a Binder with a fresh loop and handle registry.
func NewBinder(log *logx.Logger) *Binder {
	return &Binder{
		loop: evloop.New(),
		reg:  NewRegistry(log),
		log:  log,
	}
}

// Bind installs every uv:* word from spec into d.
func (b *Binder) Bind(d *vm.Dictionary) {
	d.AddPrimitive("uv:timer", b.primTimer)
	d.AddPrimitive("uv:timer-start", b.primTimerStart)
	d.AddPrimitive("uv:timer-stop", b.primTimerStop)

	d.AddPrimitive("uv:tcp", b.primTCP)
	d.AddPrimitive("uv:tcp-bind", b.primTCPBind)
	d.AddPrimitive("uv:listen", b.primListen)
	d.AddPrimitive("uv:read-start", b.primReadStart)
	d.AddPrimitive("uv:tcp-connect", b.primTCPConnect)
	d.AddPrimitive("uv:write", b.primWrite)

	d.AddPrimitive("uv:close", b.primClose)
	d.AddPrimitive("uv:run", b.primRun)
}

func (b *Binder) primTimer(it *vm.Interp) error {
	h := b.reg.newHandle(b.loop, KindTimer)
	it.Stack.Push(vm.HandleValue(h))
	return nil
}

func (b *Binder) primTimerStart(it *vm.Interp) error {
	q, err := it.Stack.PopQuote()
	if err != nil {
		return err
	}
	repeatMS, err := it.Stack.PopInt()
	if err != nil {
		return err
	}
	timeoutMS, err := it.Stack.PopInt()
	if err != nil {
		return err
	}
	h, err := popHandle(it)
	if err != nil {
		return err
	}
	h.setCallback(q)
	h.startTimer(timeoutMS, repeatMS)
	return nil
}

func (b *Binder) primTimerStop(it *vm.Interp) error {
	h, err := popHandle(it)
	if err != nil {
		return err
	}
	h.stopTimer()
	return nil
}

func (b *Binder) primTCP(it *vm.Interp) error {
	h := b.reg.newHandle(b.loop, KindTCP)
	it.Stack.Push(vm.HandleValue(h))
	return nil
}

func (b *Binder) primTCPBind(it *vm.Interp) error {
	port, err := it.Stack.PopInt()
	if err != nil {
		return err
	}
	ip, err := it.Stack.PopString()
	if err != nil {
		return err
	}
	h, err := popHandle(it)
	if err != nil {
		return err
	}
	h.bind(ip, port, b.log)
	return nil
}

func (b *Binder) primListen(it *vm.Interp) error {
	q, err := it.Stack.PopQuote()
	if err != nil {
		return err
	}
	backlog, err := it.Stack.PopInt()
	if err != nil {
		return err
	}
	h, err := popHandle(it)
	if err != nil {
		return err
	}
	h.setCallback(q)
	h.listen(backlog, b.log)
	return nil
}

func (b *Binder) primReadStart(it *vm.Interp) error {
	q, err := it.Stack.PopQuote()
	if err != nil {
		return err
	}
	h, err := popHandle(it)
	if err != nil {
		return err
	}
	h.setCallback(q)
	h.readStart()
	return nil
}

func (b *Binder) primTCPConnect(it *vm.Interp) error {
	q, err := it.Stack.PopQuote()
	if err != nil {
		return err
	}
	port, err := it.Stack.PopInt()
	if err != nil {
		return err
	}
	ip, err := it.Stack.PopString()
	if err != nil {
		return err
	}
	h, err := popHandle(it)
	if err != nil {
		return err
	}
	h.setCallback(q)
	h.connect(ip, port)
	return nil
}

func (b *Binder) primWrite(it *vm.Interp) error {
	str, err := it.Stack.PopString()
	if err != nil {
		return err
	}
	h, err := popHandle(it)
	if err != nil {
		return err
	}
	h.write(str, b.log)
	return nil
}

func (b *Binder) primClose(it *vm.Interp) error {
	h, err := popHandle(it)
	if err != nil {
		return err
	}
	h.close()
	b.reg.release(h.id)
	return nil
}

// primRun drives the native loop until no handle keeps it pinned,
// dispatching each Event onto the interpreter by pushing its
// synthetic arguments and invoking the owning Handle's stored
// callback quotation (spec §4.6). This is the only primitive that
// suspends: everything else runs to completion immediately. A fatal
// error out of a callback (stack underflow, unknown word, ...) stops
// the loop and returns immediately, even with a repeating timer or an
// open read/accept still pinning it — matching original_source's
// exit(1) on the same class of error instead of spinning forever.
func (b *Binder) primRun(it *vm.Interp) error {
	return b.loop.Run(func(ev evloop.Event) error {
		return b.dispatch(it, ev)
	})
}

func (b *Binder) dispatch(it *vm.Interp, ev evloop.Event) error {
	h, ok := b.reg.Get(ev.HandleID)
	if !ok {
		return nil // closed before the event was processed; drop it.
	}

	switch ev.Kind {
	case evloop.EventTimerTick:
		return b.invokeCallback(it, h, func() {
			it.Stack.Push(vm.HandleValue(h))
		})

	case evloop.EventTCPAccept:
		client := b.reg.newHandle(b.loop, KindTCP)
		client.mu.Lock()
		client.conn = ev.Conn
		client.mu.Unlock()
		return b.invokeCallback(it, h, func() {
			it.Stack.Push(vm.HandleValue(client))
		})

	case evloop.EventTCPConnect:
		return b.invokeCallback(it, h, func() {
			it.Stack.Push(vm.HandleValue(h))
		})

	case evloop.EventTCPConnectError:
		return nil // suppressed per spec

	case evloop.EventTCPRead:
		return b.invokeCallback(it, h, func() {
			it.Stack.Push(vm.HandleValue(h))
			it.Stack.Push(vm.StringValue(string(ev.Data)))
		})

	case evloop.EventTCPEOF:
		err := b.invokeCallback(it, h, func() {
			it.Stack.Push(vm.HandleValue(h))
			it.Stack.Push(vm.StringValue(""))
		})
		return err
	}
	return nil
}

func (b *Binder) invokeCallback(it *vm.Interp, h *Handle, pushArgs func()) error {
	q, ok := h.getCallback()
	if !ok {
		return nil
	}
	pushArgs()
	return it.CallQuote(q)
}

func popHandle(it *vm.Interp) (*Handle, error) {
	raw, err := it.Stack.PopHandle()
	if err != nil {
		return nil, err
	}
	h, ok := raw.(*Handle)
	if !ok {
		return nil, vm.Fatalf("internal: handle value did not originate from internal/uv")
	}
	return h, nil
}
