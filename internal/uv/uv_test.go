package uv

import (
	"bufio"
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RickCarlino/solar-forth/internal/logx"
	"github.com/RickCarlino/solar-forth/internal/vm"
)

func newTestSetup() (*vm.Interp, *Binder, *bytes.Buffer) {
	var buf bytes.Buffer
	it := vm.New(bufio.NewWriter(&buf))
	b := NewBinder(logx.New(false))
	b.Bind(it.Dict)
	return it, b, &buf
}

func runSrc(t *testing.T, it *vm.Interp, src string) {
	t.Helper()
	require.NoError(t, it.Run(vm.Tokenize([]byte(src))))
}

// TestOneShotTimerFiresOnce grounds spec §8 scenario 2: a zero-delay,
// non-repeating timer ticks exactly once, and uv:run returns once the
// callback calls bye and the timer has nothing left pinning the loop.
func TestOneShotTimerFiresOnce(t *testing.T) {
	it, _, out := newTestSetup()
	runSrc(t, it, `uv:timer 0 0 [ drop "tick" print cr bye ] uv:timer-start uv:run`)
	require.Equal(t, "tick\n", out.String())
	require.False(t, it.Running())
}

// TestTimerStopBeforeRunNeverFires confirms uv:timer-stop unpins the
// loop immediately, so a stopped timer never ticks even once uv:run is
// reached.
func TestTimerStopBeforeRunNeverFires(t *testing.T) {
	it, _, out := newTestSetup()
	runSrc(t, it, `
		uv:timer
		dup 20 20 [ drop "a" print ] uv:timer-start
		dup uv:timer-stop
		drop
		uv:run
	`)
	require.Empty(t, out.String())
}

// TestRepeatingTimerCallbackFatalErrorStopsLoop guards against a
// repeating timer whose callback underflows the stack spinning forever:
// the handle stays pinned (repeat > 0), so uv:run must stop on the
// dispatch error itself rather than waiting for ActiveCount to drain.
func TestRepeatingTimerCallbackFatalErrorStopsLoop(t *testing.T) {
	it, _, _ := newTestSetup()
	runSrc(t, it, `uv:timer 10 10 [ drop drop ] uv:timer-start`)

	runDone := make(chan error, 1)
	go func() {
		runDone <- it.Run(vm.Tokenize([]byte("uv:run")))
	}()

	select {
	case err := <-runDone:
		require.Error(t, err)
		require.IsType(t, &vm.FatalError{}, err)
	case <-time.After(2 * time.Second):
		t.Fatal("uv:run did not return after a fatal callback error on a repeating timer")
	}
}

func TestHandleRegistryReleasesOnClose(t *testing.T) {
	it, b, _ := newTestSetup()
	runSrc(t, it, `uv:timer`)
	v, err := it.Stack.Pop()
	require.NoError(t, err)
	h := v.Handle.(*Handle)

	_, ok := b.reg.Get(h.id)
	require.True(t, ok)

	h.close()
	b.reg.release(h.id)
	_, ok = b.reg.Get(h.id)
	require.False(t, ok)
}

// TestEchoServerRoundTrip grounds spec §8 scenario 5: bind, listen with
// a callback that reads and writes back every byte received, and
// confirm a client sees exactly what it sent echoed back.
func TestEchoServerRoundTrip(t *testing.T) {
	it, b, _ := newTestSetup()

	src := `
		uv:tcp
		dup "127.0.0.1" 18732 uv:tcp-bind
		16 [ [ uv:write ] uv:read-start ] uv:listen
	`
	runSrc(t, it, src)

	runDone := make(chan error, 1)
	go func() {
		runDone <- it.Run(vm.Tokenize([]byte("uv:run")))
	}()

	// Give the accept goroutine a moment to start listening.
	time.Sleep(50 * time.Millisecond)

	conn, err := net.Dial("tcp", "127.0.0.1:18732")
	require.NoError(t, err)
	_, err = conn.Write([]byte("hello"))
	require.NoError(t, err)

	buf := make([]byte, 5)
	_, err = conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf))

	conn.Close()

	// Closing the listening handle unblocks Accept and drops the loop's
	// active count to zero, letting uv:run return.
	for _, h := range snapshotHandles(b.reg) {
		h.close()
		b.reg.release(h.id)
	}

	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("uv:run did not return after closing all handles")
	}
}

// TestBindRejectsInvalidIPv4 grounds spec §4.6's "parse ip as IPv4":
// an unparseable or non-IPv4 address must not leave the handle bound.
func TestBindRejectsInvalidIPv4(t *testing.T) {
	it, b, _ := newTestSetup()
	runSrc(t, it, `uv:tcp`)
	v, err := it.Stack.Pop()
	require.NoError(t, err)
	h := v.Handle.(*Handle)

	h.bind("not-an-ip", 8080, b.log)
	require.False(t, h.bound)
}

// TestBindRejectsOutOfRangePort grounds spec §4.6's "port is 16-bit range".
func TestBindRejectsOutOfRangePort(t *testing.T) {
	it, b, _ := newTestSetup()
	runSrc(t, it, `uv:tcp`)
	v, err := it.Stack.Pop()
	require.NoError(t, err)
	h := v.Handle.(*Handle)

	h.bind("127.0.0.1", 70000, b.log)
	require.False(t, h.bound)
}

// TestListenOnUnboundHandleDoesNotPinLoop confirms a bind failure is
// reported and non-fatal (spec §4.7): listen refuses to start an accept
// loop on a handle that never bound successfully, so it never pins the
// loop, and uv:run returns immediately instead of hanging.
func TestListenOnUnboundHandleDoesNotPinLoop(t *testing.T) {
	it, b, _ := newTestSetup()
	runSrc(t, it, `uv:tcp dup "bad ip" 80 uv:tcp-bind 16 [ ] uv:listen`)
	require.Equal(t, int64(0), b.loop.ActiveCount())
	require.NoError(t, it.Run(vm.Tokenize([]byte("uv:run"))))
}

func snapshotHandles(r *Registry) []*Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h)
	}
	return out
}
