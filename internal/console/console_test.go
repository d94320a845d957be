package console

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedHandler struct {
	mu         sync.Mutex
	pauses     int
	resumes    int
	reloads    int
	stops      int
	runAlls    int
	resets     int
	scopes     [][]string
	unresolved []string
}

func (h *scriptedHandler) Pause()        { h.mu.Lock(); h.pauses++; h.mu.Unlock() }
func (h *scriptedHandler) Resume()       { h.mu.Lock(); h.resumes++; h.mu.Unlock() }
func (h *scriptedHandler) Reload() error { h.mu.Lock(); h.reloads++; h.mu.Unlock(); return nil }
func (h *scriptedHandler) RequestStop()  { h.mu.Lock(); h.stops++; h.mu.Unlock() }
func (h *scriptedHandler) RunAll()       { h.mu.Lock(); h.runAlls++; h.mu.Unlock() }
func (h *scriptedHandler) ResetScope()   { h.mu.Lock(); h.resets++; h.mu.Unlock() }

func (h *scriptedHandler) SetScope(tokens []string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scopes = append(h.scopes, tokens)
	return h.unresolved
}

func (h *scriptedHandler) Describe() string { return "state: running" }

func (h *scriptedHandler) counts() (pauses, resumes, reloads, stops, runAlls, resets int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pauses, h.resumes, h.reloads, h.stops, h.runAlls, h.resets
}

// syncBuffer is a bytes.Buffer safe for concurrent use, since the loop
// goroutine writes while tests read.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// blockingReader never produces input, keeping the loop alive until stopped.
type blockingReader struct {
	unblock chan struct{}
}

func newBlockingReader() *blockingReader {
	return &blockingReader{unblock: make(chan struct{})}
}

func (r *blockingReader) Read(p []byte) (int, error) {
	<-r.unblock
	return 0, io.EOF
}

func (r *blockingReader) release() { close(r.unblock) }

func waitInactive(t *testing.T, s *Session) {
	t.Helper()
	require.Eventually(t, func() bool { return !s.Active() }, 2*time.Second, 5*time.Millisecond)
}

func TestStartTwiceKeepsOneHandle(t *testing.T) {
	r := newBlockingReader()
	defer r.release()

	s := New(&scriptedHandler{}, WithInput(r), WithOutput(io.Discard))
	require.NoError(t, s.Start())
	first := s.Handle()
	require.NotNil(t, first)

	require.NoError(t, s.Start(), "second start must be a no-op")
	assert.Equal(t, first, s.Handle(), "double start must not replace the handle")

	s.Stop()
	assert.Nil(t, s.Handle(), "stop must clear the handle")
}

func TestStopThenStartProducesNewHandle(t *testing.T) {
	r := newBlockingReader()
	defer r.release()

	s := New(&scriptedHandler{}, WithInput(r), WithOutput(io.Discard))
	require.NoError(t, s.Start())
	first := s.Handle()

	s.Stop()
	waitInactive(t, s)

	require.NoError(t, s.Start())
	second := s.Handle()

	require.NotNil(t, second)
	assert.NotEqual(t, first, second, "a restarted session gets a distinct handle")
	s.Stop()
}

func TestRestartReusesSingleReader(t *testing.T) {
	h := &scriptedHandler{}
	pr, pw := io.Pipe()
	s := New(h, WithInput(pr), WithOutput(io.Discard))

	require.NoError(t, s.Start())
	_, err := io.WriteString(pw, "pause\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		pauses, _, _, _, _, _ := h.counts()
		return pauses == 1
	}, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	waitInactive(t, s)

	// A line arriving between Stop and the next Start must reach the
	// restarted loop, not a stale scanner over the same input.
	_, err = io.WriteString(pw, "resume\n")
	require.NoError(t, err)

	require.NoError(t, s.Start())
	require.Eventually(t, func() bool {
		_, resumes, _, _, _, _ := h.counts()
		return resumes == 1
	}, 2*time.Second, 5*time.Millisecond, "input buffered across a restart must not be lost")

	pauses, _, _, _, _, _ := h.counts()
	assert.Equal(t, 1, pauses, "the restarted loop must not replay earlier input")
	s.Stop()
}

func TestStopWhenNotRunningIsNoOp(t *testing.T) {
	s := New(&scriptedHandler{}, WithInput(strings.NewReader("")), WithOutput(io.Discard))
	s.Stop() // must not panic or block
	assert.False(t, s.Active())
}

func TestCommandsReachHandler(t *testing.T) {
	h := &scriptedHandler{}
	input := "pause\nresume\nreload\n\nscope backend rspec\nscope reset\nexit\n"
	s := New(h, WithInput(strings.NewReader(input)), WithOutput(io.Discard))

	require.NoError(t, s.Start())
	waitInactive(t, s)

	pauses, resumes, reloads, stops, runAlls, resets := h.counts()
	assert.Equal(t, 1, pauses)
	assert.Equal(t, 1, resumes)
	assert.Equal(t, 1, reloads)
	assert.Equal(t, 1, stops, "exit must request a stop")
	assert.Equal(t, 1, runAlls, "a blank line runs everything")
	assert.Equal(t, 1, resets)
	assert.Equal(t, [][]string{{"backend", "rspec"}}, h.scopes)
}

func TestUnresolvedScopeTokensReported(t *testing.T) {
	h := &scriptedHandler{unresolved: []string{"bogus"}}
	var out bytes.Buffer
	s := New(h, WithInput(strings.NewReader("scope bogus\nexit\n")), WithOutput(&out))

	require.NoError(t, s.Start())
	waitInactive(t, s)

	assert.Contains(t, out.String(), "unknown scope entries: bogus")
}

func TestUnknownCommandDoesNotCrash(t *testing.T) {
	h := &scriptedHandler{}
	var out bytes.Buffer
	s := New(h, WithInput(strings.NewReader("frobnicate\nexit\n")), WithOutput(&out))

	require.NoError(t, s.Start())
	waitInactive(t, s)

	assert.Contains(t, out.String(), "unknown command")
	_, _, _, stops, _, _ := h.counts()
	assert.Equal(t, 1, stops)
}

func TestEOFRequestsStop(t *testing.T) {
	h := &scriptedHandler{}
	s := New(h, WithInput(strings.NewReader("")), WithOutput(io.Discard))

	require.NoError(t, s.Start())
	waitInactive(t, s)

	_, _, _, stops, _, _ := h.counts()
	assert.Equal(t, 1, stops, "EOF on input must stop the whole process")
}

func TestInterruptIsObservedByConsole(t *testing.T) {
	h := &scriptedHandler{}
	r := newBlockingReader()
	defer r.release()
	out := &syncBuffer{}

	s := New(h, WithInput(r), WithOutput(out))
	require.NoError(t, s.Start())

	s.Interrupt()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "input cancelled")
	}, 2*time.Second, 5*time.Millisecond)

	assert.True(t, s.Active(), "an interrupt cancels the read, not the session")
	_, _, _, stops, _, _ := h.counts()
	assert.Zero(t, stops, "the interrupt must not stop the process while the console is active")

	s.Stop()
}
