// Package console runs the interactive operator command loop. The session is
// an independently scheduled goroutine reading command lines; the signal
// layer can interrupt its current read, and the coordinator owns its
// lifecycle handle.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/jamesdabbs/guard/logging"
)

// Handler is what the console needs from the coordinator. All scope and
// state mutation happens behind the coordinator's dispatch guard; the console
// only reports results back to the operator.
type Handler interface {
	Pause()
	Resume()
	Reload() error

	// RequestStop asks the coordinator to stop the whole process. It must
	// not block: the console's own teardown is driven by the coordinator in
	// response.
	RequestStop()

	// SetScope applies resolved scope tokens and returns the tokens that
	// matched neither a group nor a plugin, in input order.
	SetScope(tokens []string) (unresolved []string)

	// ResetScope restores the full scope.
	ResetScope()

	// RunAll dispatches an empty batch to the active scope.
	RunAll()

	// Describe returns a printable summary of groups, plugins, and scope.
	Describe() string
}

// Session states.
const (
	stateStopped int32 = iota
	stateStarting
	stateRunning
)

// Session is the interactive console. At most one command loop is active at
// a time; Start on a running session is a no-op.
type Session struct {
	handler Handler
	in      io.Reader
	out     io.Writer
	logger  *logrus.Entry

	state atomic.Int32

	mu        sync.Mutex
	lines     chan string
	quit      chan struct{}
	interrupt chan struct{}
	done      chan struct{}
	stopping  bool
}

// Option configures a Session.
type Option func(*Session)

// WithInput replaces the input source, for tests.
func WithInput(r io.Reader) Option {
	return func(s *Session) { s.in = r }
}

// WithOutput replaces the output sink, for tests.
func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = w }
}

// New creates a console session bound to the handler.
func New(handler Handler, opts ...Option) *Session {
	s := &Session{
		handler: handler,
		in:      os.Stdin,
		out:     os.Stdout,
		logger:  logging.NewLogger("console"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Active reports whether a command loop is currently running.
func (s *Session) Active() bool {
	return s.state.Load() == stateRunning
}

// Handle returns the lifecycle handle of the active command loop, or nil when
// no session is active. The handle is closed when the loop exits; each Start
// produces a distinct handle.
func (s *Session) Handle() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return nil
	}
	return s.done
}

// Start spawns the command loop. It is a no-op if a loop is already active.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Load() != stateStopped {
		return nil
	}
	s.state.Store(stateStarting)

	s.stopping = false
	s.quit = make(chan struct{})
	s.interrupt = make(chan struct{}, 1)
	s.done = make(chan struct{})

	// One reader for the Session's lifetime. A second scanner over the same
	// input source would compete with a previous Start's reader for buffered
	// lines; the loop, not the reader, is what restarts.
	if s.lines == nil {
		s.lines = make(chan string)
		go s.read(s.lines)
	}
	go s.loop(s.lines, s.quit, s.interrupt, s.done)

	s.state.Store(stateRunning)
	s.logger.Debug("Console session started")
	return nil
}

// Stop signals the command loop to terminate, waits for it to exit, and
// clears the handle. Stopping a session that is not running is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state.Load() != stateRunning || s.stopping {
		s.mu.Unlock()
		return
	}
	s.stopping = true
	close(s.quit)
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Interrupt delivers an interrupt condition to the command loop, cancelling
// its current read. Delivery is non-blocking; a loop that already has a
// pending interrupt does not accumulate more.
func (s *Session) Interrupt() {
	s.mu.Lock()
	ch := s.interrupt
	s.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// read feeds input lines to the command loops. It exits on EOF or read error.
// The goroutine outlives individual loops while blocked on a read or a send;
// a line arriving between Stop and the next Start is held at the send and
// delivered to the next loop.
func (s *Session) read(lines chan<- string) {
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
	close(lines)
}

func (s *Session) loop(lines <-chan string, quit <-chan struct{}, interrupt <-chan struct{}, done chan<- struct{}) {
	defer func() {
		s.mu.Lock()
		s.state.Store(stateStopped)
		s.done = nil
		s.mu.Unlock()
		close(done)
		s.logger.Debug("Console session ended")
	}()

	for {
		fmt.Fprint(s.out, "guard> ")
		select {
		case <-quit:
			return
		case <-interrupt:
			// The interrupt lands here, not at the process level: an
			// active console turns "stop the process" into "cancel the
			// current read".
			fmt.Fprintln(s.out, "^C (input cancelled; type 'exit' to stop guard)")
		case line, ok := <-lines:
			if !ok {
				// EOF on input stops the whole process.
				fmt.Fprintln(s.out)
				s.handler.RequestStop()
				return
			}
			if exit := s.execute(line); exit {
				return
			}
		}
	}
}

// execute runs one command line, reporting whether the loop should exit.
func (s *Session) execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		s.handler.RunAll()
		return false
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "help", "h":
		s.printHelp()
	case "pause", "p":
		s.handler.Pause()
	case "resume", "go":
		s.handler.Resume()
	case "reload":
		if err := s.handler.Reload(); err != nil {
			fmt.Fprintf(s.out, "reload failed: %v\n", err)
		}
	case "scope":
		s.applyScope(args)
	case "show":
		fmt.Fprintln(s.out, s.handler.Describe())
	case "exit", "quit", "stop", "q":
		s.handler.RequestStop()
		return true
	default:
		fmt.Fprintf(s.out, "unknown command %q (try 'help')\n", cmd)
	}
	return false
}

func (s *Session) applyScope(args []string) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "reset") {
		s.handler.ResetScope()
		fmt.Fprintln(s.out, "scope reset")
		return
	}

	unresolved := s.handler.SetScope(args)
	if len(unresolved) > 0 {
		fmt.Fprintf(s.out, "unknown scope entries: %s\n", strings.Join(unresolved, ", "))
	}
}

func (s *Session) printHelp() {
	fmt.Fprint(s.out, `commands:
  <enter>          run all plugins in the active scope
  pause, p         pause watching
  resume, go       resume watching
  reload           re-evaluate the guardfile
  scope <names>    restrict dispatch to the named groups/plugins
  scope reset      restore the full scope
  show             list groups, plugins, and the active scope
  exit, quit       stop guard
`)
}
