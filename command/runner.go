// Package command runs external commands on behalf of plugins, with an
// optional debug decorator that logs every invocation.
package command

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jamesdabbs/guard/errors"
	"github.com/jamesdabbs/guard/logging"
)

const (
	// DefaultTimeout is the default command execution timeout
	DefaultTimeout = 2 * time.Minute

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute
)

// runFunc executes one external command.
type runFunc func(ctx context.Context, dir, name string, args []string) error

// Runner executes external commands with a bounded timeout. When constructed
// with debug enabled, every invocation is logged through an explicit wrapper
// selected at construction time.
type Runner struct {
	executor Executor
	timeout  time.Duration
	logger   *logrus.Entry
	run      runFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor replaces the executor used to create commands.
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		r.executor = exec
	}
}

// WithTimeout sets the per-command timeout, capped at MaxTimeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > MaxTimeout {
			d = MaxTimeout
		}
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRunner creates a Runner. The debug flag selects the logging decorator
// around command execution; it is a construction-time choice, not a mutable
// mode.
func NewRunner(debug bool, opts ...Option) *Runner {
	r := &Runner{
		executor: &RealExecutor{},
		timeout:  DefaultTimeout,
		logger:   logging.NewLogger("command"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.run = r.execute
	if debug {
		r.run = withDebugLogging(r.logger, r.execute)
	}
	return r
}

// Run executes the command and waits for it to finish. Stdout and stderr are
// inherited so plugin output reaches the operator directly.
func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) error {
	return r.run(ctx, dir, name, args)
}

func (r *Runner) execute(ctx context.Context, dir, name string, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := r.executor.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.Wrap(err, errors.ErrCodeCommandTimeout, "command timed out").
				WithDetail("command", name)
		}
		return errors.CommandFailed(name, err)
	}
	return nil
}

// withDebugLogging wraps a runFunc so each invocation logs the full command
// line and its duration.
func withDebugLogging(logger *logrus.Entry, fn runFunc) runFunc {
	return func(ctx context.Context, dir, name string, args []string) error {
		line := name
		if len(args) > 0 {
			line += " " + strings.Join(args, " ")
		}
		logger.WithField("dir", dir).Infof("Running command: %s", line)

		start := time.Now()
		err := fn(ctx, dir, name, args)
		elapsed := time.Since(start).Round(time.Millisecond)

		if err != nil {
			logger.WithField("duration", elapsed).Warnf("Command failed: %s (%v)", line, err)
		} else {
			logger.WithField("duration", elapsed).Infof("Command finished: %s", line)
		}
		return err
	}
}
