// Package session is the coordination core: the run-state machine, the
// dispatch guard, scope resolution, path normalization, and the coordinator
// that wires the watch backend, the console, and OS signals to plugin
// dispatch.
package session

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jamesdabbs/guard/errors"
	"github.com/jamesdabbs/guard/internal/notify"
	"github.com/jamesdabbs/guard/logging"
	"github.com/jamesdabbs/guard/plugin"
)

// Subscription is the watch backend as the coordinator sees it: a black box
// that runs until cancelled and can suspend batch delivery.
type Subscription interface {
	Run(ctx context.Context) error
	Pause()
	Resume()
}

// Evaluator is the configuration evaluator contract.
type Evaluator interface {
	Evaluate() (*plugin.Registry, error)
	Reevaluate() (*plugin.Registry, error)
	IsConfigFile(path string) bool
}

// Console is the interactive session as the coordinator sees it. The
// coordinator exclusively owns the session's lifecycle.
type Console interface {
	Start() error
	Stop()
	Active() bool
	Interrupt()
}

// control messages processed by the dedicated control goroutine. Signals and
// console requests both land here so no state transition runs in signal
// context.
type controlMsg int

const (
	ctlPause controlMsg = iota
	ctlResume
	ctlInterrupt
	ctlStop
)

// Options configures a Coordinator.
type Options struct {
	// Evaluator builds the plugin registry from the guardfile. Required.
	Evaluator Evaluator

	// Roots is the immutable watch root set. Must be non-empty.
	Roots []string

	// Subscribe constructs the watch backend around the coordinator's
	// change callback. Required.
	Subscribe func(callback func(plugin.Batch)) (Subscription, error)

	// Notifier may be nil, in which case notices are dropped.
	Notifier *notify.Notifier

	// InitialScope restricts dispatch from startup, e.g. from CLI flags.
	InitialScope []string
}

// Coordinator owns the run state, the watch subscription, the console
// session, and the active scope, and ties change batches through
// normalization and the dispatch guard to the plugins in scope.
type Coordinator struct {
	evaluator Evaluator
	roots     []string
	subscribe func(callback func(plugin.Batch)) (Subscription, error)
	notifier  *notify.Notifier
	logger    *logrus.Entry

	state State
	guard DispatchGuard

	// registry and scope are mutated only under the dispatch guard.
	registry *plugin.Registry
	scope    Scope

	watch   Subscription
	console Console
	control chan controlMsg

	runCtx context.Context
	cancel context.CancelFunc

	initialScope []string
}

// New validates the options and creates a coordinator. An empty watch root
// set is a fatal startup error; nothing is started yet.
func New(opts Options) (*Coordinator, error) {
	if len(opts.Roots) == 0 {
		return nil, errors.NoWatchRoots()
	}
	if opts.Evaluator == nil || opts.Subscribe == nil {
		return nil, errors.New(errors.ErrCodeInternal, "coordinator requires an evaluator and a subscribe function")
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewWithWriter(false, nil)
	}

	return &Coordinator{
		evaluator:    opts.Evaluator,
		roots:        opts.Roots,
		subscribe:    opts.Subscribe,
		notifier:     notifier,
		logger:       logging.NewLogger("session"),
		registry:     plugin.NewRegistry(),
		control:      make(chan controlMsg, 16),
		initialScope: opts.InitialScope,
		runCtx:       context.Background(),
	}, nil
}

// AttachConsole hands the coordinator the console session whose lifecycle it
// owns. Must be called before Start.
func (c *Coordinator) AttachConsole(console Console) {
	c.console = console
}

// State returns the current run state. The read is advisory.
func (c *Coordinator) State() RunState {
	return c.state.Current()
}

// Roots returns the immutable watch root set.
func (c *Coordinator) Roots() []string {
	return c.roots
}

// Setup evaluates the guardfile and constructs the watch subscription. An
// evaluation failure is reported but not fatal: the process watches with
// zero effective plugins until the operator fixes the guardfile and
// reloads. A subscription failure is fatal.
func (c *Coordinator) Setup() error {
	reg, err := c.evaluator.Evaluate()
	if err != nil {
		c.logger.WithError(err).Warn("Guardfile evaluation failed; watching with no plugins until reload")
	} else {
		c.registry = reg
	}

	if len(c.initialScope) > 0 {
		res := ResolveScope(c.registry, c.initialScope)
		if len(res.Unresolved) > 0 {
			c.notifier.UnresolvedScope(res.Unresolved)
			c.logger.Warnf("Unknown scope entries: %s", strings.Join(res.Unresolved, ", "))
		}
		c.scope = res.Scope()
	}

	sub, err := c.subscribe(c.onChanges)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeWatchFailed, "failed to establish watch subscription")
	}
	c.watch = sub
	return nil
}

// Start runs the watch subscription and the control goroutine, starts the
// console if one is attached, and blocks until the coordinator stops or the
// context is cancelled.
func (c *Coordinator) Start(ctx context.Context) error {
	if c.watch == nil {
		return errors.New(errors.ErrCodeInternal, "Setup must run before Start")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.runCtx = runCtx
	c.cancel = cancel
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return c.watch.Run(gctx) })
	g.Go(func() error { return c.controlLoop(gctx) })

	if c.console != nil {
		if err := c.console.Start(); err != nil {
			c.logger.WithError(err).Warn("Console failed to start")
		}
	}

	c.logger.WithField("roots", strings.Join(c.roots, ",")).Info("Watching")
	c.notifier.Started(c.roots)

	err := g.Wait()

	// External cancellation takes the same teardown path as Stop.
	c.Stop()
	return err
}

// onChanges is the watch backend callback. A batch touching the guardfile
// triggers a reload; anything else is dispatched to the active scope.
func (c *Coordinator) onChanges(batch plugin.Batch) {
	if c.isReloadBatch(batch) {
		if err := c.Reload(); err != nil {
			c.logger.WithError(err).Error("Reload failed; previous configuration stays active")
		}
		return
	}
	c.dispatch(batch)
}

func (c *Coordinator) isReloadBatch(batch plugin.Batch) bool {
	for _, p := range batch.Modified {
		if c.evaluator.IsConfigFile(p) {
			return true
		}
	}
	for _, p := range batch.Added {
		if c.evaluator.IsConfigFile(p) {
			return true
		}
	}
	return false
}

// dispatch delivers one batch to every plugin in the active scope, in scope
// order, under the dispatch guard. A plugin failure is contained at the
// per-plugin boundary.
func (c *Coordinator) dispatch(batch plugin.Batch) {
	c.guard.Exclusive(func() {
		if !c.state.Running() {
			return
		}

		normalized := NormalizeBatch(batch, c.roots)
		for _, inst := range c.activePlugins() {
			filtered := inst.Filter(normalized)
			if filtered.Empty() && len(inst.Patterns) > 0 {
				continue
			}

			if err := inst.Plugin.OnChanges(c.runCtx, filtered); err != nil {
				dispatchErr := errors.DispatchFailed(inst.Name(), err)
				c.logger.WithField("plugin", inst.Name()).Error(dispatchErr.Error())
				c.notifier.DispatchFailed(inst.Name(), err)
			}
		}
	})
}

// activePlugins returns the dispatch order for the current scope: plugins of
// each scoped group first, then explicitly scoped plugins, deduplicated. An
// empty scope yields the whole registry. Callers hold the dispatch guard.
func (c *Coordinator) activePlugins() []*plugin.Instance {
	if c.scope.Empty() {
		return c.registry.Plugins()
	}

	seen := make(map[*plugin.Instance]bool)
	var out []*plugin.Instance
	add := func(inst *plugin.Instance) {
		if !seen[inst] {
			seen[inst] = true
			out = append(out, inst)
		}
	}

	for _, g := range c.scope.Groups {
		for _, inst := range c.registry.PluginsInGroup(g) {
			add(inst)
		}
	}
	for _, inst := range c.scope.Plugins {
		add(inst)
	}
	return out
}

// Pause suspends batch delivery. A no-op unless RUNNING.
func (c *Coordinator) Pause() {
	if !c.state.Running() { // advisory check, unguarded
		return
	}
	c.guard.Exclusive(func() {
		if c.state.TryPause() {
			c.watch.Pause()
			c.logger.Info("Paused")
			c.notifier.Paused()
		}
	})
}

// Resume re-enables batch delivery. A no-op unless PAUSED.
func (c *Coordinator) Resume() {
	if !c.state.Paused() { // advisory check, unguarded
		return
	}
	c.guard.Exclusive(func() {
		if c.state.TryResume() {
			c.watch.Resume()
			c.logger.Info("Resumed")
			c.notifier.Resumed()
		}
	})
}

// Stop transitions to STOPPED and tears everything down. The transition
// happens under the dispatch guard so an in-flight dispatch completes first;
// teardown happens outside it so a console command blocked on the guard can
// drain. Stop is idempotent and terminal.
func (c *Coordinator) Stop() {
	var stopped bool
	c.guard.Exclusive(func() {
		stopped = c.state.TryStop()
	})
	if !stopped {
		return
	}

	c.logger.Info("Stopping")
	if c.console != nil {
		c.console.Stop()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.notifier.Stopped()
}

// Reload re-evaluates the guardfile under the dispatch guard. On failure the
// previous registry and scope stay active; on success the registry is
// replaced and the scope reset to full.
func (c *Coordinator) Reload() error {
	var err error
	c.guard.Exclusive(func() {
		if c.state.Stopped() {
			return
		}

		reg, e := c.evaluator.Reevaluate()
		if e != nil {
			err = e
			return
		}
		c.registry = reg
		c.scope = Scope{}
		c.logger.Info("Guardfile reloaded")
	})
	c.notifier.Reloaded(err)
	return err
}

// Interrupt routes an external interrupt condition. An active console
// observes it as a cancelled read; without a console it stops the process.
// This delegation rule is the interrupt-routing policy of the whole daemon.
func (c *Coordinator) Interrupt() {
	if c.console != nil && c.console.Active() {
		c.console.Interrupt()
		return
	}
	c.Stop()
}

// RequestStop asks the control goroutine to stop the process. Non-blocking;
// used by the console so its own teardown is never self-joining.
func (c *Coordinator) RequestStop() {
	select {
	case c.control <- ctlStop:
	default:
	}
}

// SetScope resolves tokens and atomically replaces the active scope with the
// resolved delta. Tokens matching nothing are returned in input order; if no
// token resolves, the previous scope stays active.
func (c *Coordinator) SetScope(tokens []string) []string {
	var unresolved []string
	c.guard.Exclusive(func() {
		res := ResolveScope(c.registry, tokens)
		unresolved = res.Unresolved
		if !res.Scope().Empty() {
			c.scope = res.Scope()
		}
	})
	if len(unresolved) > 0 {
		c.notifier.UnresolvedScope(unresolved)
	}
	return unresolved
}

// ResetScope restores the full scope.
func (c *Coordinator) ResetScope() {
	c.guard.Exclusive(func() {
		c.scope = Scope{}
	})
}

// RunAll dispatches an empty batch to the active scope, letting plugins that
// opt in run without a file change.
func (c *Coordinator) RunAll() {
	c.dispatch(plugin.Batch{})
}

// Describe renders the registry and active scope for the console.
func (c *Coordinator) Describe() string {
	var b strings.Builder
	c.guard.Exclusive(func() {
		fmt.Fprintf(&b, "state: %s\n", c.state.Current())

		inScope := make(map[*plugin.Instance]bool)
		for _, inst := range c.activePlugins() {
			inScope[inst] = true
		}
		scoped := !c.scope.Empty()

		for _, g := range c.registry.Groups() {
			fmt.Fprintf(&b, "group %s:\n", g.Name)
			for _, inst := range c.registry.PluginsInGroup(g) {
				mark := " "
				if scoped && inScope[inst] {
					mark = "*"
				}
				fmt.Fprintf(&b, "  %s %s\n", mark, inst.Name())
			}
		}
		if scoped {
			fmt.Fprint(&b, "(* = in active scope)")
		} else {
			fmt.Fprint(&b, "scope: all")
		}
	})
	return b.String()
}

// controlLoop is the dedicated control goroutine: it receives signal and
// console requests and performs the corresponding transitions outside signal
// context.
func (c *Coordinator) controlLoop(ctx context.Context) error {
	sigs := make(chan os.Signal, 8)
	registerSignals(sigs)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-c.control:
			c.handleControl(msg)
		case sig := <-sigs:
			c.handleControl(classifySignal(sig))
		}
	}
}

func (c *Coordinator) handleControl(msg controlMsg) {
	switch msg {
	case ctlPause:
		c.Pause()
	case ctlResume:
		c.Resume()
	case ctlStop:
		c.Stop()
	case ctlInterrupt:
		c.Interrupt()
	}
}
