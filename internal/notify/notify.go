// Package notify renders short operator-facing notices to the terminal.
package notify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// EnvDisable is the environment variable that disables notifications when set
// to "false". It is read once when the notifier is constructed.
const EnvDisable = "GUARD_NOTIFY"

// Notifier writes styled one-line notices. A disabled notifier swallows all
// output.
type Notifier struct {
	enabled bool
	out     io.Writer
	profile termenv.Profile
}

// New creates a notifier. The enabled flag comes from configuration; the
// GUARD_NOTIFY=false environment toggle overrides it.
func New(enabled bool) *Notifier {
	if os.Getenv(EnvDisable) == "false" {
		enabled = false
	}
	return &Notifier{
		enabled: enabled,
		out:     os.Stdout,
		profile: termenv.ColorProfile(),
	}
}

// NewWithWriter creates a notifier writing to w, for tests.
func NewWithWriter(enabled bool, w io.Writer) *Notifier {
	n := New(enabled)
	n.out = w
	n.profile = termenv.Ascii
	return n
}

// Enabled reports whether notices will be written.
func (n *Notifier) Enabled() bool {
	return n.enabled
}

func (n *Notifier) emit(color string, format string, args ...interface{}) {
	if !n.enabled {
		return
	}
	msg := fmt.Sprintf(format, args...)
	styled := termenv.String(msg).Foreground(n.profile.Color(color)).String()
	fmt.Fprintln(n.out, styled)
}

// Started announces that watching has begun.
func (n *Notifier) Started(roots []string) {
	n.emit("2", "guard is watching %s", strings.Join(roots, ", "))
}

// Paused announces that change delivery is suspended.
func (n *Notifier) Paused() {
	n.emit("3", "guard paused")
}

// Resumed announces that change delivery has resumed.
func (n *Notifier) Resumed() {
	n.emit("2", "guard resumed")
}

// Stopped announces shutdown.
func (n *Notifier) Stopped() {
	n.emit("3", "guard stopped")
}

// Reloaded reports the outcome of a guardfile reload.
func (n *Notifier) Reloaded(err error) {
	if err != nil {
		n.emit("1", "guardfile reload failed: %v", err)
		return
	}
	n.emit("2", "guardfile reloaded")
}

// DispatchFailed reports an individual plugin failure.
func (n *Notifier) DispatchFailed(plugin string, err error) {
	n.emit("1", "plugin %s failed: %v", plugin, err)
}

// UnresolvedScope reports scope tokens that matched nothing.
func (n *Notifier) UnresolvedScope(tokens []string) {
	n.emit("3", "unknown scope entries: %s", strings.Join(tokens, ", "))
}
