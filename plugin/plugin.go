// Package plugin defines the contract between the guard session and the work
// handlers it dispatches file changes to, plus the registry that groups and
// plugin instances are resolved from.
package plugin

import "context"

// Plugin is a configured unit of work that reacts to file-change batches.
// OnChanges receives watch-root-relative paths and is invoked once per
// dispatch. Returning an error marks the plugin's run as failed; it does not
// stop the remaining plugins in the same dispatch.
type Plugin interface {
	Name() string
	OnChanges(ctx context.Context, batch Batch) error
}

// Batch is one debounced set of file-system changes. Paths are absolute when
// produced by the watch backend and watch-root-relative once normalized for
// dispatch. A Batch is ephemeral: constructed per notification, discarded
// after dispatch.
type Batch struct {
	Modified []string
	Added    []string
	Removed  []string
}

// Empty reports whether the batch contains no paths in any category.
func (b Batch) Empty() bool {
	return len(b.Modified) == 0 && len(b.Added) == 0 && len(b.Removed) == 0
}

// Paths returns all paths in the batch, modified first, then added, then
// removed.
func (b Batch) Paths() []string {
	out := make([]string, 0, len(b.Modified)+len(b.Added)+len(b.Removed))
	out = append(out, b.Modified...)
	out = append(out, b.Added...)
	out = append(out, b.Removed...)
	return out
}

// Factory constructs a plugin from its instance name and the free-form
// options map found in the guardfile.
type Factory func(name string, options map[string]interface{}) (Plugin, error)

// FactoryMap maps guardfile `use` names to plugin factories.
type FactoryMap map[string]Factory
