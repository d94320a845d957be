package plugin

// Group is a named collection of plugins that can be activated as a scope
// unit. Groups are created at setup time and live for the whole run; a full
// re-setup replaces them wholesale.
type Group struct {
	Name string
}

// DefaultGroupName is the group plugins belong to when the guardfile does not
// assign one.
const DefaultGroupName = "default"
