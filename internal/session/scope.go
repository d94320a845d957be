package session

import "github.com/jamesdabbs/guard/plugin"

// Scope is the currently active subset of groups and plugins eligible to
// receive dispatch. An empty scope means every plugin in the registry. Scope
// values are replaced wholesale, never mutated element by element.
type Scope struct {
	Groups  []*plugin.Group
	Plugins []*plugin.Instance
}

// Empty reports whether the scope restricts nothing.
func (s Scope) Empty() bool {
	return len(s.Groups) == 0 && len(s.Plugins) == 0
}

// Resolution partitions scope tokens into known groups, known plugins, and
// tokens that matched neither.
type Resolution struct {
	Groups     []*plugin.Group
	Plugins    []*plugin.Instance
	Unresolved []string
}

// Scope converts the resolved portion into a scope value.
func (r Resolution) Scope() Scope {
	return Scope{Groups: r.Groups, Plugins: r.Plugins}
}

// ResolveScope classifies free-text tokens against the registry, preserving
// input order within each output list. A plugin name wins over a group of the
// same name. The function is pure: it never mutates the registry or the
// active scope, and applying the result is the caller's explicit step.
func ResolveScope(reg *plugin.Registry, tokens []string) Resolution {
	var res Resolution
	for _, tok := range tokens {
		if inst, ok := reg.Plugin(tok); ok {
			res.Plugins = append(res.Plugins, inst)
			continue
		}
		if g, ok := reg.Group(tok); ok {
			res.Groups = append(res.Groups, g)
			continue
		}
		res.Unresolved = append(res.Unresolved, tok)
	}
	return res
}
