package plugin

// Registry holds the groups and plugin instances produced by one
// configuration evaluation, addressable by name. Registration order is
// preserved; dispatch and scope resolution both depend on it.
type Registry struct {
	groups   []*Group
	plugins  []*Instance
	byGroup  map[string]*Group
	byPlugin map[string]*Instance
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byGroup:  make(map[string]*Group),
		byPlugin: make(map[string]*Instance),
	}
}

// AddGroup registers a group, returning the existing one if the name is
// already known.
func (r *Registry) AddGroup(name string) *Group {
	if g, ok := r.byGroup[name]; ok {
		return g
	}
	g := &Group{Name: name}
	r.groups = append(r.groups, g)
	r.byGroup[name] = g
	return g
}

// AddPlugin registers a plugin instance. A later instance with the same name
// replaces the earlier one in the name index but not in dispatch order.
func (r *Registry) AddPlugin(inst *Instance) {
	r.plugins = append(r.plugins, inst)
	r.byPlugin[inst.Name()] = inst
}

// Group looks up a group by exact name.
func (r *Registry) Group(name string) (*Group, bool) {
	g, ok := r.byGroup[name]
	return g, ok
}

// Plugin looks up a plugin instance by exact name.
func (r *Registry) Plugin(name string) (*Instance, bool) {
	p, ok := r.byPlugin[name]
	return p, ok
}

// Groups returns all groups in registration order.
func (r *Registry) Groups() []*Group {
	return r.groups
}

// Plugins returns all plugin instances in registration order.
func (r *Registry) Plugins() []*Instance {
	return r.plugins
}

// PluginsInGroup returns the instances owned by the given group, in
// registration order.
func (r *Registry) PluginsInGroup(g *Group) []*Instance {
	var out []*Instance
	for _, inst := range r.plugins {
		if inst.Group == g {
			out = append(out, inst)
		}
	}
	return out
}
