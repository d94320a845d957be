package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlugin struct {
	name string
}

func (f *fakePlugin) Name() string                           { return f.name }
func (f *fakePlugin) OnChanges(context.Context, Batch) error { return nil }

func mustInstance(t *testing.T, name string, group *Group, patterns []string) *Instance {
	t.Helper()
	inst, err := NewInstance(&fakePlugin{name: name}, group, patterns)
	require.NoError(t, err)
	return inst
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	backend := reg.AddGroup("backend")
	frontend := reg.AddGroup("frontend")

	rspec := mustInstance(t, "rspec", backend, nil)
	eslint := mustInstance(t, "eslint", frontend, nil)
	reg.AddPlugin(rspec)
	reg.AddPlugin(eslint)

	g, ok := reg.Group("backend")
	require.True(t, ok)
	assert.Same(t, backend, g)

	_, ok = reg.Group("missing")
	assert.False(t, ok)

	p, ok := reg.Plugin("eslint")
	require.True(t, ok)
	assert.Same(t, eslint, p)

	assert.Equal(t, []*Group{backend, frontend}, reg.Groups())
	assert.Equal(t, []*Instance{rspec, eslint}, reg.Plugins())
	assert.Equal(t, []*Instance{rspec}, reg.PluginsInGroup(backend))
}

func TestAddGroupIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	a := reg.AddGroup("backend")
	b := reg.AddGroup("backend")
	assert.Same(t, a, b)
	assert.Len(t, reg.Groups(), 1)
}

func TestInstanceFilter(t *testing.T) {
	reg := NewRegistry()
	g := reg.AddGroup(DefaultGroupName)

	inst := mustInstance(t, "rspec", g, []string{"src/**", "*.go"})

	filtered := inst.Filter(Batch{
		Modified: []string{"src/a.rb", "docs/readme.md"},
		Added:    []string{"main.go"},
		Removed:  []string{"tmp/cache"},
	})

	assert.Equal(t, []string{"src/a.rb"}, filtered.Modified)
	assert.Equal(t, []string{"main.go"}, filtered.Added)
	assert.Empty(t, filtered.Removed)
}

func TestInstanceWithoutPatternsReceivesEverything(t *testing.T) {
	reg := NewRegistry()
	g := reg.AddGroup(DefaultGroupName)
	inst := mustInstance(t, "all", g, nil)

	batch := Batch{Modified: []string{"anything"}}
	assert.Equal(t, batch, inst.Filter(batch))
}

func TestBatchHelpers(t *testing.T) {
	assert.True(t, Batch{}.Empty())

	b := Batch{Modified: []string{"a"}, Added: []string{"b"}, Removed: []string{"c"}}
	assert.False(t, b.Empty())
	assert.Equal(t, []string{"a", "b", "c"}, b.Paths())
}
