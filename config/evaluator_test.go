package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesdabbs/guard/errors"
	"github.com/jamesdabbs/guard/plugin"
)

type nopPlugin struct {
	name string
}

func (p *nopPlugin) Name() string                                  { return p.name }
func (p *nopPlugin) OnChanges(context.Context, plugin.Batch) error { return nil }

func testFactories() plugin.FactoryMap {
	return plugin.FactoryMap{
		"shell": func(name string, options map[string]interface{}) (plugin.Plugin, error) {
			return &nopPlugin{name: name}, nil
		},
		"broken": func(name string, options map[string]interface{}) (plugin.Plugin, error) {
			return nil, fmt.Errorf("cannot construct %s", name)
		},
	}
}

func writeGuardfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guard.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestEvaluateBuildsRegistry(t *testing.T) {
	path := writeGuardfile(t, `
groups:
  - name: backend
    plugins:
      - use: shell
        name: tests
  - name: frontend
    plugins:
      - use: shell
        name: lint
`)

	ev := NewEvaluator(path, testFactories())
	reg, err := ev.Evaluate()
	require.NoError(t, err)

	require.Len(t, reg.Groups(), 2)
	assert.Equal(t, "backend", reg.Groups()[0].Name)
	assert.Equal(t, "frontend", reg.Groups()[1].Name)

	require.Len(t, reg.Plugins(), 2)
	assert.Equal(t, "tests", reg.Plugins()[0].Name())
	assert.Equal(t, "lint", reg.Plugins()[1].Name())
	assert.Same(t, reg.Groups()[0], reg.Plugins()[0].Group)
}

func TestEvaluateZeroPluginsIsNotAnError(t *testing.T) {
	path := writeGuardfile(t, `groups: []`)

	ev := NewEvaluator(path, testFactories())
	reg, err := ev.Evaluate()
	require.NoError(t, err)
	assert.Empty(t, reg.Plugins())
}

func TestEvaluateUnknownFactory(t *testing.T) {
	path := writeGuardfile(t, `
groups:
  - name: backend
    plugins:
      - use: mystery
`)

	ev := NewEvaluator(path, testFactories())
	_, err := ev.Evaluate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodePluginUnknown))
}

func TestEvaluateFactoryFailure(t *testing.T) {
	path := writeGuardfile(t, `
groups:
  - name: backend
    plugins:
      - use: broken
`)

	ev := NewEvaluator(path, testFactories())
	_, err := ev.Evaluate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSetupFailed))
}

func TestReevaluateWrapsFailures(t *testing.T) {
	path := writeGuardfile(t, `groups: []`)
	ev := NewEvaluator(path, testFactories())

	_, err := ev.Evaluate()
	require.NoError(t, err)

	// Corrupt the guardfile, then reload.
	require.NoError(t, os.WriteFile(path, []byte("watch: ["), 0644))
	_, err = ev.Reevaluate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeReloadFailed))
}

func TestIsConfigFile(t *testing.T) {
	path := writeGuardfile(t, `groups: []`)
	ev := NewEvaluator(path, testFactories())

	assert.True(t, ev.IsConfigFile(path))
	assert.True(t, ev.IsConfigFile(filepath.Join(filepath.Dir(path), ".", "guard.yml")), "uncleaned forms of the guardfile path should match")
	assert.False(t, ev.IsConfigFile(filepath.Join(filepath.Dir(path), "fixtures", "guard.yml")), "an unrelated file sharing the guardfile's name must not match")
	assert.False(t, ev.IsConfigFile("src/main.go"))
	assert.False(t, ev.IsConfigFile(""))
}
