package config

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/jamesdabbs/guard/errors"
	"github.com/jamesdabbs/guard/logging"
	"github.com/jamesdabbs/guard/plugin"
)

// Evaluator turns a guardfile into a plugin registry. Evaluate builds the
// registry from scratch; Reevaluate re-runs evaluation after the guardfile
// changes. The evaluator never partially applies: a failed evaluation leaves
// the caller's previous registry untouched.
type Evaluator struct {
	path      string
	factories plugin.FactoryMap
	logger    *logrus.Entry

	cfg *Config
}

// NewEvaluator creates an evaluator for the guardfile at path with the given
// plugin factories.
func NewEvaluator(path string, factories plugin.FactoryMap) *Evaluator {
	return &Evaluator{
		path:      path,
		factories: factories,
		logger:    logging.NewLogger("evaluator"),
	}
}

// Path returns the guardfile path being evaluated.
func (e *Evaluator) Path() string {
	return e.path
}

// Config returns the most recently evaluated configuration, or nil before the
// first successful Evaluate.
func (e *Evaluator) Config() *Config {
	return e.cfg
}

// IsConfigFile reports whether path refers to the guardfile this evaluator
// reads. Paths are compared after absolute resolution, so an unrelated file
// that merely shares the guardfile's name does not match.
func (e *Evaluator) IsConfigFile(path string) bool {
	if path == "" {
		return false
	}
	p, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	own, err := filepath.Abs(e.path)
	if err != nil {
		return false
	}
	return p == own
}

// Evaluate parses the guardfile and builds a fresh registry from it. A
// guardfile that declares zero plugins is a warning, not an error: the
// process keeps watching and the operator can fix the file and reload.
func (e *Evaluator) Evaluate() (*plugin.Registry, error) {
	cfg, err := Load(e.path)
	if err != nil {
		return nil, errors.SetupFailed(err)
	}

	reg := plugin.NewRegistry()
	for _, gc := range cfg.Groups {
		group := reg.AddGroup(gc.Name)
		for _, pc := range gc.Plugins {
			factory, ok := e.factories[pc.Use]
			if !ok {
				return nil, errors.PluginUnknown(pc.Use)
			}

			p, err := factory(pc.InstanceName(), pc.Options)
			if err != nil {
				return nil, errors.SetupFailed(err)
			}

			inst, err := plugin.NewInstance(p, group, pc.Patterns)
			if err != nil {
				return nil, errors.SetupFailed(err)
			}
			reg.AddPlugin(inst)
		}
	}

	if len(reg.Plugins()) == 0 {
		e.logger.Warn("Guardfile declares no plugins; watching with an empty scope")
	}

	e.cfg = cfg
	return reg, nil
}

// Reevaluate re-runs evaluation, wrapping failures as reload errors so the
// caller can keep the previous registry active.
func (e *Evaluator) Reevaluate() (*plugin.Registry, error) {
	reg, err := e.Evaluate()
	if err != nil {
		return nil, errors.ReloadFailed(err)
	}
	return reg, nil
}
