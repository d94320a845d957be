package plugin

import (
	"github.com/moby/patternmatcher"
)

// Instance binds a plugin to its owning group and its configured path
// patterns. Instances are created during configuration evaluation and invoked
// repeatedly for the life of the process.
type Instance struct {
	Plugin   Plugin
	Group    *Group
	Patterns []string

	matcher *patternmatcher.PatternMatcher
}

// NewInstance creates an instance for a plugin. An error is returned only for
// malformed patterns.
func NewInstance(p Plugin, group *Group, patterns []string) (*Instance, error) {
	inst := &Instance{
		Plugin:   p,
		Group:    group,
		Patterns: patterns,
	}
	if len(patterns) > 0 {
		m, err := patternmatcher.New(patterns)
		if err != nil {
			return nil, err
		}
		inst.matcher = m
	}
	return inst, nil
}

// Name returns the plugin's instance name.
func (i *Instance) Name() string {
	return i.Plugin.Name()
}

// Filter returns the subset of the batch matching the instance's patterns.
// An instance with no configured patterns receives the batch unchanged.
func (i *Instance) Filter(batch Batch) Batch {
	if i.matcher == nil {
		return batch
	}
	return Batch{
		Modified: i.matchAll(batch.Modified),
		Added:    i.matchAll(batch.Added),
		Removed:  i.matchAll(batch.Removed),
	}
}

func (i *Instance) matchAll(paths []string) []string {
	var out []string
	for _, p := range paths {
		ok, err := i.matcher.MatchesOrParentMatches(p)
		if err == nil && ok {
			out = append(out, p)
		}
	}
	return out
}
