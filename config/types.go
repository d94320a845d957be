// Package config loads and evaluates the declarative guardfile (guard.yml)
// that describes watch roots, groups, and plugin instances.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Config is the parsed guardfile.
type Config struct {
	// Watch lists the directories to observe. Relative entries are resolved
	// against the guardfile's directory. Defaults to ["."].
	Watch []string `yaml:"watch"`

	// DebounceMs is the watch backend's batching latency in milliseconds.
	DebounceMs int `yaml:"debounce_ms"`

	// Ignore lists path patterns excluded from watching.
	Ignore []string `yaml:"ignore"`

	// Notify toggles terminal notifications. Defaults to on; the
	// GUARD_NOTIFY environment variable can still disable them.
	Notify *bool `yaml:"notify"`

	// DebugCommands enables logging of every external command plugins run.
	DebugCommands bool `yaml:"debug_commands"`

	// Groups holds the plugin declarations, grouped.
	Groups []GroupConfig `yaml:"groups"`
}

// GroupConfig declares one named group of plugins.
type GroupConfig struct {
	Name    string         `yaml:"name"`
	Plugins []PluginConfig `yaml:"plugins"`
}

// PluginConfig declares one plugin instance.
type PluginConfig struct {
	// Use names the plugin factory, e.g. "shell".
	Use string `yaml:"use"`

	// Name is the instance name; defaults to Use.
	Name string `yaml:"name"`

	// Patterns restricts which normalized paths the plugin receives.
	Patterns []string `yaml:"patterns"`

	// Options is free-form and decoded per plugin.
	Options map[string]interface{} `yaml:"options"`
}

// InstanceName returns the effective instance name for the declaration.
func (p PluginConfig) InstanceName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Use
}

// NotifyEnabled reports whether the guardfile enables notifications.
func (c *Config) NotifyEnabled() bool {
	return c.Notify == nil || *c.Notify
}

// DecodeOptions decodes a plugin's free-form options into a typed struct.
func DecodeOptions(options map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to create options decoder: %w", err)
	}
	return decoder.Decode(options)
}
