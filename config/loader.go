package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jamesdabbs/guard/errors"
)

// ConfigFileNames are the guardfile names searched for, in order.
var ConfigFileNames = []string{"guard.yml", "guard.yaml"}

// FindConfigFile walks up from startDir looking for a guardfile and returns
// its absolute path.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.ConfigNotFound(startDir)
		}
		dir = parent
	}
}

// Load reads and parses the guardfile at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, err
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses guardfile content.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}

	if len(cfg.Watch) == 0 {
		cfg.Watch = []string{"."}
	}

	for _, g := range cfg.Groups {
		if g.Name == "" {
			return nil, errors.ConfigInvalid("group without a name")
		}
		for _, p := range g.Plugins {
			if p.Use == "" {
				return nil, errors.ConfigInvalid("plugin without a 'use' entry in group " + g.Name)
			}
		}
	}

	return &cfg, nil
}

// ResolveWatchRoots turns the guardfile's watch entries into absolute,
// existing directories, resolved against baseDir and deduplicated while
// preserving order. An empty result is a fatal setup condition.
func (c *Config) ResolveWatchRoots(baseDir string) ([]string, error) {
	seen := make(map[string]bool)
	var roots []string

	for _, entry := range c.Watch {
		p := entry
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		p = filepath.Clean(p)

		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			continue
		}
		if !seen[p] {
			seen[p] = true
			roots = append(roots, p)
		}
	}

	if len(roots) == 0 {
		return nil, errors.NoWatchRoots()
	}
	return roots, nil
}
