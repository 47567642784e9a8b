// Package config loads the run configuration and the declarative rule
// tables the history core consumes: missing-class policy, backfill patches,
// and extension SDK rules.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/odvcencio/apitrail/pkg/apiversion"
	"github.com/odvcencio/apitrail/pkg/history"
)

// Config is the TOML run configuration:
//
//	missing_classes = "report"
//
//	[[backfill]]
//	class = "example/Legacy"
//	member = "open()V"
//	expected_since = "4"
//	since = "2"
//
//	[[sdk]]
//	module = "com.example.mediaprovider"
//	sdks = [30, 31]
type Config struct {
	MissingClasses string       `toml:"missing_classes"`
	Backfill       []PatchEntry `toml:"backfill"`
	SDK            []SDKRule    `toml:"sdk"`
}

// PatchEntry is one backfill patch in its textual form.
type PatchEntry struct {
	Class          string `toml:"class"`
	Member         string `toml:"member"`
	ExpectedSince  string `toml:"expected_since"`
	Since          string `toml:"since"`
	DeprecatedIn   string `toml:"deprecated_in"`
	ClearExtension bool   `toml:"clear_extension"`
}

// SDKRule maps one mainline module to its extension SDKs.
type SDKRule struct {
	Module string `toml:"module"`
	SDKs   []int  `toml:"sdks"`
}

// Default returns the configuration used when no file is given: report
// dangling references, no patches, no extension rules.
func Default() *Config {
	return &Config{MissingClasses: "report"}
}

// Load reads a TOML configuration file. An empty path returns Default; a
// missing file is an error (a misspelled --config should not silently run
// with defaults).
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// HistoryConfig resolves the textual configuration into the core's typed
// form.
func (c *Config) HistoryConfig() (history.Config, error) {
	policy, err := history.ParseMissingClassPolicy(c.MissingClasses)
	if err != nil {
		return history.Config{}, err
	}
	out := history.Config{MissingClasses: policy}

	if len(c.SDK) > 0 {
		modules := make(map[string][]int, len(c.SDK))
		for _, rule := range c.SDK {
			if rule.Module == "" {
				return history.Config{}, fmt.Errorf("sdk rule without a module")
			}
			modules[rule.Module] = rule.SDKs
		}
		rules, err := history.NewExtensionRules(modules)
		if err != nil {
			return history.Config{}, err
		}
		out.Extensions = rules
	}
	return out, nil
}

// Patches resolves the backfill table into the core's typed form.
func (c *Config) Patches() ([]history.Patch, error) {
	patches := make([]history.Patch, 0, len(c.Backfill))
	for _, entry := range c.Backfill {
		if entry.Class == "" {
			return nil, fmt.Errorf("backfill patch without a class")
		}
		p := history.Patch{
			Class:          entry.Class,
			Member:         entry.Member,
			ClearExtension: entry.ClearExtension,
		}
		var err error
		if p.ExpectedSince, err = apiversion.Parse(entry.ExpectedSince); err != nil {
			return nil, fmt.Errorf("backfill patch %s: expected_since: %w", entry.Class, err)
		}
		if p.Since, err = apiversion.Parse(entry.Since); err != nil {
			return nil, fmt.Errorf("backfill patch %s: since: %w", entry.Class, err)
		}
		if entry.DeprecatedIn != "" {
			if p.DeprecatedIn, err = apiversion.Parse(entry.DeprecatedIn); err != nil {
				return nil, fmt.Errorf("backfill patch %s: deprecated_in: %w", entry.Class, err)
			}
		}
		patches = append(patches, p)
	}
	return patches, nil
}
