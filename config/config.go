// Package config loads and merges user configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orrery-cli/orrery/internal/constants"
	"github.com/orrery-cli/orrery/internal/duration"
)

// Config represents the application configuration
type Config struct {
	DefaultFormat string   `yaml:"default_format,omitempty"`
	DefaultUser   string   `yaml:"default_user,omitempty"`
	ExcludeRepos  []string `yaml:"exclude_repos,omitempty"`

	// Top-level config sections
	Scheduler *SchedulerOverrides `yaml:"scheduler,omitempty"`
	Cache     *CacheOverrides     `yaml:"cache,omitempty"`
	Mapping   *MappingOverrides   `yaml:"mapping,omitempty"`
}

// SchedulerOverrides allows customizing the enrichment scheduler.
type SchedulerOverrides struct {
	BatchSize       *int    `yaml:"batch_size,omitempty"`
	SafetyThreshold *int    `yaml:"safety_threshold,omitempty"`
	BatchDelay      *string `yaml:"batch_delay,omitempty"`
}

// CacheOverrides allows customizing cache TTLs. Durations accept
// human-readable values like "30m", "1h", or "2d".
type CacheOverrides struct {
	BasicTTL  *string `yaml:"basic_ttl,omitempty"`
	DetailTTL *string `yaml:"detail_ttl,omitempty"`
}

// MappingOverrides allows customizing the visual mapping.
type MappingOverrides struct {
	OrbitMode         *string  `yaml:"orbit_mode,omitempty"` // "older-closer" or "newer-closer"
	OrbitBase         *float64 `yaml:"orbit_base,omitempty"`
	OrbitAgeFactor    *float64 `yaml:"orbit_age_factor,omitempty"`
	SpacingMultiplier *float64 `yaml:"spacing_multiplier,omitempty"`
	MaxEccentricity   *float64 `yaml:"max_eccentricity,omitempty"`
	PlanetVariants    *int     `yaml:"planet_variants,omitempty"`
}

// Settings is the fully resolved configuration after merging user
// overrides with defaults.
type Settings struct {
	DefaultFormat string
	DefaultUser   string

	BatchSize       int
	SafetyThreshold int
	BatchDelay      time.Duration

	BasicTTL  time.Duration
	DetailTTL time.Duration

	OrbitMode         string
	OrbitBase         float64
	OrbitAgeFactor    float64
	SpacingMultiplier float64
	MaxEccentricity   float64
	PlanetVariants    int
}

// DefaultSettings returns the default resolved settings
func DefaultSettings() Settings {
	return Settings{
		DefaultFormat: "table",

		BatchSize:       constants.EnrichBatchSize,
		SafetyThreshold: constants.BudgetSafetyThreshold,
		BatchDelay:      constants.InterBatchDelay,

		BasicTTL:  constants.BasicListCacheTTL,
		DetailTTL: constants.DetailCacheTTL,

		OrbitMode:         "newer-closer",
		OrbitBase:         constants.OrbitBase,
		OrbitAgeFactor:    constants.OrbitAgeFactor,
		SpacingMultiplier: constants.OrbitSpacingMultiplier,
		MaxEccentricity:   constants.MaxEccentricity,
		PlanetVariants:    constants.PlanetVariants,
	}
}

// GetSettings returns settings with user overrides merged with defaults.
// Invalid duration strings and unknown orbit modes are reported rather
// than silently ignored.
func (c *Config) GetSettings() (Settings, error) {
	s := DefaultSettings()

	if c.DefaultFormat != "" {
		s.DefaultFormat = c.DefaultFormat
	}
	if c.DefaultUser != "" {
		s.DefaultUser = c.DefaultUser
	}

	if sc := c.Scheduler; sc != nil {
		if sc.BatchSize != nil {
			s.BatchSize = *sc.BatchSize
		}
		if sc.SafetyThreshold != nil {
			s.SafetyThreshold = *sc.SafetyThreshold
		}
		if sc.BatchDelay != nil {
			d, err := duration.Parse(*sc.BatchDelay)
			if err != nil {
				return s, fmt.Errorf("scheduler.batch_delay: %w", err)
			}
			s.BatchDelay = d
		}
	}

	if ca := c.Cache; ca != nil {
		if ca.BasicTTL != nil {
			d, err := duration.Parse(*ca.BasicTTL)
			if err != nil {
				return s, fmt.Errorf("cache.basic_ttl: %w", err)
			}
			s.BasicTTL = d
		}
		if ca.DetailTTL != nil {
			d, err := duration.Parse(*ca.DetailTTL)
			if err != nil {
				return s, fmt.Errorf("cache.detail_ttl: %w", err)
			}
			s.DetailTTL = d
		}
	}

	if m := c.Mapping; m != nil {
		if m.OrbitMode != nil {
			switch *m.OrbitMode {
			case "older-closer", "newer-closer":
				s.OrbitMode = *m.OrbitMode
			default:
				return s, fmt.Errorf("mapping.orbit_mode: unknown mode %q", *m.OrbitMode)
			}
		}
		if m.OrbitBase != nil {
			s.OrbitBase = *m.OrbitBase
		}
		if m.OrbitAgeFactor != nil {
			s.OrbitAgeFactor = *m.OrbitAgeFactor
		}
		if m.SpacingMultiplier != nil {
			s.SpacingMultiplier = *m.SpacingMultiplier
		}
		if m.MaxEccentricity != nil {
			s.MaxEccentricity = *m.MaxEccentricity
		}
		if m.PlanetVariants != nil {
			s.PlanetVariants = *m.PlanetVariants
		}
	}

	return s, nil
}

// DefaultConfigDir returns the directory for the global config file
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".orrery"
	}
	return filepath.Join(configDir, "orrery")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".orrery.yaml"
}

// ConfigFileExists returns true if the config file exists on disk
func ConfigFileExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Load loads the configuration from disk.
// It first loads the global config from the XDG config directory, then
// merges any local .orrery.yaml on top (local values take precedence).
func Load() (*Config, error) {
	cfg := &Config{}

	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}
		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}
		cfg = mergeConfig(cfg, &localCfg)
	}

	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{}

	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	} else {
		result.DefaultFormat = global.DefaultFormat
	}

	if local.DefaultUser != "" {
		result.DefaultUser = local.DefaultUser
	} else {
		result.DefaultUser = global.DefaultUser
	}

	if len(local.ExcludeRepos) > 0 {
		result.ExcludeRepos = local.ExcludeRepos
	} else {
		result.ExcludeRepos = global.ExcludeRepos
	}

	result.Scheduler = mergeScheduler(global.Scheduler, local.Scheduler)
	result.Cache = mergeCache(global.Cache, local.Cache)
	result.Mapping = mergeMapping(global.Mapping, local.Mapping)

	return result
}

func mergeScheduler(global, local *SchedulerOverrides) *SchedulerOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &SchedulerOverrides{}
	if global != nil {
		*result = *global
	}
	if local != nil {
		if local.BatchSize != nil {
			result.BatchSize = local.BatchSize
		}
		if local.SafetyThreshold != nil {
			result.SafetyThreshold = local.SafetyThreshold
		}
		if local.BatchDelay != nil {
			result.BatchDelay = local.BatchDelay
		}
	}
	return result
}

func mergeCache(global, local *CacheOverrides) *CacheOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &CacheOverrides{}
	if global != nil {
		*result = *global
	}
	if local != nil {
		if local.BasicTTL != nil {
			result.BasicTTL = local.BasicTTL
		}
		if local.DetailTTL != nil {
			result.DetailTTL = local.DetailTTL
		}
	}
	return result
}

func mergeMapping(global, local *MappingOverrides) *MappingOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &MappingOverrides{}
	if global != nil {
		*result = *global
	}
	if local != nil {
		if local.OrbitMode != nil {
			result.OrbitMode = local.OrbitMode
		}
		if local.OrbitBase != nil {
			result.OrbitBase = local.OrbitBase
		}
		if local.OrbitAgeFactor != nil {
			result.OrbitAgeFactor = local.OrbitAgeFactor
		}
		if local.SpacingMultiplier != nil {
			result.SpacingMultiplier = local.SpacingMultiplier
		}
		if local.MaxEccentricity != nil {
			result.MaxEccentricity = local.MaxEccentricity
		}
		if local.PlanetVariants != nil {
			result.PlanetVariants = local.PlanetVariants
		}
	}
	return result
}

// Save writes the config to the global config path.
func (c *Config) Save() error {
	configDir := DefaultConfigDir()

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment
// variable. Following 12-factor app practice, tokens are only read from the
// environment, never from config files.
func (c *Config) GetGitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// SetDefaultFormat sets the default output format and saves
func (c *Config) SetDefaultFormat(format string) error {
	c.DefaultFormat = format
	return c.Save()
}

// SetDefaultUser sets the default GitHub user and saves
func (c *Config) SetDefaultUser(user string) error {
	c.DefaultUser = user
	return c.Save()
}

// IsRepoExcluded checks if a repo is in the exclude list. Entries may
// be the bare repository name or the owner/name form.
func (c *Config) IsRepoExcluded(repoFullName string) bool {
	name := repoFullName
	if i := strings.LastIndex(repoFullName, "/"); i >= 0 {
		name = repoFullName[i+1:]
	}
	for _, excluded := range c.ExcludeRepos {
		if excluded == repoFullName || excluded == name {
			return true
		}
	}
	return false
}

// ToYAML renders the config as YAML for `config show`.
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// MinimalConfig returns a commented starter config file.
func MinimalConfig() string {
	return `# orrery configuration
# Global file: ` + ConfigPath() + `
# A local .orrery.yaml in the working directory overrides it.

# default_user: octocat
# default_format: table   # table | json | markdown

# scheduler:
#   batch_size: 6
#   safety_threshold: 5
#   batch_delay: 200ms

# cache:
#   basic_ttl: 1h
#   detail_ttl: 24h

# mapping:
#   orbit_mode: newer-closer   # or older-closer
#   spacing_multiplier: 0.8
#   max_eccentricity: 0.25
`
}

// SaveTo writes content to path, creating parent directories.
func SaveTo(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
