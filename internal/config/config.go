package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/janekbaraniewski/storagereport/internal/core"
)

const envConfigPath = "STORAGEREPORT_CONFIG"

type LookupConfig struct {
	// Command is run once per identifier; "{}" in an argument is replaced by
	// the identifier, otherwise the identifier is appended.
	Command        []string `json:"command" yaml:"command"`
	TimeoutSeconds int      `json:"timeout_seconds" yaml:"timeout_seconds"`
}

func (l LookupConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

type NodeConfig struct {
	DatasetPrefix   string `json:"dataset_prefix" yaml:"dataset_prefix"`
	PoolUsed        string `json:"pool_used" yaml:"pool_used"`
	PoolAvail       string `json:"pool_avail" yaml:"pool_avail"`
	CrashCategory   string `json:"crash_category" yaml:"crash_category"`
	CrashUnitFactor int64  `json:"crash_unit_factor" yaml:"crash_unit_factor"`
}

type ReportConfig struct {
	LabelWidth int  `json:"label_width" yaml:"label_width"`
	Gauges     bool `json:"gauges" yaml:"gauges"`
}

type Config struct {
	MaxUsers           int          `json:"max_users" yaml:"max_users"`
	SpecialIdentifiers []string     `json:"special_identifiers" yaml:"special_identifiers"`
	Lookup             LookupConfig `json:"lookup" yaml:"lookup"`
	Node               NodeConfig   `json:"node" yaml:"node"`
	Report             ReportConfig `json:"report" yaml:"report"`
}

func DefaultConfig() Config {
	return Config{
		MaxUsers:           30,
		SpecialIdentifiers: append([]string(nil), core.DefaultSpecialIdentifiers...),
		Lookup: LookupConfig{
			Command: []string{"sdc-ldap", "search", "-b", "ou=users, o=smartdc", "uuid={}"},
		},
		Node: NodeConfig{
			DatasetPrefix:   "zones/",
			PoolUsed:        "zones:used",
			PoolAvail:       "zones:avail",
			CrashCategory:   "/var/crash",
			CrashUnitFactor: 1024,
		},
	}
}

func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "storagereport")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "storagereport")
}

func ConfigPath() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), "config.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a JSON or YAML (by extension) config file. A missing file
// yields the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.MaxUsers <= 0 {
		c.MaxUsers = def.MaxUsers
	}
	if c.SpecialIdentifiers == nil {
		c.SpecialIdentifiers = def.SpecialIdentifiers
	}
	c.Lookup.Command = lo.Compact(c.Lookup.Command)
	if len(c.Lookup.Command) == 0 {
		c.Lookup.Command = def.Lookup.Command
	}
	if c.Lookup.TimeoutSeconds < 0 {
		c.Lookup.TimeoutSeconds = 0
	}
	if c.Node.DatasetPrefix == "" {
		c.Node.DatasetPrefix = def.Node.DatasetPrefix
	}
	if c.Node.PoolUsed == "" {
		c.Node.PoolUsed = def.Node.PoolUsed
	}
	if c.Node.PoolAvail == "" {
		c.Node.PoolAvail = def.Node.PoolAvail
	}
	if c.Node.CrashCategory == "" {
		c.Node.CrashCategory = def.Node.CrashCategory
	}
	if c.Node.CrashUnitFactor <= 0 {
		c.Node.CrashUnitFactor = def.Node.CrashUnitFactor
	}
	if c.Report.LabelWidth < 0 {
		c.Report.LabelWidth = 0
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveTo writes cfg to path, creating parent directories as needed.
func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := Marshal(path, cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Marshal encodes cfg in the format implied by path's extension.
func Marshal(path string, cfg Config) ([]byte, error) {
	if isYAML(path) {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}
		return data, nil
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return append(data, '\n'), nil
}
