package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PERMAFROST_"

// StorageBox is one rsync/SFTP-reachable remote target.
type StorageBox struct {
	Host   string `koanf:"host"`
	User   string `koanf:"user"`
	Path   string `koanf:"path"`
	SSHKey string `koanf:"ssh_key"`
}

func (b StorageBox) Configured() bool {
	return b.Host != "" && b.User != ""
}

// Retention is the restic forget policy.
type Retention struct {
	Hourly  int `koanf:"hourly"`
	Daily   int `koanf:"daily"`
	Weekly  int `koanf:"weekly"`
	Monthly int `koanf:"monthly"`
}

// Restic configures the primary versioned backups.
type Restic struct {
	StorageBox StorageBox `koanf:"storage_box"`
	Retention  Retention  `koanf:"retention"`
	Exclude    []string   `koanf:"exclude"`
}

// ColdStorage configures the one-directional cold mirror.
type ColdStorage struct {
	StorageBox          StorageBox  `koanf:"storage_box"`
	RedundantStorageBox *StorageBox `koanf:"redundant_storage_box"`
	BasePathStrip       string      `koanf:"base_path_strip"`
}

// KumaEndpoints holds Uptime Kuma push URLs, each optional.
type KumaEndpoints struct {
	Backup     string `koanf:"backup"`
	Verify     string `koanf:"verify"`
	DeepVerify string `koanf:"deep_verify"`
}

// Machine is the per-machine half of the configuration.
type Machine struct {
	Name             string        `koanf:"name"`
	Databases        []string      `koanf:"databases"`
	ExtraBackupPaths []string      `koanf:"extra_backup_paths"`
	ScanPaths        []string      `koanf:"scan_paths"`
	Kuma             KumaEndpoints `koanf:"kuma"`
}

// Config is the merged view of config.toml and machine.toml.
type Config struct {
	Restic  Restic      `koanf:"restic"`
	Cold    ColdStorage `koanf:"cold"`
	Machine Machine     `koanf:"machine"`
}

func defaults() Config {
	return Config{
		Restic: Restic{
			Retention: Retention{Hourly: 24, Daily: 7, Weekly: 4, Monthly: 12},
		},
		Cold: ColdStorage{
			BasePathStrip: "/home",
		},
		Machine: Machine{
			ScanPaths: []string{"/home"},
		},
	}
}

// CommonPath and MachinePath resolve the two config files under configDir.
func CommonPath(configDir string) string  { return filepath.Join(configDir, "config.toml") }
func MachinePath(configDir string) string { return filepath.Join(configDir, "machine.toml") }

// Load reads both config files, applies defaults underneath and PERMAFROST_
// environment variables on top, and validates the result. Double underscores
// in env names map to config dots, e.g. PERMAFROST_MACHINE__NAME.
func Load(commonPath, machinePath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, path := range []string{commonPath, machinePath} {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Machine.Name == "" {
		return fmt.Errorf("machine.name is required")
	}
	if !c.Restic.StorageBox.Configured() {
		return fmt.Errorf("restic.storage_box.host and .user are required")
	}
	if !c.Cold.StorageBox.Configured() {
		return fmt.Errorf("cold.storage_box.host and .user are required")
	}
	if c.Cold.RedundantStorageBox != nil && !c.Cold.RedundantStorageBox.Configured() {
		return fmt.Errorf("cold.redundant_storage_box is set but incomplete")
	}
	if len(c.Machine.ScanPaths) == 0 {
		return fmt.Errorf("machine.scan_paths must not be empty")
	}
	return nil
}

// RenderCommon produces the contents of config.toml for the setup wizard.
func RenderCommon(c *Config) string {
	var b strings.Builder

	b.WriteString("[restic.storage_box]\n")
	writeBox(&b, c.Restic.StorageBox)

	b.WriteString("\n[restic.retention]\n")
	fmt.Fprintf(&b, "hourly = %d\n", c.Restic.Retention.Hourly)
	fmt.Fprintf(&b, "daily = %d\n", c.Restic.Retention.Daily)
	fmt.Fprintf(&b, "weekly = %d\n", c.Restic.Retention.Weekly)
	fmt.Fprintf(&b, "monthly = %d\n", c.Restic.Retention.Monthly)

	if len(c.Restic.Exclude) > 0 {
		b.WriteString("\n[restic]\n")
		fmt.Fprintf(&b, "exclude = %s\n", tomlStrings(c.Restic.Exclude))
	}

	b.WriteString("\n[cold]\n")
	fmt.Fprintf(&b, "base_path_strip = %q\n", c.Cold.BasePathStrip)

	b.WriteString("\n[cold.storage_box]\n")
	writeBox(&b, c.Cold.StorageBox)

	if c.Cold.RedundantStorageBox != nil {
		b.WriteString("\n[cold.redundant_storage_box]\n")
		writeBox(&b, *c.Cold.RedundantStorageBox)
	}

	return b.String()
}

// RenderMachine produces the contents of machine.toml for the setup wizard.
func RenderMachine(c *Config) string {
	var b strings.Builder

	b.WriteString("[machine]\n")
	fmt.Fprintf(&b, "name = %q\n", c.Machine.Name)
	fmt.Fprintf(&b, "scan_paths = %s\n", tomlStrings(c.Machine.ScanPaths))
	if len(c.Machine.ExtraBackupPaths) > 0 {
		fmt.Fprintf(&b, "extra_backup_paths = %s\n", tomlStrings(c.Machine.ExtraBackupPaths))
	}
	if len(c.Machine.Databases) > 0 {
		fmt.Fprintf(&b, "databases = %s\n", tomlStrings(c.Machine.Databases))
	}

	if c.Machine.Kuma != (KumaEndpoints{}) {
		b.WriteString("\n[machine.kuma]\n")
		if c.Machine.Kuma.Backup != "" {
			fmt.Fprintf(&b, "backup = %q\n", c.Machine.Kuma.Backup)
		}
		if c.Machine.Kuma.Verify != "" {
			fmt.Fprintf(&b, "verify = %q\n", c.Machine.Kuma.Verify)
		}
		if c.Machine.Kuma.DeepVerify != "" {
			fmt.Fprintf(&b, "deep_verify = %q\n", c.Machine.Kuma.DeepVerify)
		}
	}

	return b.String()
}

// WriteFiles writes both rendered config files under configDir.
func WriteFiles(configDir string, c *Config) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(CommonPath(configDir), []byte(RenderCommon(c)), 0644); err != nil {
		return fmt.Errorf("failed to write config.toml: %w", err)
	}
	if err := os.WriteFile(MachinePath(configDir), []byte(RenderMachine(c)), 0644); err != nil {
		return fmt.Errorf("failed to write machine.toml: %w", err)
	}
	return nil
}

func writeBox(b *strings.Builder, box StorageBox) {
	fmt.Fprintf(b, "host = %q\n", box.Host)
	fmt.Fprintf(b, "user = %q\n", box.User)
	fmt.Fprintf(b, "path = %q\n", box.Path)
	if box.SSHKey != "" {
		fmt.Fprintf(b, "ssh_key = %q\n", box.SSHKey)
	}
}

func tomlStrings(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
