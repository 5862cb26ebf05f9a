// Package config loads and validates ratpm's layered TOML configuration:
// a system file overlaid by a user file overlaid on built-in defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/ratpm/ratpm/internal/errs"
)

const (
	SystemConfigPath = "/etc/ratpm/ratpm.toml"
	userConfigSuffix = ".config/ratpm/ratpm.toml"
)

// System groups the [system] table.
type System struct {
	Backend   string `toml:"backend"`
	AssumeYes bool   `toml:"assume_yes"`
	Color     bool   `toml:"color"`
	CacheDir  string `toml:"cache_dir"`
	LockFile  string `toml:"lock_file"`
}

// Repos groups the [repos] table.
type Repos struct {
	AutoRefresh    bool   `toml:"auto_refresh"`
	MetadataExpire int64  `toml:"metadata_expire"`
	RepoDir        string `toml:"repo_dir"`
	GPGCheck       bool   `toml:"gpgcheck"`
}

// Transaction groups the [transaction] table.
type Transaction struct {
	KeepCache        bool `toml:"keep_cache"`
	HistoryLimit     int  `toml:"history_limit"`
	VerifySignatures bool `toml:"verify_signatures"`
}

// Config is the fully-resolved, validated configuration for one invocation.
type Config struct {
	System      System      `toml:"system"`
	Repos       Repos       `toml:"repos"`
	Transaction Transaction `toml:"transaction"`
}

// Default returns the built-in default configuration (spec §6 / S1).
func Default() Config {
	return Config{
		System: System{
			Backend:   "fedora",
			AssumeYes: false,
			Color:     true,
			CacheDir:  "/var/cache/ratpm",
			LockFile:  "/var/lock/ratpm.lock",
		},
		Repos: Repos{
			AutoRefresh:    true,
			MetadataExpire: 86400,
			RepoDir:        "/etc/yum.repos.d",
			GPGCheck:       true,
		},
		Transaction: Transaction{
			KeepCache:        true,
			HistoryLimit:     100,
			VerifySignatures: true,
		},
	}
}

// Load reads the system file and the user file (if present), each
// independently defaulted and parsed, and overlays them per spec §6: the
// user file only ever turns assume_yes on (OR) or color off (AND). When
// neither file exists, Load returns the built-in defaults.
func Load() (Config, error) {
	home, _ := os.UserHomeDir()
	var userPath string
	if home != "" {
		userPath = filepath.Join(home, userConfigSuffix)
	}
	return load(SystemConfigPath, userPath)
}

func load(systemPath, userPath string) (Config, error) {
	sysCfg, sysOK, err := loadFile(systemPath)
	if err != nil {
		return Config{}, err
	}

	var userCfg Config
	var userOK bool
	if userPath != "" {
		userCfg, userOK, err = loadFile(userPath)
		if err != nil {
			return Config{}, err
		}
	}

	var merged Config
	switch {
	case sysOK && userOK:
		merged = sysCfg
		overlay(&merged, userCfg)
	case sysOK:
		merged = sysCfg
	case userOK:
		merged = userCfg
	default:
		merged = Default()
	}

	if err := validate(merged); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// loadFile parses path into a Config seeded with defaults, so any table or
// key the file omits keeps its documented default. ok is false (with a nil
// error) when the file simply does not exist.
func loadFile(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, false, nil
		}
		return Config{}, false, errs.NewIoError(errors.Wrapf(err, "read config file %s", path))
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, false, errs.NewConfigError(errors.Wrapf(err, "parse config file %s", path).Error())
	}
	return cfg, true, nil
}

// overlay applies the user file's narrow override rule onto base, which
// must already hold the system file's (fully-defaulted) values.
func overlay(base *Config, user Config) {
	if user.System.AssumeYes {
		base.System.AssumeYes = true
	}
	if !user.System.Color {
		base.System.Color = false
	}
}

func validate(cfg Config) error {
	if cfg.System.Backend != "fedora" {
		return errs.NewConfigError("Unsupported backend: " + cfg.System.Backend)
	}
	if cfg.Repos.MetadataExpire <= 0 {
		return errs.NewConfigError("metadata_expire must be greater than 0")
	}
	if cfg.Transaction.HistoryLimit <= 0 {
		return errs.NewConfigError("history_limit must be greater than 0")
	}
	return nil
}
