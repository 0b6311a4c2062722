package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"chronoforge/internal/engine"
)

// Config holds all ChronoForge configuration.
type Config struct {
	// DBPath is the SQLite ledger. Empty means storage.ResolveDBPath.
	DBPath string `yaml:"db_path"`

	// JournalDir receives the compressed event journal. Empty disables it.
	JournalDir string `yaml:"journal_dir"`

	// ListenAddr is the address `cf serve` binds.
	ListenAddr string `yaml:"listen_addr"`

	// DefaultCaller is used when --as is not given.
	DefaultCaller string `yaml:"default_caller"`

	// BaseImageURI prefixes the image field of token metadata.
	BaseImageURI string `yaml:"base_image_uri"`

	Tuning Tuning `yaml:"tuning"`

	Logging LoggingConfig `yaml:"logging"`
}

// Tuning mirrors engine.Rules in a YAML-friendly shape.
type Tuning struct {
	MintPriceGwei         int64  `yaml:"mint_price_gwei"`
	CleanseCostGwei       int64  `yaml:"cleanse_cost_gwei"`
	EvolutionThreshold    int64  `yaml:"evolution_threshold"`
	DailyEnergyGain       int64  `yaml:"daily_energy_gain"`
	StreakBonusMultiplier int64  `yaml:"streak_bonus_multiplier"`
	MaxSupply             int64  `yaml:"max_supply"`
	InfusionPurityPenalty int    `yaml:"infusion_purity_penalty"`
	CleansePurityRestore  int    `yaml:"cleanse_purity_restore"`
	MinEvolvePurity       int    `yaml:"min_evolve_purity"`
	MaxTraitLength        int    `yaml:"max_trait_length"`
	Cooldown              string `yaml:"cooldown"`
	StreakWindow          string `yaml:"streak_window"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	// Encoding is "json" or "console".
	Encoding string `yaml:"encoding"`
}

const (
	EnvConfigPath = "CHRONOFORGE_CONFIG"
	EnvDBPath     = "CHRONOFORGE_DB_PATH"
)

func DefaultConfig() *Config {
	return &Config{
		ListenAddr: "127.0.0.1:8545",
		Tuning:     TuningFromRules(engine.DefaultRules()),
		Logging: LoggingConfig{
			Level:    "warn",
			Encoding: "json",
		},
	}
}

// TuningFromRules converts engine rules into their config form.
func TuningFromRules(r engine.Rules) Tuning {
	return Tuning{
		MintPriceGwei:         int64(r.MintPrice),
		CleanseCostGwei:       int64(r.CleanseCost),
		EvolutionThreshold:    r.EvolutionThreshold,
		DailyEnergyGain:       r.DailyEnergyGain,
		StreakBonusMultiplier: r.StreakBonusMultiplier,
		MaxSupply:             r.MaxSupply,
		InfusionPurityPenalty: r.InfusionPurityPenalty,
		CleansePurityRestore:  r.CleansePurityRestore,
		MinEvolvePurity:       r.MinEvolvePurity,
		MaxTraitLength:        r.MaxTraitLength,
		Cooldown:              r.Cooldown.String(),
		StreakWindow:          r.StreakWindow.String(),
	}
}

// Rules converts the tuning into engine rules. Unparseable durations fall back to defaults.
func (t Tuning) Rules() engine.Rules {
	def := engine.DefaultRules()
	return engine.Rules{
		MintPrice:             engine.Gwei(t.MintPriceGwei),
		CleanseCost:           engine.Gwei(t.CleanseCostGwei),
		EvolutionThreshold:    t.EvolutionThreshold,
		DailyEnergyGain:       t.DailyEnergyGain,
		StreakBonusMultiplier: t.StreakBonusMultiplier,
		MaxSupply:             t.MaxSupply,
		InfusionPurityPenalty: t.InfusionPurityPenalty,
		CleansePurityRestore:  t.CleansePurityRestore,
		MinEvolvePurity:       t.MinEvolvePurity,
		MaxTraitLength:        t.MaxTraitLength,
		Cooldown:              parseDuration(t.Cooldown, def.Cooldown),
		StreakWindow:          parseDuration(t.StreakWindow, def.StreakWindow),
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// DefaultPath returns $XDG_CONFIG_HOME/chronoforge/config.yaml, falling back to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "chronoforge", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "chronoforge", "config.yaml"), nil
}

// ResolvePath returns CHRONOFORGE_CONFIG if set, otherwise DefaultPath.
func ResolvePath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	return DefaultPath()
}

// Load reads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.Normalize()
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv(EnvDBPath); p != "" {
		c.DBPath = p
	}
}

// Normalize resets invalid values to their defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.DefaultCaller != "" {
		if a, err := engine.ParseAddress(c.DefaultCaller); err == nil {
			c.DefaultCaller = string(a)
		} else {
			c.DefaultCaller = ""
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Logging.Level = def.Logging.Level
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		c.Logging.Encoding = def.Logging.Encoding
	}
	if err := c.Tuning.Rules().Validate(); err != nil {
		c.Tuning = def.Tuning
	}
}

// Rules returns the engine rules for this configuration.
func (c *Config) Rules() engine.Rules {
	return c.Tuning.Rules()
}
