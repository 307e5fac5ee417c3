package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Remote narrative service (OpenAI-compatible).
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	Model          string `mapstructure:"model" yaml:"model"`
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	RemoteDisabled bool   `mapstructure:"remote_disabled" yaml:"remote_disabled"`
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	Tone           string `mapstructure:"tone" yaml:"tone"`

	// Branding stamped onto run metadata.
	Company string `mapstructure:"company" yaml:"company"`
	Author  string `mapstructure:"author" yaml:"author"`

	// Analysis limits and storage.
	MaxRows int    `mapstructure:"max_rows" yaml:"max_rows"`
	RunsDir string `mapstructure:"runs_dir" yaml:"runs_dir"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.insight/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".insight")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("INSIGHT")
	v.AutomaticEnv()

	// Defaults. Every key needs an entry here: viper only binds env
	// vars for keys it already knows about.
	v.SetDefault("api_key", "")
	v.SetDefault("model", "gpt-4-turbo-preview")
	v.SetDefault("base_url", "https://api.openai.com/v1")
	v.SetDefault("remote_disabled", false)
	v.SetDefault("http_timeout_sec", 30)
	v.SetDefault("tone", "")
	v.SetDefault("company", "")
	v.SetDefault("author", "")
	v.SetDefault("max_rows", 100000)
	v.SetDefault("runs_dir", "")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".insight")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve runs_dir default: ~/.insight/runs
	if c.RunsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.RunsDir = filepath.Join(home, ".insight", "runs")
	}
	return &c, nil
}
