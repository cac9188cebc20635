package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/tenderloom/tenderloom/internal/utils"
	"gopkg.in/yaml.v3"
)

// Global configuration structure. Built once at startup and passed down to the
// component constructors; nothing reads the environment after Load returns.
type Global struct {
	// Storage locations
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`
	UploadDir    string `mapstructure:"upload_dir" yaml:"upload_dir"`
	GeneratedDir string `mapstructure:"generated_dir" yaml:"generated_dir"`
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// Ollama backend
	OllamaHost    string  `mapstructure:"ollama_host" yaml:"ollama_host"`
	OllamaModel   string  `mapstructure:"ollama_model" yaml:"ollama_model"`
	Temperature   float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	ContextWindow int     `mapstructure:"context_window" yaml:"context_window"`

	// HTTP timeouts (seconds)
	ConnectTimeoutSec  int `mapstructure:"connect_timeout_sec" yaml:"connect_timeout_sec"`
	GenerateTimeoutSec int `mapstructure:"generate_timeout_sec" yaml:"generate_timeout_sec"`

	// Upload limits
	MaxFileSizeMB int `mapstructure:"max_file_size_mb" yaml:"max_file_size_mb"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tenderloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".tenderloom")
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TENDERLOOM")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("ollama_model", "mistral-small:latest")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 16384)
	v.SetDefault("context_window", 16384)
	v.SetDefault("connect_timeout_sec", 30)
	v.SetDefault("generate_timeout_sec", 7200)
	v.SetDefault("max_file_size_mb", 50)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".tenderloom")
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
	// Resolve storage defaults relative to data_dir
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, ".tenderloom", "data")
	}
	if c.UploadDir == "" {
		c.UploadDir = filepath.Join(c.DataDir, "uploads")
	}
	if c.GeneratedDir == "" {
		c.GeneratedDir = filepath.Join(c.DataDir, "generated")
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, "tenderloom.db")
	}
	return &c, nil
}

// EnsureDirs creates the storage directories if they do not exist.
func EnsureDirs(c *Global) error {
	for _, dir := range []string{c.DataDir, c.UploadDir, c.GeneratedDir} {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return nil
}
