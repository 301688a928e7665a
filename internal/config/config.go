// Package config loads codexecd's runtime configuration: Kafka
// connectivity, concurrency and dedup tuning, and the workspace root, the
// way the teacher's cmd/scrc/config.go loaded envOrDefault/parseX values,
// generalized to a viper-backed, typed accessor per micha3lbrown-forge's
// internal/config package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"codexec/internal/dedup"
	"codexec/internal/gate"
)

// KafkaConfig describes how codexecd reaches the script and result topics.
type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	ScriptsTopic string   `mapstructure:"scripts_topic"`
	ResultsTopic string   `mapstructure:"results_topic"`
	GroupID      string   `mapstructure:"group_id"`
}

// Config is codexecd's fully resolved runtime configuration.
type Config struct {
	Kafka KafkaConfig `mapstructure:"kafka"`

	WorkspaceRoot string `mapstructure:"workspace_root"`
	DockerBinary  string `mapstructure:"docker_binary"`

	MaxScripts  int           `mapstructure:"max_scripts"`
	MaxParallel int           `mapstructure:"max_parallel"`
	DedupTTL    time.Duration `mapstructure:"dedup_ttl"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
}

// Load reads codexecd's configuration from the CODEXEC_-prefixed
// environment, an optional YAML file, and built-in defaults, in that order
// of decreasing precedence (viper resolves env over file over default
// automatically once bound).
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CODEXEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %q: %w", configPath, err)
		}
	} else {
		v.SetConfigName("codexecd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/codexecd")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = gate.DefaultMaxConcurrent
	}
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = dedup.DefaultTTL
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "codexec-runner"
	}
	if cfg.DockerBinary == "" {
		cfg.DockerBinary = "docker"
	}
	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = filepath.Join(os.TempDir(), "codexec")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kafka.brokers", []string{"kafka:9092"})
	v.SetDefault("kafka.scripts_topic", "scripts")
	v.SetDefault("kafka.results_topic", "script-results")
	v.SetDefault("kafka.group_id", "codexec-runner")
	v.SetDefault("workspace_root", filepath.Join(os.TempDir(), "codexec"))
	v.SetDefault("docker_binary", "docker")
	v.SetDefault("max_scripts", 0)
	v.SetDefault("max_parallel", gate.DefaultMaxConcurrent)
	v.SetDefault("dedup_ttl", dedup.DefaultTTL)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}
