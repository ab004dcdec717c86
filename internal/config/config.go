package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Job    JobConfig    `mapstructure:"job"`
	Data   DataConfig   `mapstructure:"data"`
	Output OutputConfig `mapstructure:"output"`
	Run    RunConfig    `mapstructure:"run"`
}

type JobConfig struct {
	Path string `mapstructure:"path"`
}

type DataConfig struct {
	Path string `mapstructure:"path"`
}

type OutputConfig struct {
	Results string `mapstructure:"results"`
	JobInfo string `mapstructure:"job_info"`
	Chart   string `mapstructure:"chart"`
	Table   bool   `mapstructure:"table"`
}

type RunConfig struct {
	Seed      int64   `mapstructure:"seed"`
	TestRatio float64 `mapstructure:"test_ratio"`
	Quiet     bool    `mapstructure:"quiet"`
}

// Load reads configuration from defaults, the YAML file at configPath (or
// automl.yaml in the usual places), AUTOML_* environment variables and
// finally overrides, keyed like "output.chart".
func Load(configPath string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("automl")
		v.AddConfigPath(".")
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".automl"))
	}

	v.SetDefault("job.path", "")
	v.SetDefault("data.path", "")
	v.SetDefault("output.results", "results.json")
	v.SetDefault("output.job_info", "job_info.json")
	v.SetDefault("output.chart", "")
	v.SetDefault("output.table", true)
	v.SetDefault("run.seed", 42)
	v.SetDefault("run.test_ratio", 0.2)
	v.SetDefault("run.quiet", false)

	v.AutomaticEnv()
	v.SetEnvPrefix("AUTOML")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	for key, val := range overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}
