package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FLATSQL_STORAGE_DATA_DIR.
const EnvPrefix = "FLATSQL"

type FlatSqlConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		DataDir string `mapstructure:"data_dir"`
	} `mapstructure:"storage"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Shell struct {
		Prompt      string `mapstructure:"prompt"`
		HistoryFile string `mapstructure:"history_file"`
	} `mapstructure:"shell"`
}

var defaults = map[string]any{
	"app_name":           "flatsql",
	"storage.data_dir":   "./sql",
	"log.level":          "warn",
	"shell.prompt":       "flatsql> ",
	"shell.history_file": "~/.flatsql_history",
}

// config key -> command line flag
var flagKeys = map[string]string{
	"storage.data_dir":   "data-dir",
	"log.level":          "log-level",
	"shell.history_file": "history",
}

// RegisterFlags adds the flags LoadConfig knows how to bind.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("data-dir", defaults["storage.data_dir"].(string), "directory holding the databases")
	fs.String("log-level", defaults["log.level"].(string), "log level (debug, info, warn, error)")
	fs.String("history", defaults["shell.history_file"].(string), "shell history file, empty disables it")
}

// LoadConfig merges defaults, the YAML file at path (skipped when empty),
// FLATSQL_* environment variables and changed flags, in increasing order of
// precedence.
func LoadConfig(path string, flags *pflag.FlagSet) (*FlatSqlConfig, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg FlatSqlConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Shell.HistoryFile = expandHome(cfg.Shell.HistoryFile)

	return &cfg, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
