package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cyp0633/librecur/tracker"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = ".librecur"
	envPrefix  = "LIBRECUR"
)

// AppConfig is everything the CLI reads from flags, environment and the
// config file.
type AppConfig struct {
	Verbose bool           `mapstructure:"verbose"`
	Data    DataConfig     `mapstructure:"data" validate:"required"`
	Tracker tracker.Config `mapstructure:"tracker"`
	Serve   ServeConfig    `mapstructure:"serve"`
}

// DataConfig locates the task file.
type DataConfig struct {
	File   string `mapstructure:"file" validate:"required"`
	Format string `mapstructure:"format" validate:"required,oneof=yaml json"`
}

// ServeConfig configures the feed server.
type ServeConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Realm    string `mapstructure:"realm"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password" validate:"required_with=Username"`
}

// validate is a single instance of Validate, it caches struct info
var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)
	v.SetDefault("data.file", "librecur.yaml")
	v.SetDefault("data.format", "yaml")
	v.SetDefault("tracker.show_completed_tasks", tracker.DefaultConfig.ShowCompletedTasks)
	v.SetDefault("tracker.default_category", "")
	v.SetDefault("serve.addr", "127.0.0.1:8080")
	v.SetDefault("serve.realm", "librecur")
	v.SetDefault("serve.username", "")
	v.SetDefault("serve.password", "")
}

// loadConfig reads .env, the environment and the config file into an
// AppConfig. cfgFile overrides the search of $HOME and the working
// directory for .librecur.yaml.
func loadConfig(v *viper.Viper, cfgFile string) (AppConfig, error) {
	// It's okay if .env file doesn't exist.
	_ = godotenv.Load()

	v.SetEnvPrefix(envPrefix) // e.g., LIBRECUR_DATA_FILE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
