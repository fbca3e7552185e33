// Package config loads CLI configuration from flags, environment
// variables, .env files, and an optional YAML config file, in that
// order of precedence.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the resolved application configuration.
type Config struct {
	// StorePath is the embedded database directory.
	StorePath string

	// Term is the default academic term for previews and commits.
	Term string

	// Actor is recorded on commits, term locks, and audit entries.
	Actor string

	// Output selects CLI output format: table or yaml.
	Output string

	// Logging.
	LogLevel string
	Verbose  bool
	Quiet    bool

	// ConfigFile is the config file actually used, if any.
	ConfigFile string
}

// Load resolves configuration from every source. Precedence:
// command-line flags (bound by cobra), environment variables, .env
// files, config file, defaults.
func Load() (*Config, error) {
	loadEnvFiles()

	viper.SetEnvPrefix("ROSTERSYNC")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	viper.SetDefault("store", defaultStorePath())
	viper.SetDefault("actor", defaultActor())
	viper.SetDefault("output", "table")

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rostersync")
	}
	_ = viper.ReadInConfig()

	return &Config{
		StorePath:  viper.GetString("store"),
		Term:       viper.GetString("term"),
		Actor:      viper.GetString("actor"),
		Output:     viper.GetString("output"),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "info"),
		Verbose:    viper.GetBool("verbose"),
		Quiet:      viper.GetBool("quiet"),
		ConfigFile: viper.ConfigFileUsed(),
	}, nil
}

// loadEnvFiles loads .env files, later files overriding earlier ones.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func defaultStorePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.rostersync/store"
	}
	return ".rostersync/store"
}

func defaultActor() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "rostersync"
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
