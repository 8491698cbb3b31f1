package cmd

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/mentor-matcher/internal/api"
	"github.com/spigell/mentor-matcher/internal/matching"
)

const (
	app       = "mentor-matcher"
	envPrefix = "MENTOR_MATCHER"
)

type Config struct {
	Seeker      matching.SeekerPreferences `mapstructure:"seeker"`
	Pool        PoolConfig                 `mapstructure:"pool"`
	Matching    MatchingConfig             `mapstructure:"matching"`
	Exclude     ExcludeConfig              `mapstructure:"exclude"`
	ExcludeFile string                     `mapstructure:"exclude-file"`
	Server      api.Config                 `mapstructure:"server"`
}

type PoolConfig struct {
	File           string           `mapstructure:"file"`
	Directory      *DirectoryConfig `mapstructure:"directory"`
	Cache          *CacheConfig     `mapstructure:"cache"`
	ReloadInterval time.Duration    `mapstructure:"reload-interval"`
}

type DirectoryConfig struct {
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
	UserAgent string `mapstructure:"user-agent"`
	PerPage   int    `mapstructure:"per-page"`
}

type CacheConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Key      string        `mapstructure:"key"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type MatchingConfig struct {
	// MinScore is a pointer so that an explicit 0 is kept.
	MinScore *int `mapstructure:"min-score"`
	Limit    int `mapstructure:"limit"`
	Workers  int `mapstructure:"workers"`
}

type ExcludeConfig struct {
	IDs       []string `mapstructure:"ids"`
	Companies []string `mapstructure:"companies"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "mentor-matcher ranks alumni mentors for a seeker by multi-criteria fit",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("pool.directory.token-file", envPrefix+"_TOKEN_FILE"); err != nil {
		log.Fatalf("binding %s_TOKEN_FILE environment variable: %v", envPrefix, err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is mentor-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

// setDefaults registers every key so env overrides work without a config file.
func setDefaults() {
	policy := matching.DefaultPolicy()

	viper.SetDefault("matching.min-score", policy.MinScore)
	viper.SetDefault("matching.limit", policy.Limit)
	viper.SetDefault("matching.workers", 0)
	viper.SetDefault("seeker.experience-band", string(matching.BandAny))
	viper.SetDefault("pool.file", "")
	viper.SetDefault("pool.reload-interval", time.Duration(0))
	viper.SetDefault("exclude-file", "")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.request-timeout", 30*time.Second)
}

func initConfig() {
	// A local .env is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit --config everything can come from flags and env.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		return nil, errors.New("empty configuration")
	}

	seeker, err := config.Seeker.Normalize()
	if err != nil {
		return nil, err
	}
	config.Seeker = seeker

	return config, nil
}
