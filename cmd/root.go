package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/convocatorias/internal/convocatoria"
	"github.com/spigell/convocatorias/internal/grading"
	"github.com/spigell/convocatorias/internal/logger"
)

const (
	app = "convocatorias"

	defaultStore = "convocatorias-data.yaml"
)

type Config struct {
	Store      string            `mapstructure:"store"`
	Evaluation *EvaluationConfig `mapstructure:"evaluation"`
	Regrade    *RegradeConfig    `mapstructure:"regrade"`
	Cache      *CacheConfig      `mapstructure:"cache"`
}

type EvaluationConfig struct {
	RepresentativeScore float64 `mapstructure:"representative-score"`
	MinScore            float64 `mapstructure:"min-score"`
	MaxScore            float64 `mapstructure:"max-score"`
	DefaultObservation  string  `mapstructure:"default-observation"`
}

type RegradeConfig struct {
	Workers int `mapstructure:"workers"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "convocatorias manages recruitment postings and grades technical evaluations with per-posting formulas",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("store", "CONVOCATORIAS_STORE"); err != nil {
		log.Fatalf("binding CONVOCATORIAS_STORE environment variable: %v", err)
	}

	viper.SetDefault("store", defaultStore)
	viper.SetDefault("evaluation.representative-score", grading.DefaultRepresentativeScore)
	viper.SetDefault("evaluation.min-score", grading.DefaultDomain.Min)
	viper.SetDefault("evaluation.max-score", grading.DefaultDomain.Max)
	viper.SetDefault("evaluation.default-observation", convocatoria.DefaultObservation)
	viper.SetDefault("regrade.workers", convocatoria.DefaultWorkers)
	viper.SetDefault("cache.ttl", convocatoria.DefaultCacheTTL)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is convocatorias.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("store", "", "path to the data file (default is "+defaultStore+")")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
}

func initConfig() {
	// .env is optional; values already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Defaults are enough when no config file exists, but an explicit or
		// broken one must be readable.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func (c *Config) service() convocatoria.Config {
	cfg := convocatoria.Config{}
	if c.Evaluation != nil {
		cfg.Domain = grading.Domain{Min: c.Evaluation.MinScore, Max: c.Evaluation.MaxScore}
		cfg.RepresentativeScore = convocatoria.RepresentativeScore(c.Evaluation.RepresentativeScore)
		cfg.DefaultObservation = c.Evaluation.DefaultObservation
	}
	if c.Regrade != nil {
		cfg.Workers = c.Regrade.Workers
	}
	if c.Cache != nil {
		cfg.CacheTTL = c.Cache.TTL
	}
	return cfg
}

// setup builds the logger and the service shared by every command. It exits
// the process on failure.
func setup() (*zap.Logger, *convocatoria.Service) {
	return setupWith(nil)
}

func setupWith(tune func(*convocatoria.Config)) (*zap.Logger, *convocatoria.Service) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	cfg := config.service()
	if tune != nil {
		tune(&cfg)
	}

	svc, err := convocatoria.New(cfg, convocatoria.Deps{
		Store:  convocatoria.NewFileStore(config.Store),
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("creating the service", zap.Error(err))
	}

	return logger, svc
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
