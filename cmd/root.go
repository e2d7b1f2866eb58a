package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/cv-matcher/internal/notify"
	"github.com/spigell/cv-matcher/internal/queue"
	"github.com/spigell/cv-matcher/internal/server"
	"github.com/spigell/cv-matcher/internal/storage"
)

const (
	app = "cv-matcher"
)

type Config struct {
	Store   string              `mapstructure:"store"`
	Mongo   *MongoConfig        `mapstructure:"mongo"`
	Storage storage.Config      `mapstructure:"storage"`
	AI      *AIConfig           `mapstructure:"ai"`
	Scoring *ScoringConfig      `mapstructure:"scoring"`
	Twilio  notify.TwilioConfig `mapstructure:"twilio"`
	Queue   queue.Config        `mapstructure:"queue"`
	Server  server.Config       `mapstructure:"server"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type ScoringConfig struct {
	Mode    string             `mapstructure:"mode"`
	Weights map[string]float64 `mapstructure:"weights"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-matcher analyses résumés, scores them against jobs and notifies shortlisted candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var envBindings = map[string]string{
	"mongo.url":              "MONGO_URL",
	"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	"twilio.account-sid":     "TWILIO_ACCOUNT_SID",
	"twilio.auth-token-file": "TWILIO_AUTH_TOKEN_FILE",
	"twilio.whatsapp-from":   "TWILIO_WHATSAPP_FROM",
	"queue.url":              "RABBITMQ_URL",
	"server.addr":            "LISTEN_ADDR",
	"storage.s3.access-key":  "AWS_ACCESS_KEY_ID",
	"storage.s3.secret-key":  "AWS_SECRET_ACCESS_KEY",
	"storage.s3.region":      "AWS_REGION",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("store", "mongo")
	viper.SetDefault("mongo.database", "cv_matcher")
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.dir", "uploads")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("scoring.mode", "lenient")
	viper.SetDefault("twilio.country-code", notify.DefaultCountryCode)
	viper.SetDefault("queue.queue", queue.DefaultName)
	viper.SetDefault("server.addr", server.DefaultAddr)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("store", "", "document store: mongo or memory (default mongo)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
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
		// The default file may be absent, an explicit one may not.
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
