package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/confscout/speaker-scout/internal/ai"
	"github.com/confscout/speaker-scout/internal/ai/anthropic"
	"github.com/confscout/speaker-scout/internal/ai/gemini"
	"github.com/confscout/speaker-scout/internal/ai/openai"
	"github.com/confscout/speaker-scout/internal/logger"
	"github.com/confscout/speaker-scout/internal/matcher"
	"github.com/confscout/speaker-scout/internal/secrets"
)

const (
	app = "speaker-scout"
)

type Config struct {
	CatalogFile string          `mapstructure:"catalog-file"`
	Server      *ServerConfig   `mapstructure:"server"`
	Matching    *MatchingConfig `mapstructure:"matching"`
	AI          *AIConfig       `mapstructure:"ai"`
}

type ServerConfig struct {
	Address    string `mapstructure:"address"`
	CORSOrigin string `mapstructure:"cors-origin"`
}

type MatchingConfig struct {
	Threshold       float64       `mapstructure:"threshold"`
	Concurrency     int           `mapstructure:"concurrency"`
	ItemTimeout     time.Duration `mapstructure:"item-timeout"`
	RequestDeadline time.Duration `mapstructure:"request-deadline"`
	MaxLogLength    int           `mapstructure:"max-log-length"`
}

type AIConfig struct {
	Provider  string           `mapstructure:"provider"`
	OpenAI    *OpenAIConfig    `mapstructure:"openai"`
	Anthropic *AnthropicConfig `mapstructure:"anthropic"`
	Gemini    *GeminiConfig    `mapstructure:"gemini"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api-key"`
	APIKeyFile  string  `mapstructure:"api-key-file"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max-tokens"`
}

type AnthropicConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxTokens  int64  `mapstructure:"max-tokens"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "speaker-scout matches conference speakers against your business interests using an LLM",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"ai.openai.api-key-file":    "OPENAI_API_KEY_FILE",
		"ai.anthropic.api-key-file": "ANTHROPIC_API_KEY_FILE",
		"ai.gemini.api-key-file":    "GEMINI_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is speaker-scout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
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

// newCompleter builds the configured scoring backend. OpenAI is the default
// provider when none is set.
func newCompleter(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Completer, error) {
	if cfg == nil {
		cfg = &AIConfig{}
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		if cfg.OpenAI == nil {
			cfg.OpenAI = &OpenAIConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: cfg.OpenAI.APIKey,
			File:  cfg.OpenAI.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}
		return openai.New(apiKey, openai.Options{
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
		})
	case "anthropic":
		if cfg.Anthropic == nil {
			cfg.Anthropic = &AnthropicConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "anthropic api key",
			Value: cfg.Anthropic.APIKey,
			File:  cfg.Anthropic.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.anthropic.api-key-file or ANTHROPIC_API_KEY_FILE)", err)
		}
		return anthropic.New(apiKey, anthropic.Options{
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Anthropic.MaxTokens,
		})
	case "gemini":
		if cfg.Gemini == nil {
			cfg.Gemini = &GeminiConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}
		return gemini.New(ctx, apiKey, cfg.Gemini.Model)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// newMatcher wires the completer into the scoring engine with the configured
// concurrency and deadlines.
func newMatcher(ctx context.Context, config *Config, log *zap.Logger) (*matcher.Matcher, error) {
	completer, err := newCompleter(ctx, config.AI, log)
	if err != nil {
		return nil, fmt.Errorf("building scoring client: %w", err)
	}

	opts := matcher.Options{}
	if config.Matching != nil {
		opts.Concurrency = config.Matching.Concurrency
		opts.ItemTimeout = config.Matching.ItemTimeout
		opts.RequestDeadline = config.Matching.RequestDeadline
		opts.MaxLogLength = config.Matching.MaxLogLength
	}

	engineLogger := logger.WithProvider(log, completer.Provider(), completer.Model())

	return matcher.New(completer, opts, engineLogger)
}
