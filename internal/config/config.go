package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Vocabulary VocabularyConfig `yaml:"vocabulary" mapstructure:"vocabulary"`
	Matcher    MatcherConfig    `yaml:"matcher" mapstructure:"matcher"`
	CV         CVConfig         `yaml:"cv" mapstructure:"cv"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
}

type ServerConfig struct {
	Port           int   `yaml:"port" mapstructure:"port"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// VocabularyConfig points at the JSON array of known skills.
type VocabularyConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Cache bool   `yaml:"cache" mapstructure:"cache"`
}

type MatcherConfig struct {
	WordBoundary bool `yaml:"word_boundary" mapstructure:"word_boundary"`
}

// CVConfig selects the PDF text backend: "auto", "pdfcpu" or "poppler".
type CVConfig struct {
	PDFBackend string `yaml:"pdf_backend" mapstructure:"pdf_backend"`
}

// LLM Configuration
type LLMConfig struct {
	Provider    string         `yaml:"provider" mapstructure:"provider"` // "openai", "groq", or "none"
	BaseURL     string         `yaml:"base_url" mapstructure:"base_url"`
	Model       string         `yaml:"model" mapstructure:"model"`
	APIKey      string         `yaml:"api_key" mapstructure:"api_key"`
	Temperature float64        `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration  `yaml:"timeout" mapstructure:"timeout"`
	Cache       LLMCacheConfig `yaml:"cache" mapstructure:"cache"`
}

type LLMCacheConfig struct {
	Driver   string        `yaml:"driver" mapstructure:"driver"` // "none", "memory", "valkey"
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Address  string        `yaml:"address" mapstructure:"address"`
	Password string        `yaml:"password" mapstructure:"password"`
}

// StoreConfig configures the extraction history backend. An empty driver disables it.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "", "postgres", "sqlite"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// Load reads .env, an optional config.yaml and SKILLS_* environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("config: .env file not found, using environment variables")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SKILLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("vocabulary.path", "skills.json")
	v.SetDefault("vocabulary.cache", true)
	v.SetDefault("matcher.word_boundary", false)
	v.SetDefault("cv.pdf_backend", "auto")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.cache.driver", "none")
	v.SetDefault("llm.cache.ttl", time.Hour)
	v.SetDefault("llm.cache.address", "localhost:6379")
	v.SetDefault("llm.cache.password", "")
	v.SetDefault("store.driver", "")
	v.SetDefault("store.database_url", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// Get API key based on provider
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKeyFromEnv(cfg.LLM.Provider)
	}

	return &cfg, nil
}

func providerKeyFromEnv(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "groq":
		return os.Getenv("GROQ_API_KEY")
	}
	return ""
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
