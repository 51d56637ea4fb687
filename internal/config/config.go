// Package config loads the application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Conf holds the configuration loaded by Init.
var Conf Config

// Config mirrors configs/config.yaml.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Secrets      SecretsConfig      `mapstructure:"secrets"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Embedding    EmbeddingConfig    `mapstructure:"embedding"`
	Moderation   ModerationConfig   `mapstructure:"moderation"`
	Analyzer     AnalyzerConfig     `mapstructure:"analyzer"`
	Retrieval    RetrievalConfig    `mapstructure:"retrieval"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Cache        CacheConfig        `mapstructure:"cache"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	MinIO        MinIOConfig        `mapstructure:"minio"`
	JWT          JWTConfig          `mapstructure:"jwt"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// SecretsConfig points at an optional file whose keys are merged over the config.
type SecretsConfig struct {
	File string `mapstructure:"file"`
}

// LLMConfig configures the OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	APIKey         string              `mapstructure:"api_key"`
	BaseURL        string              `mapstructure:"base_url"`
	Model          string              `mapstructure:"model"`
	PromptTemplate string              `mapstructure:"prompt_template"`
	Generation     LLMGenerationConfig `mapstructure:"generation"`
}

type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// EmbeddingConfig configures the embedding model. Empty APIKey/BaseURL fall back to llm.
type EmbeddingConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

type ModerationConfig struct {
	Model string `mapstructure:"model"`
	// FailClosed flags messages when the moderation service is unavailable.
	FailClosed bool `mapstructure:"fail_closed"`
}

// AnalyzerConfig configures the linguistic analyzer service.
type AnalyzerConfig struct {
	URL      string `mapstructure:"url"`
	Language string `mapstructure:"language"`
}

type RetrievalConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
	TopK      int    `mapstructure:"top_k"`
}

type OrchestratorConfig struct {
	MinConfidence      float64       `mapstructure:"min_confidence"`
	MaxConcurrentTasks int64         `mapstructure:"max_concurrent_tasks"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	ModerationTimeout  time.Duration `mapstructure:"moderation_timeout"`
	StructureTimeout   time.Duration `mapstructure:"structure_timeout"`
	GenerationTimeout  time.Duration `mapstructure:"generation_timeout"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
	Consume bool   `mapstructure:"consume"`
}

type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	TokenExpireHours int    `mapstructure:"token_expire_hours"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.prompt_template", "general_query")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("moderation.model", "text-moderation-latest")
	v.SetDefault("analyzer.language", "es_core_news_sm")
	v.SetDefault("retrieval.index_name", "reference_documents")
	v.SetDefault("retrieval.top_k", 4)
	v.SetDefault("orchestrator.min_confidence", 0.5)
	v.SetDefault("orchestrator.max_concurrent_tasks", 192)
	v.SetDefault("orchestrator.request_timeout", 60*time.Second)
	v.SetDefault("orchestrator.moderation_timeout", 10*time.Second)
	v.SetDefault("orchestrator.structure_timeout", 10*time.Second)
	v.SetDefault("orchestrator.generation_timeout", 45*time.Second)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("kafka.topic", "chat-events")
	v.SetDefault("kafka.group_id", "chatbot-rag-audit")
	v.SetDefault("minio.bucket_name", "chatbot-evaluations")
	v.SetDefault("jwt.token_expire_hours", 24)

	// AutomaticEnv only reaches Unmarshal for keys viper already knows about.
	for _, key := range []string{
		"secrets.file", "log.output_path",
		"llm.api_key", "embedding.api_key", "embedding.base_url",
		"analyzer.url", "retrieval.addresses", "retrieval.username", "retrieval.password",
		"database.mysql.dsn", "database.redis.addr", "database.redis.password",
		"kafka.brokers", "minio.endpoint", "minio.access_key_id", "minio.secret_access_key",
		"jwt.secret",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("moderation.fail_closed", false)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("kafka.consume", false)
	v.SetDefault("rate_limit.rps", 0)
	v.SetDefault("rate_limit.burst", 0)
}

// Load reads the YAML file at configPath (optional), applies defaults, CHATBOT_* environment
// overrides and the secrets file, and returns the decoded configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("CHATBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if secretsFile := v.GetString("secrets.file"); secretsFile != "" {
		if err := mergeSecrets(v, secretsFile); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeSecrets merges a JSON or YAML secrets file over the loaded settings, so API keys and
// passwords can live outside config.yaml.
func mergeSecrets(v *viper.Viper, path string) error {
	sv := viper.New()
	sv.SetConfigFile(path)
	if err := sv.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read secrets file: %w", err)
	}
	if err := v.MergeConfigMap(sv.AllSettings()); err != nil {
		return fmt.Errorf("failed to merge secrets: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Orchestrator.MinConfidence < 0 || c.Orchestrator.MinConfidence > 1 {
		return fmt.Errorf("orchestrator.min_confidence must be within [0,1], got %v", c.Orchestrator.MinConfidence)
	}
	if c.Orchestrator.MaxConcurrentTasks < 3 {
		return fmt.Errorf("orchestrator.max_concurrent_tasks must be at least 3, got %d", c.Orchestrator.MaxConcurrentTasks)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	return nil
}

// Init loads configPath into Conf and panics on failure.
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	Conf = *cfg
}

// Watch reloads the log section whenever the config file changes and hands the new level to
// onLogLevel. Other settings are read once at startup.
func Watch(configPath string, onLogLevel func(level string)) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if lvl := v.GetString("log.level"); lvl != "" {
			onLogLevel(lvl)
		}
	})
	v.WatchConfig()
}
