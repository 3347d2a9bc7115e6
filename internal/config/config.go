package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Store     StoreConfig
	Archive   ArchiveConfig
	LogLevel  string
	Interview string // path to a YAML interview definition, empty for the built-in one
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	storeCfg, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Store:     storeCfg,
		Archive:   loadArchiveConfig(),
		LogLevel:  strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		Interview: strings.TrimSpace(os.Getenv("INTERVIEW_DEFINITION")),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig selects and configures the completion backend.
type AIConfig struct {
	Provider string // "ark" or "gemini"

	// Ark (eino) backend.
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int

	// Gemini backend.
	GeminiAPIKey string
	GeminiModel  string

	Timeout time.Duration
}

// Enabled reports whether the selected backend has the credentials it needs.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case "gemini":
		return c.GeminiModel != ""
	default:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	}
}

// NewChatModel builds the Ark chat model from this configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials missing: provide ARK_API_KEY plus ARK_MODEL, or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	})
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("AI_TIMEOUT")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return AIConfig{}, fmt.Errorf("invalid AI_TIMEOUT value %q: %w", raw, err)
		}
		timeout = parsed
	}

	provider := strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER")))
	if provider == "" {
		provider = "ark"
	}
	if provider != "ark" && provider != "gemini" {
		return AIConfig{}, fmt.Errorf("unknown AI_PROVIDER value: %q", provider)
	}

	return AIConfig{
		Provider:     provider,
		APIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:        strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:      getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:  strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		Timeout:      timeout,
	}, nil
}

// StoreConfig selects the conversation store backend.
type StoreConfig struct {
	Driver    string // "memory" or "sqlite"
	Path      string
	CacheSize int
}

func loadStoreConfig() (StoreConfig, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER")))
	if driver == "" {
		driver = "memory"
	}
	if driver != "memory" && driver != "sqlite" {
		return StoreConfig{}, fmt.Errorf("unknown STORE_DRIVER value: %q", driver)
	}

	cacheSize := 0
	if override, err := parseOptionalIntEnv("STORE_CACHE_SIZE"); err != nil {
		return StoreConfig{}, err
	} else if override != nil {
		cacheSize = *override
	}

	return StoreConfig{
		Driver:    driver,
		Path:      getEnvOrDefault("STORE_PATH", "data/intake.db"),
		CacheSize: cacheSize,
	}, nil
}

// ArchiveConfig selects where finalized interviews are written.
type ArchiveConfig struct {
	Driver    string // "fs" or "s3"
	Dir       string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func loadArchiveConfig() ArchiveConfig {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("ARCHIVE_DRIVER")))
	if driver == "" {
		driver = "fs"
	}

	return ArchiveConfig{
		Driver:    driver,
		Dir:       getEnvOrDefault("ARCHIVE_DIR", "data/archive"),
		Endpoint:  strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		Region:    strings.TrimSpace(os.Getenv("S3_REGION")),
		AccessKey: strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		Bucket:    strings.TrimSpace(os.Getenv("S3_BUCKET")),
		UseSSL:    getEnvOrDefault("S3_USE_SSL", "false") == "true",
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
