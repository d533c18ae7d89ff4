package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm"    validate:"required"`
	Task   TaskConfig   `mapstructure:"task"   validate:"required"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Auth   AuthConfig   `mapstructure:"auth"`

	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// CORSAllowedOrigins lists origins allowed by the CORS middleware.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// Backend names accepted by LLMConfig.Backend.
const (
	BackendAuto      = "auto"
	BackendOpenAI    = "openai"
	BackendGemini    = "gemini"
	BackendAnthropic = "anthropic"
	BackendMock      = "mock"
)

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// Backend selects the generation client. "auto" prefers OpenAI when an
	// OpenAI key is present and falls back to Gemini otherwise.
	Backend  string `mapstructure:"backend"   validate:"required,oneof=auto openai gemini anthropic mock"`
	MockMode bool   `mapstructure:"mock_mode"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIModel   string `mapstructure:"openai_model"`
	OpenAIBaseURL string `mapstructure:"openai_base_url" validate:"omitempty,url"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	AnthropicModel  string `mapstructure:"anthropic_model"`

	Temperature    float64       `mapstructure:"temperature"     validate:"gte=0,lte=2"`
	MaxTokens      int           `mapstructure:"max_tokens"      validate:"gt=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	MaxConcurrent  int           `mapstructure:"max_concurrent"  validate:"gt=0"`

	// IncludeExplanation asks the model for an explanation per question and
	// makes the parser fill a placeholder when one is missing.
	IncludeExplanation bool `mapstructure:"include_explanation"`

	// PromptTemplatePath optionally overrides the embedded prompt template.
	PromptTemplatePath string `mapstructure:"prompt_template_path" validate:"omitempty,file"`
}

// TaskConfig contains settings for background task processing.
type TaskConfig struct {
	WorkerCount      int `mapstructure:"worker_count"       validate:"gt=0"`
	QueueSize        int `mapstructure:"queue_size"         validate:"gt=0"`
	DefaultListLimit int `mapstructure:"default_list_limit" validate:"gt=0"`
}

// CacheConfig controls the in-process generation result cache.
type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxCostBytes int64         `mapstructure:"max_cost_bytes" validate:"gte=0"`
	TTL          time.Duration `mapstructure:"ttl"            validate:"gte=0"`
}

// AuthConfig contains optional API authentication settings.
// An empty JWTSecret disables authentication.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	// TokenLifetime bounds tokens minted by the token command.
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
}

// AuthEnabled reports whether bearer-token authentication is configured.
func (c AuthConfig) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// TelemetryConfig controls OpenTelemetry export over OTLP/gRPC. When disabled
// the global no-op providers stay in place.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// OTLPEndpoint is host:port of the collector. Empty defers to the
	// standard OTEL_EXPORTER_OTLP_* variables.
	OTLPEndpoint   string        `mapstructure:"otlp_endpoint"`
	Insecure       bool          `mapstructure:"insecure"`
	ExportInterval time.Duration `mapstructure:"export_interval" validate:"gte=0"`
}
