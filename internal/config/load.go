package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. QGEN_SERVER_PORT or QGEN_LLM_BACKEND.
const EnvPrefix = "QGEN"

// legacyEnv maps config keys to the unprefixed variable names used by
// earlier deployments of the service. Prefixed variables win when both are set.
var legacyEnv = map[string][]string{
	"server.port":           {"PORT"},
	"llm.openai_api_key":    {"OPENAI_API_KEY"},
	"llm.openai_model":      {"OPENAI_MODEL"},
	"llm.openai_base_url":   {"OPENAI_BASE_URL"},
	"llm.gemini_api_key":    {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"llm.gemini_model":      {"GOOGLE_MODEL"},
	"llm.anthropic_api_key": {"ANTHROPIC_API_KEY"},
	"llm.mock_mode":         {"MOCK_MODE"},
}

// Load configuration from environment variables and an optional config.yaml
// in the working directory. Environment variables take precedence over values
// from config files. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the config file at path when path is
// non-empty. A missing explicit file is an error; a missing default file is not.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key with viper so AutomaticEnv can override
// keys that have no file value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("llm.backend", BackendAuto)
	v.SetDefault("llm.mock_mode", false)
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.openai_model", "gpt-3.5-turbo")
	v.SetDefault("llm.openai_base_url", "")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.anthropic_api_key", "")
	v.SetDefault("llm.anthropic_model", "claude-3-5-haiku-latest")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.request_timeout", "120s")
	v.SetDefault("llm.max_concurrent", 4)
	v.SetDefault("llm.include_explanation", false)
	v.SetDefault("llm.prompt_template_path", "")

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.default_list_limit", 50)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_cost_bytes", 32<<20)
	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime", "24h")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.export_interval", "30s")
}
