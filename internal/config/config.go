// Package config handles loading and validating the voiceagent configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the voiceagent daemon.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	STT     STTConfig     `mapstructure:"stt"`
	LLM     LLMConfig     `mapstructure:"llm"`
	TTS     TTSConfig     `mapstructure:"tts"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the API and health server settings.
type ServerConfig struct {
	Port           int   `mapstructure:"port"`
	HealthPort     int   `mapstructure:"health_port"`
	GRPCHealthPort int   `mapstructure:"grpc_health_port"` // 0 disables the gRPC health server
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// STTConfig holds AssemblyAI transcription settings.
type STTConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// LLMConfig holds Gemini response-generation settings.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// TTSConfig holds Murf speech-synthesis settings.
type TTSConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	VoiceID         string        `mapstructure:"voice_id"`
	MaxChars        int           `mapstructure:"max_chars"`
	Timeout         time.Duration `mapstructure:"timeout"`
	FallbackTimeout time.Duration `mapstructure:"fallback_timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./voiceagent.yaml, ./configs/voiceagent.yaml,
// /etc/voiceagent/voiceagent.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.grpc_health_port", 0)
	v.SetDefault("server.max_upload_bytes", 50<<20)
	v.SetDefault("stt.api_key", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("tts.api_key", "")
	v.SetDefault("stt.base_url", "https://api.assemblyai.com")
	v.SetDefault("stt.timeout", 30*time.Second)
	v.SetDefault("stt.poll_interval", 500*time.Millisecond)
	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("llm.model", "gemini-1.5-flash")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("tts.base_url", "https://api.murf.ai")
	v.SetDefault("tts.voice_id", "en-US-natalie")
	v.SetDefault("tts.max_chars", 3000)
	v.SetDefault("tts.timeout", 10*time.Second)
	v.SetDefault("tts.fallback_timeout", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("voiceagent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/voiceagent")
	}

	// Environment variables: VOICEAGENT_LLM_API_KEY, VOICEAGENT_SERVER_PORT, etc.
	v.SetEnvPrefix("VOICEAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${GEMINI_API_KEY}")
	cfg.STT.APIKey = resolveEnvRef(cfg.STT.APIKey)
	cfg.LLM.APIKey = resolveEnvRef(cfg.LLM.APIKey)
	cfg.TTS.APIKey = resolveEnvRef(cfg.TTS.APIKey)

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
