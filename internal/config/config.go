package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL"`
	LLMAPIKey     string `env:"LLM_API_KEY,required"`
	LLMBaseURL    string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel      string `env:"LLM_MODEL" envDefault:"gpt-5.1"`
	LLMTimeoutSec int    `env:"LLM_TIMEOUT_SECONDS" envDefault:"60"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	LogFile       string `env:"LOG_FILE"`
	LogProduction bool   `env:"LOG_PRODUCTION" envDefault:"true"`

	// El timebox no tiene default: si falta, el servicio no arranca.
	InterviewTimeboxMs         int64  `env:"INTERVIEW_TIMEBOX_MS,required"`
	InterviewUnproductiveLimit int    `env:"INTERVIEW_UNPRODUCTIVE_LIMIT" envDefault:"2"`
	InterviewScriptPath        string `env:"INTERVIEW_SCRIPT_PATH"`
	InterviewSessionTTLMinutes int    `env:"INTERVIEW_SESSION_TTL_MINUTES" envDefault:"120"`
}

var (
	// ErrInvalidTimebox indica un INTERVIEW_TIMEBOX_MS no positivo.
	ErrInvalidTimebox = errors.New("config: INTERVIEW_TIMEBOX_MS must be > 0")
	// ErrInvalidUnproductiveLimit indica un INTERVIEW_UNPRODUCTIVE_LIMIT no positivo.
	ErrInvalidUnproductiveLimit = errors.New("config: INTERVIEW_UNPRODUCTIVE_LIMIT must be > 0")
)

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa reglas que los tags de env no pueden expresar.
func (c *Config) Validate() error {
	if c.InterviewTimeboxMs <= 0 {
		return ErrInvalidTimebox
	}
	if c.InterviewUnproductiveLimit <= 0 {
		return ErrInvalidUnproductiveLimit
	}
	return nil
}

// Timebox devuelve el timebox de la fase de background.
func (c *Config) Timebox() time.Duration {
	return time.Duration(c.InterviewTimeboxMs) * time.Millisecond
}

// LLMTimeout es el timeout por request al juez.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

// SessionTTL es cuanto vive una sesion inactiva en el store.
func (c *Config) SessionTTL() time.Duration {
	if c.InterviewSessionTTLMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.InterviewSessionTTLMinutes) * time.Minute
}
