package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Session   SessionConfig
	Submit    SubmitConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	TTL time.Duration
}

type SubmitConfig struct {
	RelayURL       string
	PaymentURL     string
	RedirectDelay  time.Duration
	RequestTimeout time.Duration
}

type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_TTL_MINUTES", 60)
	viper.SetDefault("SUBMIT_RELAY_URL", "https://formsubmit.co/orders@example.com")
	viper.SetDefault("SUBMIT_PAYMENT_URL", "https://paystack.com/pay/YOURPAYMENTLINK")
	viper.SetDefault("SUBMIT_REDIRECT_DELAY_MS", 2000)
	viper.SetDefault("SUBMIT_REQUEST_TIMEOUT_SECONDS", 15)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			TTL: time.Duration(viper.GetInt("SESSION_TTL_MINUTES")) * time.Minute,
		},
		Submit: SubmitConfig{
			RelayURL:       viper.GetString("SUBMIT_RELAY_URL"),
			PaymentURL:     viper.GetString("SUBMIT_PAYMENT_URL"),
			RedirectDelay:  time.Duration(viper.GetInt("SUBMIT_REDIRECT_DELAY_MS")) * time.Millisecond,
			RequestTimeout: time.Duration(viper.GetInt("SUBMIT_REQUEST_TIMEOUT_SECONDS")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
	}
}
