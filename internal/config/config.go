package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Token        string  `env:"TOKEN,required,notEmpty"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
	DBPath       string  `env:"DB_PATH"                 envDefault:"db.sqlite"`
	LogLevel     string  `env:"LOG_LEVEL"               envDefault:"info"`

	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	AssistantBaseURL string `env:"ASSISTANT_BASE_URL"`
	AssistantModel   string `env:"ASSISTANT_MODEL"`

	NewsAPIKey     string        `env:"NEWS_API_KEY"`
	NewsAPIBaseURL string        `env:"NEWS_API_BASE_URL" envDefault:"https://newsapi.org"`
	NewsFeeds      []string      `env:"NEWS_FEEDS"`
	NewsCacheTTL   time.Duration `env:"NEWS_CACHE_TTL"    envDefault:"5m"`

	FetchProxies []string      `env:"FETCH_PROXIES"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"15s"`
	FetchDirect  bool          `env:"FETCH_DIRECT"`

	DigestSpec string `env:"DIGEST_SPEC" envDefault:"0 * * * *"`
}

func LoadConfig() Config {
	var cfg Config
	env.Must(cfg, env.Parse(&cfg))
	return cfg
}
