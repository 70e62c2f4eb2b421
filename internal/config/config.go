package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del bot.
type Config struct {
	BotToken      string `env:"BOT_TOKEN,required"`
	BotDebug      bool   `env:"BOT_DEBUG" envDefault:"false"`
	RedmineURL    string `env:"REDMINE_URL,required"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	EncryptionKey string `env:"ENCRYPTION_KEY,required"`
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Ventana máxima (en minutos) entre el fin de la llamada y /daily.
	RegisterWindowMinutes int `env:"DAILY_REGISTER_WINDOW_MINUTES" envDefault:"30"`
	// TTL (en minutos) del cache de proyectos por usuario.
	ProjectCacheTTLMinutes int `env:"PROJECT_CACHE_TTL_MINUTES" envDefault:"5"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
