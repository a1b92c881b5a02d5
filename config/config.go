package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Auth     Auth
	Progress Progress
	Rate     Rate
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Progress struct {
	// Timezone is the reference location for calendar-day computations
	// (streaks and daily stats). Defaults to UTC.
	Timezone string
}

type Rate struct {
	RequestsPerSecond int
	Burst             int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("PROGRESS_TIMEZONE", "UTC")
	viper.SetDefault("AUTH_TOKEN_TTL", "720h")
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Auth.JWTSecret = viper.GetString("AUTH_JWT_SECRET")
	config.Auth.TokenTTL = viper.GetDuration("AUTH_TOKEN_TTL")

	config.Progress.Timezone = viper.GetString("PROGRESS_TIMEZONE")

	config.Rate.RequestsPerSecond = viper.GetInt("RATE_LIMIT_RPS")
	config.Rate.Burst = viper.GetInt("RATE_LIMIT_BURST")

	log.Info().Str("port", config.Server.Port).Str("timezone", config.Progress.Timezone).Msg("Config loaded")
	return &config, nil
}

// Location resolves the configured reference timezone, falling back to UTC
// when the name is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Progress.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", c.Progress.Timezone).Msg("Unknown timezone, falling back to UTC")
		return time.UTC
	}
	return loc
}
