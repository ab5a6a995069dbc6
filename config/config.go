package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name           string `mapstructure:"NAME"`
		Port           string `mapstructure:"PORT"`
		PrivateKeyPath string `mapstructure:"PRIVATE_KEY"`
		PublicKeyPath  string `mapstructure:"PUBLIC_KEY"`
	}

	DATABASE struct {
		Postgres struct {
			DSN string `mapstructure:"URL"`
		}
		Redis struct {
			Addr     string `mapstructure:"ADDR"`
			Password string `mapstructure:"PASSWORD"`
		}
		Mongo struct {
			Url  string `mapstructure:"URL"`
			Name string `mapstructure:"NAME"`
		}
	}

	REALTIME struct {
		AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`
		// Seconds of silence before a connection is considered dead
		// and forcibly deregistered.
		HeartbeatTimeout int `mapstructure:"HEARTBEAT_TIMEOUT"`
	}

	MAILER struct {
		SMTPHost string `mapstructure:"SMTP_HOST"`
		SMTPPort int    `mapstructure:"SMTP_PORT"`
		Username string `mapstructure:"USERNAME"`
		Password string `mapstructure:"PASSWORD"`
		From     string `mapstructure:"FROM"`
	}
}

var Conf *AppConfig

func LoadConfig() error {
	viper.SetConfigName("application")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("CAMPUS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("REALTIME.HEARTBEAT_TIMEOUT", 60)
	viper.SetDefault("DATABASE.MONGO.NAME", "campus_connect")
	viper.SetDefault("APP.PRIVATE_KEY", "private.pem")
	viper.SetDefault("APP.PUBLIC_KEY", "public.pem")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	var config AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	Conf = &config
	log.Info().Msg("configuration loaded...")
	return nil
}
