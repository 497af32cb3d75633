package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name string `mapstructure:"NAME"`
		Port string `mapstructure:"PORT"`
		Env  string `mapstructure:"ENV"`
		// InsecureAuth accepts unverified bearer tokens. Test environments
		// only, never enable in production.
		InsecureAuth bool `mapstructure:"INSECURE_AUTH"`
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
			Url string `mapstructure:"URL"`
		}
	}

	RTC struct {
		AppID          string `mapstructure:"APP_ID"`
		AppCertificate string `mapstructure:"APP_CERTIFICATE"`
		TokenTTLMin    int    `mapstructure:"TOKEN_TTL_MIN"`
	}

	MAIL struct {
		SMTPHost string `mapstructure:"SMTP_HOST"`
		SMTPPort int    `mapstructure:"SMTP_PORT"`
		Username string `mapstructure:"USERNAME"`
		Password string `mapstructure:"PASSWORD"`
		From     string `mapstructure:"FROM"`
		// ArchiveTo receives wrap-up summaries; participant addresses live
		// with the identity provider, not here.
		ArchiveTo string `mapstructure:"ARCHIVE_TO"`
	}
}

var Conf *AppConfig

func LoadConfig() error {
	viper.SetConfigName("application")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("CONSULT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	var config AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	if config.RTC.TokenTTLMin <= 0 {
		config.RTC.TokenTTLMin = 120 // generous vs consultation length, tolerates reconnects
	}

	Conf = &config
	log.Info().Msg("configuration loaded...")
	return nil
}
