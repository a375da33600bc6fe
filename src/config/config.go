package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Service    Service           `mapstructure:"service"`
	Databases  Databases         `mapstructure:"databases"`
	Sync       Sync              `mapstructure:"sync"`
	Connectors []ConnectorConfig `mapstructure:"connectors"`
	AWS        AWS               `mapstructure:"aws"`
	Logging    Logging           `mapstructure:"logging"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type Service struct {
	Type ServiceType `mapstructure:"type"`
	Port string      `mapstructure:"port"`
}

type Databases struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host              string `mapstructure:"host"`
	Port              string `mapstructure:"port"`
	Username          string `mapstructure:"username"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	ConnectionString  string `mapstructure:"connection_string"`
	PasswordSecretArn string `mapstructure:"passwordSecretArn"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type Sync struct {
	// MaxRetries bounds the compare-and-set retry loop per asset.
	MaxRetries uint64        `mapstructure:"maxRetries"`
	LockTTL    time.Duration `mapstructure:"lockTTL"`
	// FreshnessWindow skips a source synced more recently than this; zero
	// disables the check and every trigger hits the connector.
	FreshnessWindow time.Duration `mapstructure:"freshnessWindow"`
	// Schedule is the cron spec for periodic account syncs on the worker.
	Schedule string   `mapstructure:"schedule"`
	Accounts []string `mapstructure:"accounts"`
}

type ConnectorConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"baseUrl"`
	Token   string `mapstructure:"token"`
	// RawUnits marks providers reporting integer minor units; the connector
	// normalizes them by 10^decimals before they reach the reconciler.
	RawUnits bool `mapstructure:"rawUnits"`
}

type AWS struct {
	Region string `mapstructure:"region"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads settings/appsettings.yaml, then merges the
// appsettings.<ENV>.yaml overlay when env is set.
func LoadConfig(path, env string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("appsettings")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if env != "" {
		v.SetConfigName("appsettings." + env)
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
