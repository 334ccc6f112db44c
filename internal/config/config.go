package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	DatabaseDriver string
	DatabasePath   string
	MySQLDSN       string
	SessionSecret  string
	AdminUser      string
	AdminPassword  string
	LogLevel       string
	Port           string
	BaseURL        string

	AgentPort         string
	ProfileServiceURL string
	ProfileID         string
	DataDir           string
	TickInterval      time.Duration
	RingTimeout       time.Duration
	SyncTimeout       time.Duration
}

// Load reads defaults, an optional habit-hub.yaml and the environment, in
// increasing order of precedence.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_path", "./data/habit-hub.db")
	v.SetDefault("admin_user", "admin")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", "8080")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("agent_port", "8081")
	v.SetDefault("profile_service_url", "http://localhost:8080")
	v.SetDefault("data_dir", "./data/agent")
	v.SetDefault("tick_interval", time.Second)
	v.SetDefault("ring_timeout", 10*time.Second)
	v.SetDefault("sync_timeout", 10*time.Second)

	v.SetConfigName("habit-hub")
	v.SetEnvPrefix("HABITHUB")
	v.AutomaticEnv()

	// the unprefixed names keep working for existing deployments
	for _, key := range []string{"port", "database_path", "log_level", "session_secret"} {
		if err := v.BindEnv(key, "HABITHUB_"+strings.ToUpper(key), strings.ToUpper(key)); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if override := os.Getenv("HABITHUB_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	config := Config{
		DatabaseDriver:    strings.ToLower(v.GetString("database_driver")),
		DatabasePath:      v.GetString("database_path"),
		MySQLDSN:          v.GetString("mysql_dsn"),
		SessionSecret:     v.GetString("session_secret"),
		AdminUser:         v.GetString("admin_user"),
		AdminPassword:     v.GetString("admin_password"),
		LogLevel:          v.GetString("log_level"),
		Port:              v.GetString("port"),
		BaseURL:           strings.TrimRight(v.GetString("base_url"), "/"),
		AgentPort:         v.GetString("agent_port"),
		ProfileServiceURL: strings.TrimRight(v.GetString("profile_service_url"), "/"),
		ProfileID:         v.GetString("profile_id"),
		DataDir:           v.GetString("data_dir"),
		TickInterval:      v.GetDuration("tick_interval"),
		RingTimeout:       v.GetDuration("ring_timeout"),
		SyncTimeout:       v.GetDuration("sync_timeout"),
	}

	if config.DatabaseDriver != DriverSQLite && config.DatabaseDriver != DriverMySQL {
		return Config{}, fmt.Errorf("unsupported database driver %q", config.DatabaseDriver)
	}

	return config, nil
}

func (config Config) ValidateServer() error {
	if config.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if config.DatabaseDriver == DriverMySQL && config.MySQLDSN == "" {
		return fmt.Errorf("HABITHUB_MYSQL_DSN is required for the mysql driver")
	}
	return nil
}

func (config Config) ValidateAgent() error {
	if config.DataDir == "" {
		return fmt.Errorf("HABITHUB_DATA_DIR is required")
	}
	if config.TickInterval <= 0 || config.RingTimeout <= 0 {
		return fmt.Errorf("tick interval and ring timeout must be positive")
	}
	return nil
}

// DSN is the data source for the configured driver.
func (config Config) DSN() string {
	if config.DatabaseDriver == DriverMySQL {
		return config.MySQLDSN
	}
	return config.DatabasePath
}
