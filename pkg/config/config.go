package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Data      DataConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Exports   ExportsConfig
}

// DataConfig locates the persisted study data.
type DataConfig struct {
	File string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig tunes KPI computation defaults.
type DashboardConfig struct {
	TargetGrade   float64
	HorizonDays   int
	CriticalLimit int
}

// ExportsConfig controls where rendered exports are written.
type ExportsConfig struct {
	Dir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Data = DataConfig{
		File: v.GetString("DATA_FILE"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		TargetGrade:   v.GetFloat64("DASHBOARD_TARGET_GRADE"),
		HorizonDays:   v.GetInt("DASHBOARD_HORIZON_DAYS"),
		CriticalLimit: v.GetInt("DASHBOARD_CRITICAL_LIMIT"),
	}

	cfg.Exports = ExportsConfig{
		Dir: v.GetString("EXPORTS_DIR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DATA_FILE", "./data/program.json")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("DASHBOARD_TARGET_GRADE", 2.5)
	v.SetDefault("DASHBOARD_HORIZON_DAYS", 60)
	v.SetDefault("DASHBOARD_CRITICAL_LIMIT", 10)

	v.SetDefault("EXPORTS_DIR", "./exports")
}
