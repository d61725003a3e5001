package config

import (
	"fmt"
	"os"
	"strings"
)

// KeySource represents where a setting's value comes from.
type KeySource string

const (
	KeySourceEnv     KeySource = "env"
	KeySourceConfig  KeySource = "config"
	KeySourceDefault KeySource = "default"
)

// KeyStatus describes one chart or server setting for status output.
type KeyStatus struct {
	Key    string    `json:"key"`
	EnvVar string    `json:"env_var"`
	Value  string    `json:"value"`
	Source KeySource `json:"source"`
}

// CheckKeys reports the value and origin of the settings users override
// most often.
func CheckKeys(cfg *Config) []KeyStatus {
	d := Default()
	return []KeyStatus{
		checkKey("chart.width", cfg.Chart.Width, d.Chart.Width),
		checkKey("chart.height", cfg.Chart.Height, d.Chart.Height),
		checkKey("chart.grid", cfg.Chart.Grid, d.Chart.Grid),
		checkKey("chart.filled_area", cfg.Chart.FilledArea, d.Chart.FilledArea),
		checkKey("chart.max_tick_labels", cfg.Chart.MaxTickLabels, d.Chart.MaxTickLabels),
		checkKey("chart.theme.background", cfg.Chart.Theme.Background, d.Chart.Theme.Background),
		checkKey("render.workers", cfg.Render.Workers, d.Render.Workers),
		checkKey("api.port", cfg.API.Port, d.API.Port),
		checkKey("logging.level", cfg.Logging.Level, d.Logging.Level),
	}
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func checkKey[T comparable](key string, value, def T) KeyStatus {
	status := KeyStatus{
		Key:    key,
		EnvVar: EnvVar(key),
		Value:  fmt.Sprint(value),
	}

	switch {
	case os.Getenv(status.EnvVar) != "":
		status.Source = KeySourceEnv
	case value != def:
		status.Source = KeySourceConfig
	default:
		status.Source = KeySourceDefault
	}
	return status
}
