package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/countrybook/internal/flagx"
	"github.com/dmitrijs2005/countrybook/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so the timeout may be written as "10s" or as integer
// nanoseconds.
type JsonConfig struct {
	APIBaseURL       string         `json:"api_base_url"`
	CountriesBaseURL string         `json:"countries_base_url"`
	StateFile        string         `json:"state_file"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	LogLevel         string         `json:"log_level"`
	Theme            string         `json:"theme"`
	MetricsAddr      string         `json:"metrics_addr"`
	S3               *struct {
		Endpoint     string `json:"endpoint"`
		Region       string `json:"region"`
		AccessKey    string `json:"access_key"`
		SecretKey    string `json:"secret_key"`
		UsePathStyle bool   `json:"use_path_style"`
	} `json:"s3"`
}

// parseJson overlays cfg with the non-empty values of the JSON file given
// by -c or -config. Without either flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.CountriesBaseURL, jc.CountriesBaseURL)
	setString(&cfg.StateFile, jc.StateFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.Theme, jc.Theme)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.S3 != nil {
		setString(&cfg.S3.Endpoint, jc.S3.Endpoint)
		setString(&cfg.S3.Region, jc.S3.Region)
		setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
		setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
		cfg.S3.UsePathStyle = cfg.S3.UsePathStyle || jc.S3.UsePathStyle
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
