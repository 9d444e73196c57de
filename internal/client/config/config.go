package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the countrybook client.
//
// Fields:
//   - APIBaseURL: root of the account backend (auth, users, favourites).
//   - CountriesBaseURL: root of the public countries dataset.
//   - StateFile: SQLite file holding the persisted session and theme.
//   - RequestTimeout: upper bound for a single gateway request.
//   - LogLevel: debug, info, warn or error.
//   - Theme: theme used until the user picks one.
//   - MetricsAddr: host:port for the Prometheus listener; empty disables it.
//   - S3: destination settings for `export ... s3://bucket/key`.
type Config struct {
	APIBaseURL       string        `env:"API_BASE_URL"`
	CountriesBaseURL string        `env:"COUNTRIES_BASE_URL"`
	StateFile        string        `env:"STATE_FILE"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel         string        `env:"LOG_LEVEL"`
	Theme            string        `env:"THEME"`
	MetricsAddr      string        `env:"METRICS_ADDR"`
	S3               S3Config      `envPrefix:"S3_"`
}

// S3Config describes an S3-compatible bucket. Empty credentials fall back
// to the default AWS credential chain.
type S3Config struct {
	Endpoint     string `env:"ENDPOINT"`
	Region       string `env:"REGION"`
	AccessKey    string `env:"ACCESS_KEY"`
	SecretKey    string `env:"SECRET_KEY"`
	UsePathStyle bool   `env:"USE_PATH_STYLE"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api"
	c.CountriesBaseURL = "https://restcountries.com/v3.1"
	c.StateFile = "countrybook.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.Theme = "light"
	c.MetricsAddr = ""
	c.S3 = S3Config{Region: "us-east-1"}
}

// Sources names the inputs Load reads.
type Sources struct {
	// Args are the command-line arguments without the program name.
	Args []string
	// Environ replaces the process environment when non-nil.
	Environ map[string]string
	// DotEnv is a .env file whose values apply to variables not already
	// present in the environment. A missing file is not an error.
	DotEnv string
}

// Load builds a Config by applying defaults, then the JSON file selected by
// -c/-config, then COUNTRYBOOK_* environment variables, then flags. Later
// sources take precedence over earlier ones.
func Load(src Sources) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, src.Args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, src.Environ, src.DotEnv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, src.Args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from the process arguments, environment
// and ./.env. It panics on malformed input.
func LoadConfig() *Config {
	cfg, err := Load(Sources{Args: os.Args[1:], DotEnv: ".env"})
	if err != nil {
		panic(err)
	}
	return cfg
}
