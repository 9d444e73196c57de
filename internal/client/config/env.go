package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name, e.g. COUNTRYBOOK_STATE_FILE.
const EnvPrefix = "COUNTRYBOOK_"

// parseEnv overlays cfg with COUNTRYBOOK_* variables. Values from the
// dotenv file only fill variables missing from environ. Unset variables
// leave the current value in place.
func parseEnv(cfg *Config, environ map[string]string, dotenv string) error {
	if environ == nil {
		environ = osEnviron()
	}

	if dotenv != "" {
		fromFile, err := godotenv.Read(dotenv)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", dotenv, err)
		}
		merged := make(map[string]string, len(environ)+len(fromFile))
		for k, v := range fromFile {
			merged[k] = v
		}
		for k, v := range environ {
			merged[k] = v
		}
		environ = merged
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

func osEnviron() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
