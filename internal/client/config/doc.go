// Package config loads runtime configuration for the countrybook client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. COUNTRYBOOK_* environment variables (see parseEnv), optionally seeded
//     from a .env file.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   account backend base URL
//	-r string   countries API base URL
//	-s string   state file path
//	-t int      request timeout (seconds)
//	-l string   log level
//	-m string   metrics listen address
//
// # JSON schema
//
//	{
//	  "api_base_url": "https://api.example.com/api",
//	  "countries_base_url": "https://restcountries.com/v3.1",
//	  "state_file": "~/.countrybook/state.db",
//	  "request_timeout": "10s",
//	  "log_level": "info",
//	  "theme": "dark",
//	  "metrics_addr": "127.0.0.1:9100",
//	  "s3": {"endpoint": "http://127.0.0.1:9000", "region": "us-east-1", "use_path_style": true}
//	}
//
// # Environment
//
//	COUNTRYBOOK_API_BASE_URL, COUNTRYBOOK_COUNTRIES_BASE_URL,
//	COUNTRYBOOK_STATE_FILE, COUNTRYBOOK_REQUEST_TIMEOUT (e.g. "5s"),
//	COUNTRYBOOK_LOG_LEVEL, COUNTRYBOOK_THEME, COUNTRYBOOK_METRICS_ADDR,
//	COUNTRYBOOK_S3_ENDPOINT, COUNTRYBOOK_S3_REGION, COUNTRYBOOK_S3_ACCESS_KEY,
//	COUNTRYBOOK_S3_SECRET_KEY, COUNTRYBOOK_S3_USE_PATH_STYLE
package config
