// Package config loads runtime configuration for the farmkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or --config.
//  3. Environment variables (see parseEnv), after loading a .env file from
//     the working directory when one exists.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d, --db string          path to the local SQLite database
//	-t, --timeout duration   per-request network timeout, e.g. 10s
//	-l, --log-level string   debug, info, warn or error
//
// Environment
//
//	FARMKEEPER_DB, FARMKEEPER_REQUEST_TIMEOUT, FARMKEEPER_LOG_LEVEL,
//	FARMKEEPER_STRICT_IP
//
// # JSON schema
//
//	{
//	  "database_path": "farmkeeper.db",
//	  "request_timeout": "10s",
//	  "log_level": "info",
//	  "strict_ip": false
//	}
//
// The backend endpoint is deliberately absent: it is entered by the user and
// owned by the endpoint registry.
//
// Malformed input in any source panics; LoadConfig is meant to run once at
// process start.
package config
