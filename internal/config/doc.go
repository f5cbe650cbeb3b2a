// Package config loads bookshelf settings.
//
// # Sources
//
// Settings are resolved in this order, later sources winning:
//
//  1. Built-in defaults
//  2. The TOML file (default ~/.config/bookshelf/config.toml)
//  3. A .env file in the working directory (never overrides variables that
//     are already set in the environment)
//  4. Environment variables
//
// The command line flag -api is applied on top by the caller.
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:3000/books"
//	request_timeout = "10s"
//	log_file = "~/.local/state/bookshelf/bookshelf.log"
//	otlp_endpoint = ""
//
// Every key is optional. Tilde expansion is applied to paths; an empty
// log_file turns file logging off.
//
// # Environment
//
//   - BOOKSHELF_API_URL: collection URL
//   - BOOKSHELF_REQUEST_TIMEOUT: Go duration, "0" disables the timeout
//   - OTEL_EXPORTER_OTLP_ENDPOINT: enables trace export
//
// A missing config file is not an error; an unreadable or malformed one is.
package config
