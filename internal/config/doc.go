// Package config loads the service configuration.
//
// Values come from an optional YAML or TOML file, then from BUSLOC_*
// environment variables (a .env file in the working directory is loaded
// first). Defaults fill whatever is left and the result is validated with
// struct tags.
package config
