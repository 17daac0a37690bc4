// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config.yaml, a .env file and BHASHA_-prefixed
// environment variables. It provides type-safe access to the settings each
// component needs while keeping configuration details out of business logic.
package config
