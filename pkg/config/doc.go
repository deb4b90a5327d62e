// Package config handles application configuration loading and validation.
//
// Settings are read from an optional .env file and the process environment,
// parsed with struct tags and validated at startup to fail fast if
// misconfigured. Errors name the offending variable and rule but never echo
// the value, so secrets do not end up in logs.
package config
