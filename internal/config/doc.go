// Package config loads process settings from the environment (with an
// optional .env file) and scoring configuration files validated against
// an embedded CUE schema.
package config
