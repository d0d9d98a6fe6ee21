// Package config loads the localllm CLI configuration from a YAML file,
// LOCALLLM_* environment variables and .env files.
package config
