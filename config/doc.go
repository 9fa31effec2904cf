// Package config loads paiflow configuration with viper.
//
// Values come from a YAML file (paiflow.yml, config/paiflow.yml or
// config.yml), then a .env file loaded with godotenv, then PAIFLOW_*
// environment variables:
//
//	PAIFLOW_SERVER_PORT=9090            -> server.port
//	PAIFLOW_ENGINE_DEFAULT_TYPE=graph   -> engine.default_type
//	PAIFLOW_REDIS_ENABLED=true          -> redis.enabled
package config
