// Package config loads typed configuration structs from environment
// variables, with optional .env support for local development.
//
// Each concern owns its config struct and tags fields with `env`:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
