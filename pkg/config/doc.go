// Package config loads environment backed configuration structs.
//
// Structs declare their variables with caarlos0/env tags. The first call to
// Load also reads a .env file from the working directory when one exists.
// Each struct type is parsed once and cached, so packages can call Load for
// the same type independently and observe the same values.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
