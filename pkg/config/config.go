package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates the given struct from environment variables using `env`
// struct tags. The struct pointer is filled in place.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
