package cli

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// EnvPrefix is prepended to every storectl environment variable.
const EnvPrefix = "STORECTL_"

// Config holds storectl settings. Flags override the environment.
type Config struct {
	APIURL   string        `env:"API_URL" envDefault:"http://localhost:8080"`
	Token    string        `env:"TOKEN"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
	LogLevel string        `env:"LOG_LEVEL" envDefault:"warn"`
}

// LoadConfig reads STORECTL_* variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := pkgconfig.LoadWithPrefix(&cfg, EnvPrefix); err != nil {
		return Config{}, fmt.Errorf("load storectl config: %w", err)
	}
	return cfg, nil
}
