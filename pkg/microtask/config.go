package microtask

import (
	"log/slog"
	"time"
)

// Config holds the environment driven settings of a queue
type Config struct {
	DrainLimit    int           `env:"MICROTASK_DRAIN_LIMIT" envDefault:"0"`
	FallbackDelay time.Duration `env:"MICROTASK_FALLBACK_DELAY" envDefault:"0s"`
}

// RunSoon builds the strategy described by the config for the given host.
func (c Config) RunSoon(p Poster, log *slog.Logger) RunSoon {
	return NextTick(p, c.FallbackDelay, log)
}
