// Package config loads configuration structs from environment variables.
//
// It wraps github.com/caarlos0/env/v11 for parsing `env`/`envDefault` struct
// tags and github.com/joho/godotenv for .env files. Every configuration type
// is parsed once and cached for the lifetime of the process; ResetCache
// clears the cache in tests.
//
//	if err := config.LoadEnv("./config/.env"); err != nil {
//		return err
//	}
//
//	var qc microtask.Config
//	config.MustLoad(&qc)
//	var lc logger.Config
//	config.MustLoad(&lc)
//
//	log := logger.New(logger.WithConfig(lc))
//	q, err := microtask.New[*Scheduler](qc.RunSoon(loop, log),
//		microtask.WithConfig(qc),
//		microtask.WithLogger(log))
//
// Errors wrap the sentinels ErrParsingConfig, ErrLoadingEnvFile and
// ErrNilPointer and can be checked with errors.Is.
package config
