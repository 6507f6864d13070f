package main

import (
	"flag"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessmate/internal/match"
	"github.com/hailam/chessmate/internal/shell"
	"github.com/hailam/chessmate/internal/storage"
)

var (
	dbDir        = flag.String("db", "", "database directory (default: platform data dir)")
	logLevel     = flag.String("log-level", "", "log level: debug, info, warn, error")
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to file")
	abandonAfter = flag.Duration("abandon-after", 0, "how long a game waits for a player who left")
	inMemory     = flag.Bool("memory", false, "keep games in memory only")
)

// envOr returns the flag value, falling back to the environment variable.
func envOr(value, env string) string {
	if value == "" {
		return os.Getenv(env)
	}
	return value
}

func main() {
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	level := zerolog.WarnLevel
	if name := envOr(*logLevel, "CHESSMATE_LOG_LEVEL"); name != "" {
		l, err := zerolog.ParseLevel(name)
		if err != nil {
			logger.Fatal().Err(err).Str("level", name).Msg("invalid log level")
		}
		level = l
	}
	logger = logger.Level(level)

	// Start CPU profiling if requested (via flag or environment variable)
	if profilePath := envOr(*cpuprofile, "CPUPROFILE"); profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		logger.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	grace := *abandonAfter
	if grace == 0 {
		grace = match.DefaultAbandonAfter
		if env := os.Getenv("CHESSMATE_ABANDON_AFTER"); env != "" {
			d, err := time.ParseDuration(env)
			if err != nil {
				logger.Fatal().Err(err).Str("value", env).Msg("invalid CHESSMATE_ABANDON_AFTER")
			}
			grace = d
		}
	}

	store, err := openStore(envOr(*dbDir, "CHESSMATE_DB"), *inMemory)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not open database")
	}

	matches := match.NewManager(
		match.WithStore(store),
		match.WithLogger(logger.With().Str("component", "match").Logger()),
		match.WithAbandonAfter(grace),
	)

	sh := shell.New(matches,
		shell.WithLister(store),
		shell.WithLogger(logger.With().Str("component", "shell").Logger()),
	)
	runErr := sh.Run(os.Stdin, os.Stdout)

	if err := matches.Close(); err != nil {
		logger.Error().Err(err).Msg("saving games")
	}
	if err := store.Close(); err != nil {
		logger.Error().Err(err).Msg("closing database")
	}
	if runErr != nil {
		logger.Error().Err(runErr).Msg("reading commands")
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func openStore(dir string, memory bool) (*storage.Storage, error) {
	switch {
	case memory:
		return storage.OpenInMemory()
	case dir != "":
		return storage.Open(dir)
	default:
		return storage.NewStorage()
	}
}
