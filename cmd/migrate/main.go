package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/animato-app/animato-server/internal/infra"
)

func main() {
	var dir string
	flag.StringVar(&dir, "dir", "migrations", "directory containing migration files")
	flag.Parse()

	args := flag.Args()
	command := "up"
	var extra []string
	if len(args) > 0 {
		command = args[0]
		extra = args[1:]
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "migrate").Logger()

	db, err := goose.OpenDBWithDriver("postgres", dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("migrate: close database")
		}
	}()

	if err := goose.Run(command, db, dir, extra...); err != nil {
		logger.Fatal().Err(err).Str("command", command).Msg("migrate: failed")
	}
	logger.Info().Str("command", command).Msg("migrate: done")
}
