package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/threekingdoms/progression/internal/config"
	"github.com/threekingdoms/progression/internal/logging"
	"github.com/threekingdoms/progression/internal/progression"
	"github.com/threekingdoms/progression/internal/save"
	"github.com/threekingdoms/progression/internal/storage"
	"github.com/threekingdoms/progression/internal/story"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)

	backend, err := storage.NewBackend(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open save storage")
	}
	if err := backend.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize save storage")
	}
	defer backend.Close()

	store, err := save.NewStore(backend, log, save.WithKey(cfg.SaveKey))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create save store")
	}
	loaded := store.Load()
	log.Debug().Bool("loaded", loaded).Msg("Boot complete")

	api := progression.New(store, story.DefaultGraph(), story.DefaultChapters(), log,
		progression.WithDefaultCampaign(cfg.DefaultCampaign))

	args := os.Args[1:]
	command := "status"
	if len(args) > 0 {
		command = strings.ToLower(args[0])
	}

	if err := run(command, store, api); err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Command failed")
	}
}
