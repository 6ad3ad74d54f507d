package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cardboardcollective/mechabot/internal/api"
	"github.com/cardboardcollective/mechabot/internal/bot"
	"github.com/cardboardcollective/mechabot/internal/config"
	"github.com/cardboardcollective/mechabot/internal/jsonstore"
	"github.com/cardboardcollective/mechabot/internal/listings"
	"github.com/cardboardcollective/mechabot/internal/showboard"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Open the flat JSON data directory
	files, err := jsonstore.New(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open data dir: %v", err)
	}

	// Initialize Discord bot
	discordBot, err := bot.New(cfg, files)
	if err != nil {
		log.Fatalf("Failed to create discord bot: %v", err)
	}

	// Initialize API server
	apiServer := api.New(cfg, showboard.NewStore(files), listings.NewStore(files))

	// Start Discord bot
	if err := discordBot.Start(); err != nil {
		log.Fatalf("Failed to start discord bot: %v", err)
	}
	defer discordBot.Stop()

	// Start API server
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()

	// Wait for signal to stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
}
