package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/pairbot/internal/api"
	"github.com/susu3304/pairbot/internal/bot"
	"github.com/susu3304/pairbot/internal/chanstore"
	"github.com/susu3304/pairbot/internal/config"
	"github.com/susu3304/pairbot/internal/db"
	"github.com/susu3304/pairbot/internal/pairing"
	"github.com/susu3304/pairbot/internal/rounds"
	"github.com/susu3304/pairbot/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		log.Fatalf("Failed to create discord session: %v", err)
	}

	st, closeStore, err := openStore(context.Background(), cfg, session)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer closeStore()

	svc := rounds.NewService(st, pairing.NewEngine(nil))

	// Start Discord bot
	discordBot := bot.New(session, svc, cfg)
	if err := discordBot.Start(); err != nil {
		log.Fatalf("Failed to start discord bot: %v", err)
	}
	defer discordBot.Stop()

	// Start API server
	apiServer := api.New(cfg.WebBind, svc)
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

func openStore(ctx context.Context, cfg *config.Config, session *discordgo.Session) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return database, database.Close, nil
	case config.BackendSQLite:
		lite, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return lite, func() { lite.Close() }, nil
	case config.BackendChannel:
		cs := chanstore.New(session, chanstore.Config{
			HistoryChannel: cfg.HistoryChannel,
			RoundChannel:   cfg.RoundChannel,
		})
		return cs, func() {}, nil
	default:
		log.Println("Using in-memory store; pairing history is lost on restart")
		return store.NewMemory(), func() {}, nil
	}
}
