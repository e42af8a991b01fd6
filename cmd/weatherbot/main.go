package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/discord-bot-collab/weatherbot/internal/api/http"
	"github.com/discord-bot-collab/weatherbot/internal/bot"
	"github.com/discord-bot-collab/weatherbot/internal/chat"
	"github.com/discord-bot-collab/weatherbot/internal/config"
	"github.com/discord-bot-collab/weatherbot/internal/forecast"
	"github.com/discord-bot-collab/weatherbot/internal/geo"
	"github.com/discord-bot-collab/weatherbot/internal/scheduler"
	"github.com/discord-bot-collab/weatherbot/internal/subscription"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound geocoder and forecast calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Disk-backed geocoding cache and subscription table.
	cache, err := geo.OpenCache(cfg.CacheFile)
	if err != nil {
		log.Fatalf("failed to open location cache: %v", err)
	}
	store, err := subscription.Open(cfg.SettingsFile)
	if err != nil {
		log.Fatalf("failed to open subscription store: %v", err)
	}

	resolver := geo.NewResolver(httpClient, cache, cfg.NominatimUserAgent)
	fetcher := forecast.NewClient(httpClient)

	// Discord session.
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalf("failed to create discord session: %v", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	if err := session.Open(); err != nil {
		log.Fatalf("failed to open discord session: %v", err)
	}
	defer session.Close()
	log.Printf("%s has come online!", session.State.User.Username)

	gateway := chat.NewDiscord(session)

	// Daily forecast publisher.
	sched := scheduler.New(store, resolver, fetcher, gateway, cfg.PostTime, cfg.HTTPTimeout)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Slash commands.
	commands := bot.New(store, resolver, fetcher, sched, cfg.SelectionTTL, cfg.HTTPTimeout)
	if err := commands.Register(session); err != nil {
		log.Fatalf("failed to register commands: %v", err)
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weatherbot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherbot",
		})
	})

	// Operator API routes.
	httpapi.RegisterRoutes(app, store, sched, resolver)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
