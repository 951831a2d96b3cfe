package main

import (
	"log"
	"net/http"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/marzolo/thoughts-bot/internal/api"
	"github.com/marzolo/thoughts-bot/internal/config"
	"github.com/marzolo/thoughts-bot/internal/handlers"
	"github.com/marzolo/thoughts-bot/internal/linkwatch"
	"github.com/marzolo/thoughts-bot/internal/pending"
	"github.com/marzolo/thoughts-bot/internal/publisher"
	"github.com/marzolo/thoughts-bot/internal/registry"
	"github.com/marzolo/thoughts-bot/internal/session"
	"github.com/marzolo/thoughts-bot/internal/telegram_api"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: could not load .env, environment variables must be set another way.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Fatal: could not load configuration: %v", err)
	}

	pub, err := publisher.New(cfg)
	if err != nil {
		log.Fatalf("Fatal: could not set up publisher: %v", err)
	}

	links, err := linkwatch.NewWatcher(cfg.DenylistPatterns())
	if err != nil {
		log.Fatalf("Fatal: bad link denylist: %v", err)
	}

	if err := telegram_api.InitBot(cfg.TelegramToken, cfg.AppEnv == "dev"); err != nil {
		log.Fatalf("Fatal: could not initialize the Telegram bot: %v", err)
	}

	chatRegistry := registry.New(cfg.RegistryPath)
	pendingRegistry := pending.NewRegistry()
	sessionManager := session.NewSessionManager()

	botHandler := handlers.NewBotHandler(handlers.HandlerDependencies{
		Config:    cfg,
		BotClient: telegram_api.Client,
		Sessions:  sessionManager,
		Registry:  chatRegistry,
		Pending:   pendingRegistry,
		Publisher: pub,
		Links:     links,
	})

	// Read-only ops API beside the bot, only when a token is configured.
	if cfg.APIToken != "" {
		apiRouter := chi.NewRouter()
		apiRouter.Use(middleware.Logger)
		apiRouter.Use(middleware.Recoverer)
		apiRouter.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
		api.SetupRoutes(apiRouter, api.ApiDependencies{
			Config:   cfg,
			Registry: chatRegistry,
			Pending:  pendingRegistry,
		})

		go func() {
			log.Printf("Starting ops API on port %s", cfg.Port)
			if err := http.ListenAndServe(":"+cfg.Port, apiRouter); err != nil {
				log.Fatalf("Fatal: could not start the ops API server: %v", err)
			}
		}()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := telegram_api.Client.GetUpdatesChan(u)

	log.Println("Thoughts bot is running...")

	// Each update is handled in its own goroutine so one slow publish or
	// notification never blocks unrelated chats.
	for update := range updates {
		if update.Message != nil {
			go botHandler.HandleMessage(update)
		} else if update.CallbackQuery != nil {
			go botHandler.HandleCallback(update)
		}
	}
}
