package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/controller"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	level, _ := cfg.Level()
	log.SetLevel(level)

	store, err := storage.Open(storage.Options{Dir: cfg.DataDir, InMemory: cfg.InMemory})
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	gameManager := service.NewGameManager(store, cfg.Clock)
	gameService := service.NewGameService(gameManager)
	go gameManager.Run(ctx, cfg.MatchInterval)

	app := newApp(cfg, gameService)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("listening on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Errorf("listen: %v", err)
	}
}

func newApp(cfg config.Config, gameService *service.GameService) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: cfg.AllowOrigins != "*",
	}))

	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService)

	// WebSocket routes
	wsRoutes := app.Group("/ws", middleware.EnsurePlayerID(), middleware.WebSocketUpgrade())
	wsRoutes.Get("/matchmaking", websocket.New(wsController.HandleMatchmaking))
	wsRoutes.Get("/game/:gameId", websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	// REST routes
	api := app.Group("/api", middleware.EnsurePlayerID())
	gameController.Register(api.Group("/game"))

	return app
}
