package main

import (
	"log"
	"os"
	"strings"

	"github.com/benbeisheim/drawbackchess-backend/internal/analysis"
	"github.com/benbeisheim/drawbackchess-backend/internal/config"
	"github.com/benbeisheim/drawbackchess-backend/internal/controller"
	"github.com/benbeisheim/drawbackchess-backend/internal/model"
	"github.com/benbeisheim/drawbackchess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Dev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	var analyzer analysis.Analyzer
	if cfg.EnginePath != "" {
		a, err := analysis.NewUCIAnalyzer(cfg.EnginePath, cfg.AnalysisTime, logger.Named("analysis"))
		if err != nil {
			logger.Fatal("failed to start analysis engine", zap.String("path", cfg.EnginePath), zap.Error(err))
		}
		defer a.Close()
		analyzer = a
	} else {
		logger.Info("no analysis engine configured")
	}

	gameManager := service.NewGameManager(model.GameOptions{ClockTime: cfg.ClockTime}, analyzer, logger)
	gameService := service.NewGameService(gameManager)

	gameController := controller.NewGameController(gameService, logger)
	wsController := controller.NewWebSocketController(gameService, logger)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.OriginList(), ", "),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		return err
	})

	controller.RegisterRoutes(app, gameController, wsController, cfg.OriginList())

	logger.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("analysis", analyzer != nil))
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
