package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/bitacora/internal/application/ledger"
	"github.com/jhoicas/bitacora/internal/application/reconcile"
	"github.com/jhoicas/bitacora/internal/infrastructure/metrics"
	"github.com/jhoicas/bitacora/internal/infrastructure/roster"
	"github.com/jhoicas/bitacora/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/bitacora/internal/interfaces/http"
	"github.com/jhoicas/bitacora/pkg/config"
	"github.com/jhoicas/bitacora/pkg/logger"
)

const (
	catalogStudents = "students"
	catalogProducts = "products"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	backend, closeStorage, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén")
	}
	defer closeStorage()

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer, cfg.App.Name)

	ledgerEngine := ledger.NewEngine(backend, log.Zerolog(), recorder)
	if err := ledgerEngine.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("reconstruir libro")
	}

	catalogs := map[string]*reconcile.Engine{}
	for _, name := range []string{catalogStudents, catalogProducts} {
		eng := reconcile.NewEngine(name, backend, log.Zerolog(), recorder)
		if err := eng.Load(ctx); err != nil {
			log.Fatal().Err(err).Str("catalog", name).Msg("cargar registros locales")
		}
		catalogs[name] = eng
	}

	sources := map[string]reconcile.RosterSource{}
	if cfg.Roster.Enabled() {
		src := roster.NewCSVSource(cfg.Roster)
		sources[catalogStudents] = src
		refresher := reconcile.NewRefresher(catalogs[catalogStudents], src, cfg.Roster.RefreshInterval, log.Zerolog())
		go refresher.Run(ctx)
	} else {
		log.Warn().Msg("sin roster configurado: solo registros locales de estudiantes")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Bitácora API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:   ledgerEngine,
		Catalogs: catalogs,
		Sources:  sources,
		Products: catalogProducts,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
