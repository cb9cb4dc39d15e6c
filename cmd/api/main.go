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
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stockledger-api/internal/application/approval"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/application/ncr"
	"github.com/jhoicas/stockledger-api/internal/application/period"
	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/application/reconciliation"
	"github.com/jhoicas/stockledger-api/internal/application/transfer"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/excel"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/lock"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stockledger-api/internal/interfaces/http"
	"github.com/jhoicas/stockledger-api/pkg/config"
	"github.com/jhoicas/stockledger-api/pkg/logger"
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
		Str("store", cfg.App.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: PostgreSQL o memoria (APP_STORE=memory).
	var (
		store    repository.Store
		txRunner ports.TxRunner
		pool     *pgxpool.Pool
	)
	if cfg.App.UseMemoryStore() {
		mem := memory.NewStore()
		store, txRunner = mem, mem
		log.Warn().Msg("APP_STORE=memory: los datos no se persisten")
	} else {
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.RunMigrations(ctx, pool, log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		store = postgres.NewStore(pool)
		txRunner = postgres.NewTxRunner(pool, cfg.DB.TxRetries, log)
	}

	// Guardia de aprobaciones y cierres: Redis si está configurado, si no en proceso.
	var locker ports.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL())
		log.Info().Str("addr", cfg.Redis.Addr).Msg("lock distribuido en Redis")
	}

	prom := metrics.New()

	approvalUC := approval.NewUseCase(txRunner, store, locker, log)
	deliveryUC := inventory.NewDeliveryUseCase(txRunner, store, prom, log)
	issueUC := inventory.NewIssueUseCase(txRunner, store, prom, log)
	transferUC := transfer.NewUseCase(txRunner, store, approvalUC, prom, log)
	ncrUC := ncr.NewUseCase(txRunner, store, prom, log)
	periodUC := period.NewUseCase(txRunner, store, approvalUC, excel.NewPriceSheetReader(), prom, log)
	reconciliationUC := reconciliation.NewUseCase(txRunner, store, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 * 1024 * 1024,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Named("http"), prom))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Debug().Str("file", cfg.App.SwaggerFile).Msg("swagger deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		resp := dto.HealthResponse{Status: "ok", Store: cfg.App.Store}
		if pool != nil {
			pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(pingCtx); err != nil {
				resp.Status = "degraded"
				return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
			}
		}
		return c.JSON(resp)
	})
	app.Get("/metrics", adaptor.HTTPHandler(prom.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Deliveries:      deliveryUC,
		Issues:          issueUC,
		Transfers:       transferUC,
		NCRs:            ncrUC,
		Approvals:       approvalUC,
		Periods:         periodUC,
		Reconciliations: reconciliationUC,
		JWTSecret:       cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
