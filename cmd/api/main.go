package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	"github.com/jhoicas/inventario-patrimonio/internal/application/auth"
	"github.com/jhoicas/inventario-patrimonio/internal/application/usecase"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-patrimonio/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/inventario-patrimonio/internal/interfaces/http"
	"github.com/jhoicas/inventario-patrimonio/pkg/config"
	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
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
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a la base de datos")
	}
	defer store.Close()

	m := metrics.New()
	sheet := spreadsheet.NewStore(cfg.Storage.SpreadsheetPath(), log)
	reports := infrapdf.NewMarotoReportGenerator()

	authUC := auth.NewAuthUseCase(store.Users, store.Staff, store.Tx, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	assetUC := usecase.NewAssetUseCase(store.Assets, store.Staff, sheet, reports, m, log)
	staffUC := usecase.NewStaffUseCase(store.Users, store.Staff, store.Tx, log)
	sheetUC := usecase.NewSpreadsheetUseCase(store.Assets, sheet, m, log)

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:           cfg.App.Name,
		UploadMaxMB:    cfg.Storage.UploadMaxMB,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, log)

	// Swagger UI: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Patrimônio API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:             authUC,
		AssetUC:            assetUC,
		StaffUC:            staffUC,
		SpreadsheetUC:      sheetUC,
		DB:                 store,
		Observer:           m,
		MetricsHandler:     m.Handler(),
		Log:                log,
		AllowSignup:        cfg.Auth.AllowSignup,
		SecureCookie:       cfg.Auth.SecureCookie,
		SessionMinutes:     cfg.JWT.Expiration,
		LoginRatePerMinute: cfg.Auth.LoginRatePerMinute,
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
