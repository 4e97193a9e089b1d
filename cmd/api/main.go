package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/opentill/cashdesk/internal/bootstrap"
	"github.com/opentill/cashdesk/internal/controller"
	"github.com/opentill/cashdesk/internal/service"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "cashdesk-api", "cashdesk")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Services ---
	authzService := service.NewAuthzService(app.Users)
	recorderService := service.NewRecorderService(app.Ledger, app.Sink)
	checkoutService := service.NewCheckoutService(app.Ledger, app.Sink)
	balanceService := service.NewBalanceService(app.Ledger)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:        app.Pool,
		RedisClient: app.Redis,
		Authz:       authzService,
		Recorder:    recorderService,
		Checkout:    checkoutService,
		Balances:    balanceService,
		Metrics:     app.Metrics,
		ServerCfg:   app.Config.Server,
		JWTSecret:   app.Config.Auth.JWTSecret,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
