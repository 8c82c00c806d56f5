// Command server is the entry point for the DishSwap API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dishswap/internal/bootstrap"
	"dishswap/internal/config"
	"dishswap/internal/middleware"
	"dishswap/internal/observability"
	"dishswap/internal/server"
)

// @title DishSwap API
// @version 1.0
// @description Recipe sharing API with comments, reactions and favorites

// @contact.name API Support
// @contact.email support@dishswap.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitLogger(cfg.Env, cfg.LogLevel)

	shutdownTracing, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		ServiceName:    "dishswap-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	rt, err := bootstrap.InitRuntime(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServer(cfg, rt.Deps())
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := gracefulShutdown(sigChan, 10*time.Second,
		shutdownStep{"Server", srv.Shutdown},
		shutdownStep{"Runtime", rt.Close},
		shutdownStep{"Tracing", shutdownTracing},
	)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	// Start returns once the listener closes; the remaining steps still need to run.
	<-done
	middleware.Logger.Info("Server exited")
}

type shutdownStep struct {
	name string
	fn   func(context.Context) error
}

// gracefulShutdown runs steps in order after the first signal, sharing one timeout.
// The returned channel closes when every step has returned.
func gracefulShutdown(sig <-chan os.Signal, timeout time.Duration, steps ...shutdownStep) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-sig

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		for _, step := range steps {
			if err := step.fn(ctx); err != nil {
				middleware.Logger.Error(step.name+" shutdown error", "error", err)
			}
		}
	}()
	return done
}
