// Package main boots the realtime catalog HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fairyhunter13/realtime-catalog/internal/account"
	"github.com/fairyhunter13/realtime-catalog/internal/auth"
	"github.com/fairyhunter13/realtime-catalog/internal/cache"
	"github.com/fairyhunter13/realtime-catalog/internal/catalog"
	"github.com/fairyhunter13/realtime-catalog/internal/config"
	"github.com/fairyhunter13/realtime-catalog/internal/events"
	httpapi "github.com/fairyhunter13/realtime-catalog/internal/http"
	"github.com/fairyhunter13/realtime-catalog/internal/jobs"
	"github.com/fairyhunter13/realtime-catalog/internal/model"
	"github.com/fairyhunter13/realtime-catalog/internal/obs"
	"github.com/fairyhunter13/realtime-catalog/internal/queue"
	"github.com/fairyhunter13/realtime-catalog/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")

	accounts := account.New()
	products := store.New()
	listing := cache.NewListing(cfg.CacheTTL)
	hub := events.NewHub(accounts, cfg.ActiveWindow)

	q := queue.New(cfg.QueueOutBuffer)
	worker := queue.NewWorker(cfg, q)
	worker.Register(model.JobSendEmail, jobs.SendEmail(cfg.EmailDelay))
	worker.Register(model.JobLogActivity, jobs.LogActivity)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	svc := catalog.NewService(products, listing, hub, worker, accounts)
	authSvc := auth.New(accounts, cfg.JWTSecret, cfg.JWTTTL)

	app := httpapi.NewApp(cfg, authSvc, svc, hub, worker)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	app.StartShutdown()
	obs.Logger.Info("shutdown_drain_begin", "backlog_size", worker.BacklogSize(), "worker_count", worker.WorkerCount())

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := worker.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	worker.Stop()
	obs.Logger.Info("service_stopped")
}
