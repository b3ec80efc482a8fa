package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/BatStateU-CoE/pap-tracker-backend/config"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/bootstrap"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/maintenance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[error] operation=config_load err=%v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("[error] operation=db_open err=%v", err)
	}
	defer pool.Close()

	sqlDB, err := bootstrap.OpenSQL(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("[error] operation=sql_open err=%v", err)
	}
	defer sqlDB.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("[error] operation=redis_open err=%v", err)
	}
	defer rdb.Close()

	wiring := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "pap-tracker-backend",
		Version:     cfg.App.Version,
		Config:      cfg,
		DB:          pool,
		SQL:         sqlDB,
		Redis:       rdb,
	})

	scheduler := maintenance.NewScheduler(wiring.Hub, wiring.Feed)
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           wiring.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[info] operation=listen addr=%s env=%s", srv.Addr, cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[error] operation=listen err=%v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[info] operation=shutdown status=draining")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[warn] operation=shutdown err=%v", err)
	}
}
