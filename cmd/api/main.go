package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"projecthub/internal/auth"
	"projecthub/internal/config"
	"projecthub/internal/db"
	httpserver "projecthub/internal/http"
	"projecthub/internal/observability"
	"projecthub/internal/seed"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load(log)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	gdb, err := db.Connect(cfg.DSN, log)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	if err := db.AutoMigrate(gdb); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	if err := seed.FirstSetup(gdb, cfg, log); err != nil {
		log.WithError(err).Fatal("seed")
	}

	var revoked auth.RevocationStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		revoked = auth.NewRedisRevocations(client)
		log.WithField("addr", cfg.RedisAddr).Info("token revocation enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := httpserver.NewRouter(httpserver.Deps{
		DB:      gdb,
		Config:  cfg,
		Log:     log,
		Authn:   auth.NewAuthenticator(gdb, cfg.JWTSecret, cfg.TokenTTL, revoked),
		Metrics: observability.NewMetrics(registry),
	})

	log.WithField("port", cfg.AppPort).Info("server listening")
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
