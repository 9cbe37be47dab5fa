package main

import (
	"fmt"

	"opsdeck/internal/config"
	"opsdeck/internal/models"
	"opsdeck/internal/server"
	"opsdeck/pkg/logger"
)

func main() {
	log := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		log.WithField("error", err.Error()).Fatal("invalid configuration")
	}

	db, err := models.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithField("error", err.Error()).Fatal("cannot connect to database")
	}
	defer db.Close()

	if err := models.NewMigrateAdapter(db.DB).RunMigrations(); err != nil {
		log.WithField("error", err.Error()).Fatal("cannot run migrations")
	}

	srv := server.NewHTTPServer(cfg, db, log)
	log.WithField("addr", fmt.Sprintf(":%d", cfg.Port)).Info("server listening")
	if err := srv.ListenAndServe(); err != nil {
		log.WithField("error", err.Error()).Fatal("server stopped")
	}
}
