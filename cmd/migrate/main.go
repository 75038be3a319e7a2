// cmd/migrate/main.go
package main

import (
	"context"
	"flag"
	"os"

	"fairsplit/internal/config"
	"fairsplit/internal/util"
	"fairsplit/pkg/db"
)

// Usage: migrate [-command up|down|status|version|reset] [args...]
func main() {
	command := flag.String("command", "up", "goose command to run")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		util.GetLogger().Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	util.InitLogger(cfg.LogLevel)
	logger := util.GetLogger()

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.DSN(), cfg.DB)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database.DB, *command, flag.Args()...); err != nil {
		logger.Error("Migration failed", "command", *command, "error", err)
		database.Close()
		os.Exit(1)
	}
	logger.Info("Migration finished", "command", *command)
}
