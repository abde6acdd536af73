// Command memoir-admin creates or promotes a Memoir administrator account.
//
// Usage:
//
//	memoir-admin -d postgres://... -admin-user root -admin-email root@example.com
//
// The password is read from MEMOIR_ADMIN_PASSWORD or prompted for.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/memoir/internal/admincli"
	"github.com/dmitrijs2005/memoir/internal/logging"
	"github.com/dmitrijs2005/memoir/internal/server/config"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/memoir/internal/server/services"
)

func main() {
	ctx := context.Background()
	logger := logging.NewJSONLogger(os.Stderr, slog.LevelInfo)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.UsesMemoryStore() {
		logger.Warn(ctx, "No database configured; the account will only live as long as this process")
	}

	opts, err := admincli.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("args: %v", err)
	}

	rm, err := repomanager.New(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer rm.Close()

	if err := rm.RunMigrations(ctx); err != nil {
		log.Printf("migrations: %v", err)
		return
	}

	b := admincli.NewBootstrap(services.NewUserService(rm, cfg), os.Stdin, os.Stdout, os.LookupEnv)
	if err := b.Run(ctx, opts); err != nil {
		log.Printf("%v", err)
		return
	}
}
