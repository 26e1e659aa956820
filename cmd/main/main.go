package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"market-watchlist/src/config"
	"market-watchlist/src/dashboard"
	"market-watchlist/src/logger"
	"market-watchlist/src/scheduler"
	"market-watchlist/src/server"

	_ "time/tzdata"
)

// -----------------------------------------------------------------------------

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)

	// 4. Setup Components
	store, err := setupStorage(conf.MConfig, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init storage: %v", err)
	}
	defer store.Close()

	source := setupDataSource(conf.MConfig, appLogger)
	gate := setupMarketGate(conf.MConfig, appLogger)

	poller := scheduler.NewPollingScheduler(conf.MConfig, source, source, gate, appLogger.Named("PollingScheduler"))
	dash := dashboard.NewDashboard(conf, poller, source, store, appLogger.Named("Dashboard"))
	srv := server.NewAPIServer(conf.MConfig, dash, appLogger.Named("APIServer"))

	// 5. Lifecycle Management
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	if err := poller.Start(ctx, &wg); err != nil {
		appLogger.Critical("Failed to start polling: %v", err)
	}
	dash.Start(ctx, &wg)

	// 6. Start Servers
	startServers(ctx, srv, dash, &wg, appLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	// 7. Shutdown
	appLogger.Info("Shutting down...")
	if err := srv.Stop(); err != nil {
		appLogger.Error("Server shutdown failed: %v", err)
	}
	poller.Stop()
	dash.Stop()
	cancel()
	wg.Wait()
	appLogger.Info("Shutdown complete.")
}
