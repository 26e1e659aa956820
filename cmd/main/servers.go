package main

import (
	"context"
	"sync"

	"market-watchlist/src/dashboard"
	"market-watchlist/src/interfaces"
	"market-watchlist/src/logger"
)

// -----------------------------------------------------------------------------

// startServers runs the HTTP server and relays every dashboard view to it.
func startServers(
	ctx context.Context,
	srv interfaces.IDataExchanger,
	dash *dashboard.Dashboard,
	wg *sync.WaitGroup,
	appLogger *logger.Logger,
) {
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	views, unsubscribe := dash.Subscribe()
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case view, ok := <-views:
				if !ok {
					return
				}
				srv.Broadcast(view)
			}
		}
	}()
}
