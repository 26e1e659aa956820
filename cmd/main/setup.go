package main

import (
	"market-watchlist/src/data_source/mt5"
	"market-watchlist/src/interfaces"
	"market-watchlist/src/logger"
	"market-watchlist/src/models"
	"market-watchlist/src/network"
	"market-watchlist/src/storage"
	"market-watchlist/src/utils"
)

// -----------------------------------------------------------------------------

func setupStorage(cfg *models.MConfig, appLogger *logger.Logger) (interfaces.IKeyValueStore, error) {
	appLogger.Info("Opening %s store", cfg.Storage.DBType)
	return storage.NewStore(cfg, appLogger)
}

// -----------------------------------------------------------------------------

func setupDataSource(cfg *models.MConfig, appLogger *logger.Logger) interfaces.IDataSource {
	networkManager := network.NewAsyncNetworkManager(cfg, appLogger.Named("NetworkManager"))
	source := mt5.NewQuoteServiceSource(cfg, networkManager, appLogger.Named("QuoteService"))
	appLogger.Info("Using quote service %s", source.Name())
	return source
}

// -----------------------------------------------------------------------------

// setupMarketGate returns nil when polling should ignore exchange hours.
func setupMarketGate(cfg *models.MConfig, appLogger *logger.Logger) interfaces.IMarketGate {
	if !cfg.Polling.PauseWhenMarketsClosed {
		return nil
	}
	return utils.NewMarketGate(cfg.Polling.MarketCalendars, appLogger.Named("MarketGate"))
}
