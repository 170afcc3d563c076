//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"neurovault/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideDomainConfig,
	ProvideEntryRepository,
	ProvideSynapseRepository,
	ProvideMemoryRepository,
	ProvideCategoryRepository,
	ProvideReportStore,
	ProvideMaintenanceLock,
	ProvideEventBus,
	ProvideEventPublisher,
	ProvideMetrics,
	ProvideClassifier,
	ProvideSummarizer,
	ProvideUserRateLimiter,
	ProvideInMemoryCache,
	ProvideEntryService,
	ProvideReinforcementService,
	ProvideDecayService,
	ProvideConsolidationService,
	ProvideDiscoveryService,
	ProvideMaintenanceService,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
