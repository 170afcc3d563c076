package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"neurovault/application/commands"
	"neurovault/application/commands/bus"
	"neurovault/application/ports"
	"neurovault/application/queries"
	querybus "neurovault/application/queries/bus"
	"neurovault/application/services"
	domaincfg "neurovault/domain/config"
	"neurovault/infrastructure/ai"
	"neurovault/infrastructure/config"
	"neurovault/infrastructure/messaging/eventbridge"
	"neurovault/infrastructure/persistence/dynamodb"
	"neurovault/pkg/auth"
	"neurovault/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig supplies the tuning constants for decay, discovery
// and consolidation
func ProvideDomainConfig() *domaincfg.DomainConfig {
	return domaincfg.DefaultDomainConfig()
}

// ProvideEntryRepository creates the vault entry repository
func ProvideEntryRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.EntryRepository {
	return dynamodb.NewEntryRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideSynapseRepository creates the synapse repository
func ProvideSynapseRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SynapseRepository {
	return dynamodb.NewSynapseRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideMemoryRepository creates the long-term memory repository
func ProvideMemoryRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.LongTermMemoryRepository {
	return dynamodb.NewMemoryRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideCategoryRepository creates the category repository, wrapped in a
// read-through cache since categories are reference data shared by the
// discovery prompt and consolidation.
func ProvideCategoryRepository(client *awsdynamodb.Client, cfg *config.Config, cache ports.Cache, logger *zap.Logger) ports.CategoryRepository {
	repo := dynamodb.NewCategoryRepository(client, cfg.DynamoDBTable, logger)
	return newCachedCategoryRepository(repo, cache)
}

// ProvideReportStore creates the maintenance cycle report store
func ProvideReportStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.CycleReportStore {
	return dynamodb.NewReportStore(client, cfg.DynamoDBTable, logger)
}

// ProvideMaintenanceLock creates the distributed lease used around cycles
func ProvideMaintenanceLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.MaintenanceLock {
	return dynamodb.NewDistributedLock(client, cfg.DynamoDBTable, logger)
}

// ProvideEventBus creates the EventBridge-backed event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewEventBridgePublisher(client, cfg.EventBusName, logger)
}

// ProvideEventPublisher exposes the bus through the narrower publisher port
func ProvideEventPublisher(eventBus ports.EventBus) ports.EventPublisher {
	return eventBus
}

// ProvideMetrics creates the CloudWatch metrics recorder. Disabled metrics
// yield nil; the maintenance service treats nil as a no-op.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewMetrics(client, "NeuroVault", logger)
}

// ProvideClassifier creates the AI classifier, falling back to the static
// no-op when no API key is configured.
func ProvideClassifier(cfg *config.Config, logger *zap.Logger) (ports.Classifier, error) {
	if cfg.ClassifierAPIKey == "" {
		logger.Warn("No classifier API key configured, link discovery disabled")
		return ai.NewStaticClassifier(), nil
	}
	return ai.NewClassifier(cfg.ClassifierAPIKey, cfg.ClassifierEndpoint, cfg.ClassifierModel, cfg.ClassifierTimeout, logger)
}

// ProvideSummarizer creates the AI summarizer, falling back to extractive
// summaries when no API key is configured.
func ProvideSummarizer(cfg *config.Config, logger *zap.Logger) (ports.Summarizer, error) {
	if cfg.ClassifierAPIKey == "" {
		return ai.NewStaticSummarizer(), nil
	}
	return ai.NewSummarizer(cfg.ClassifierAPIKey, cfg.ClassifierEndpoint, cfg.ClassifierModel, cfg.ClassifierTimeout, logger)
}

// ProvideUserRateLimiter creates the per-user rate limiter. Lambda
// containers do not share memory, so the DynamoDB-backed limiter is used
// there; long-lived servers keep state in process.
func ProvideUserRateLimiter(client *awsdynamodb.Client, cfg *config.Config) auth.RateLimiter {
	if cfg.IsLambda {
		return auth.NewDistributedUserRateLimiter(client, cfg.DynamoDBTable, 200)
	}
	return auth.NewUserRateLimiter(200)
}

// ProvideEntryService creates the entry service
func ProvideEntryService(
	entryRepo ports.EntryRepository,
	synapseRepo ports.SynapseRepository,
	publisher ports.EventPublisher,
	cfg *domaincfg.DomainConfig,
	logger *zap.Logger,
) *services.EntryService {
	return services.NewEntryService(entryRepo, synapseRepo, publisher, cfg, logger)
}

// ProvideReinforcementService creates the reinforcement service
func ProvideReinforcementService(
	entryRepo ports.EntryRepository,
	synapseRepo ports.SynapseRepository,
	publisher ports.EventPublisher,
	cfg *domaincfg.DomainConfig,
	logger *zap.Logger,
) *services.ReinforcementService {
	return services.NewReinforcementService(entryRepo, synapseRepo, publisher, cfg, logger)
}

// ProvideDecayService creates the decay service
func ProvideDecayService(
	entryRepo ports.EntryRepository,
	synapseRepo ports.SynapseRepository,
	publisher ports.EventPublisher,
	cfg *domaincfg.DomainConfig,
	logger *zap.Logger,
) *services.DecayService {
	return services.NewDecayService(entryRepo, synapseRepo, publisher, cfg, logger)
}

// ProvideConsolidationService creates the consolidation service
func ProvideConsolidationService(
	entryRepo ports.EntryRepository,
	memoryRepo ports.LongTermMemoryRepository,
	categoryRepo ports.CategoryRepository,
	summarizer ports.Summarizer,
	publisher ports.EventPublisher,
	cfg *domaincfg.DomainConfig,
	logger *zap.Logger,
) *services.ConsolidationService {
	return services.NewConsolidationService(entryRepo, memoryRepo, categoryRepo, summarizer, publisher, cfg, logger)
}

// ProvideDiscoveryService creates the discovery service
func ProvideDiscoveryService(
	entryRepo ports.EntryRepository,
	categoryRepo ports.CategoryRepository,
	classifier ports.Classifier,
	reinforcement *services.ReinforcementService,
	consolidation *services.ConsolidationService,
	cfg *domaincfg.DomainConfig,
	logger *zap.Logger,
) *services.DiscoveryService {
	return services.NewDiscoveryService(entryRepo, categoryRepo, classifier, reinforcement, consolidation, cfg, logger)
}

// ProvideMaintenanceService creates the maintenance orchestrator
func ProvideMaintenanceService(
	decay *services.DecayService,
	discovery *services.DiscoveryService,
	lock ports.MaintenanceLock,
	reportStore ports.CycleReportStore,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.MaintenanceService {
	return services.NewMaintenanceService(decay, discovery, lock, reportStore, publisher, metrics, logger)
}

// ProvideCommandBus creates the command bus and registers every command
// handler behind it
func ProvideCommandBus(
	entryService *services.EntryService,
	reinforcement *services.ReinforcementService,
	maintenance *services.MaintenanceService,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(bus.LoggingMiddleware(logger))

	ingest := commands.NewIngestEntryHandler(entryService, logger)
	deleteEntry := commands.NewDeleteEntryHandler(entryService, logger)
	fire := commands.NewFireSynapseHandler(reinforcement, logger)
	fireAll := commands.NewFireAllHandler(reinforcement, logger)
	weaken := commands.NewWeakenSynapseHandler(reinforcement, logger)
	runMaintenance := commands.NewRunMaintenanceHandler(maintenance, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.IngestEntryCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return ingest.Handle(ctx, cmd.(commands.IngestEntryCommand))
		})},
		{commands.DeleteEntryCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return nil, deleteEntry.Handle(ctx, cmd.(commands.DeleteEntryCommand))
		})},
		{commands.FireSynapseCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return fire.Handle(ctx, cmd.(commands.FireSynapseCommand))
		})},
		{commands.FireAllCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return fireAll.Handle(ctx, cmd.(commands.FireAllCommand))
		})},
		{commands.WeakenSynapseCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return weaken.Handle(ctx, cmd.(commands.WeakenSynapseCommand))
		})},
		{commands.RunMaintenanceCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return runMaintenance.Handle(ctx, cmd.(commands.RunMaintenanceCommand))
		})},
	}

	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, reg.handler); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates the query bus and registers every query handler
// behind it
func ProvideQueryBus(
	entryService *services.EntryService,
	reinforcement *services.ReinforcementService,
	maintenance *services.MaintenanceService,
	memoryRepo ports.LongTermMemoryRepository,
	categoryRepo ports.CategoryRepository,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(querybus.QueryLoggingMiddleware(logger))

	getEntry := queries.NewGetEntryHandler(entryService, logger)
	listEntries := queries.NewListEntriesHandler(entryService, logger)
	synapseContext := queries.NewSynapseContextHandler(reinforcement, logger)
	synapseStats := queries.NewSynapseStatsHandler(reinforcement, logger)
	strongest := queries.NewStrongestSynapsesHandler(reinforcement, logger)
	listMemories := queries.NewListMemoriesHandler(memoryRepo, logger)
	listCategories := queries.NewListCategoriesHandler(categoryRepo, logger)
	cycleHistory := queries.NewCycleHistoryHandler(maintenance, logger)
	cycleReport := queries.NewCycleReportHandler(maintenance, logger)

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetEntryQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return getEntry.Handle(ctx, q.(queries.GetEntryQuery))
		})},
		{queries.ListEntriesQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return listEntries.Handle(ctx, q.(queries.ListEntriesQuery))
		})},
		{queries.SynapseContextQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return synapseContext.Handle(ctx, q.(queries.SynapseContextQuery))
		})},
		{queries.SynapseStatsQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return synapseStats.Handle(ctx, q.(queries.SynapseStatsQuery))
		})},
		{queries.StrongestSynapsesQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return strongest.Handle(ctx, q.(queries.StrongestSynapsesQuery))
		})},
		{queries.ListMemoriesQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return listMemories.Handle(ctx, q.(queries.ListMemoriesQuery))
		})},
		{queries.ListCategoriesQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return listCategories.Handle(ctx, q.(queries.ListCategoriesQuery))
		})},
		{queries.CycleHistoryQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return cycleHistory.Handle(ctx, q.(queries.CycleHistoryQuery))
		})},
		{queries.CycleReportQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return cycleReport.Handle(ctx, q.(queries.CycleReportQuery))
		})},
	}

	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}

// ProvideInMemoryCache creates an in-memory cache
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}
