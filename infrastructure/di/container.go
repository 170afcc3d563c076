package di

import (
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"neurovault/application/commands/bus"
	"neurovault/application/ports"
	querybus "neurovault/application/queries/bus"
	"neurovault/application/services"
	"neurovault/infrastructure/config"
	"neurovault/pkg/auth"
	"neurovault/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config             *config.Config
	Logger             *zap.Logger
	DynamoDB           *awsdynamodb.Client
	EntryRepo          ports.EntryRepository
	SynapseRepo        ports.SynapseRepository
	MemoryRepo         ports.LongTermMemoryRepository
	CategoryRepo       ports.CategoryRepository
	ReportStore        ports.CycleReportStore
	Lock               ports.MaintenanceLock
	EventBus           ports.EventBus
	EventPublisher     ports.EventPublisher
	Classifier         ports.Classifier
	Summarizer         ports.Summarizer
	Cache              ports.Cache
	Metrics            *observability.Metrics
	RateLimiter        auth.RateLimiter
	EntryService       *services.EntryService
	Reinforcement      *services.ReinforcementService
	Decay              *services.DecayService
	Discovery          *services.DiscoveryService
	Consolidation      *services.ConsolidationService
	MaintenanceService *services.MaintenanceService
	CommandBus         *bus.CommandBus
	QueryBus           *querybus.QueryBus
}
