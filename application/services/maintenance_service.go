package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"neurovault/application/ports"
	"neurovault/domain/events"
	pkgerrors "neurovault/pkg/errors"
	"neurovault/pkg/observability"
)

// CycleState is the orchestrator's position in the maintenance state machine
type CycleState string

const (
	StateIdle        CycleState = "idle"
	StateDecaying    CycleState = "decaying"
	StateDiscovering CycleState = "discovering"
)

const (
	maintenanceLockID = "maintenance-cycle"
	// Lease must outlive the slowest plausible cycle
	maintenanceLockTTL = 30 * time.Minute
)

// CyclePhase selects how much of the maintenance cycle a trigger runs.
// Scheduled triggers always run the full cycle; operators can run a single
// pass in isolation.
type CyclePhase string

const (
	PhaseFull      CyclePhase = "full"
	PhaseDecay     CyclePhase = "decay"
	PhaseDiscovery CyclePhase = "discovery"
)

// MaintenanceService sequences one maintenance cycle: decay, then discovery
// (which includes consolidation). The cycle runs under a lease so concurrent
// schedulers and manual triggers never overlap. There is no failed terminal
// state: the service always returns to idle and the next tick retries.
type MaintenanceService struct {
	decay       *DecayService
	discovery   *DiscoveryService
	lock        ports.MaintenanceLock
	reportStore ports.CycleReportStore
	publisher   ports.EventPublisher
	metrics     *observability.Metrics
	logger      *zap.Logger

	mu    sync.RWMutex
	state CycleState
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(
	decay *DecayService,
	discovery *DiscoveryService,
	lock ports.MaintenanceLock,
	reportStore ports.CycleReportStore,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		decay:       decay,
		discovery:   discovery,
		lock:        lock,
		reportStore: reportStore,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
		state:       StateIdle,
	}
}

// State returns the orchestrator's current position, for introspection
func (s *MaintenanceService) State() CycleState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *MaintenanceService) setState(state CycleState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// RunCycle executes one full maintenance cycle. When another holder owns the
// lease it returns ErrCycleInProgress without touching the graph. A decay
// failure aborts the cycle; a discovery failure is absorbed and the cycle
// still reports the decay statistics.
func (s *MaintenanceService) RunCycle(ctx context.Context) (*ports.CycleReport, error) {
	return s.run(ctx, PhaseFull)
}

// RunPhase executes a single named phase of the cycle under the same lease
// as a full run
func (s *MaintenanceService) RunPhase(ctx context.Context, phase CyclePhase) (*ports.CycleReport, error) {
	switch phase {
	case "", PhaseFull, PhaseDecay, PhaseDiscovery:
		if phase == "" {
			phase = PhaseFull
		}
	default:
		return nil, fmt.Errorf("unknown cycle phase %q", phase)
	}
	return s.run(ctx, phase)
}

func (s *MaintenanceService) run(ctx context.Context, phase CyclePhase) (*ports.CycleReport, error) {
	release, err := s.lock.Acquire(ctx, maintenanceLockID, maintenanceLockTTL)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrLockNotAcquired) {
			return nil, pkgerrors.ErrCycleInProgress
		}
		return nil, fmt.Errorf("failed to acquire maintenance lease: %w", err)
	}
	defer func() {
		if err := release(ctx); err != nil {
			s.logger.Warn("Failed to release maintenance lease", zap.Error(err))
		}
		s.setState(StateIdle)
	}()

	report := &ports.CycleReport{
		CycleID:   uuid.New().String(),
		StartedAt: time.Now(),
	}

	s.logger.Info("Maintenance cycle started",
		zap.String("cycleID", report.CycleID),
		zap.String("phase", string(phase)),
	)

	if phase != PhaseDiscovery {
		s.setState(StateDecaying)
		decayReport, decayErr := s.decay.Run(ctx)
		report.SynapsesDecayed = decayReport.SynapsesDecayed
		report.SynapsesPruned = decayReport.SynapsesPruned
		report.EntriesDecayed = decayReport.EntriesDecayed
		report.EntriesPruned = decayReport.EntriesPruned

		if decayErr != nil {
			// Hard failure: discovery must not reason over a half-decayed graph
			report.DiscoverySkipped = true
			report.Error = decayErr.Error()
			s.finishCycle(ctx, report)
			return report, decayErr
		}
	}

	if phase == PhaseDecay {
		report.DiscoverySkipped = true
		s.finishCycle(ctx, report)
		return report, nil
	}

	s.setState(StateDiscovering)
	discoveryReport, discoveryErr := s.discovery.Run(ctx)
	if discoveryErr != nil {
		// Soft failure: decay results stand, discovery retries next cycle
		report.DiscoverySkipped = true
		report.Error = discoveryErr.Error()
		s.logger.Warn("Discovery failed, cycle reports decay results only",
			zap.Error(discoveryErr),
			zap.String("cycleID", report.CycleID),
		)
	} else {
		report.SynapsesCreated = discoveryReport.SynapsesCreated
		report.TopicsApplied = discoveryReport.TopicsApplied
		report.EntriesPromoted = discoveryReport.EntriesPromoted
	}

	s.finishCycle(ctx, report)
	return report, nil
}

// History returns the most recent cycle reports, newest first
func (s *MaintenanceService) History(ctx context.Context, limit int) ([]*ports.CycleReport, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.reportStore.ListReports(ctx, limit)
}

// GetReport returns one cycle's report by ID
func (s *MaintenanceService) GetReport(ctx context.Context, cycleID string) (*ports.CycleReport, error) {
	return s.reportStore.GetReport(ctx, cycleID)
}

func (s *MaintenanceService) finishCycle(ctx context.Context, report *ports.CycleReport) {
	report.FinishedAt = time.Now()
	report.Duration = report.FinishedAt.Sub(report.StartedAt)

	if s.reportStore != nil {
		if err := s.reportStore.SaveReport(ctx, report); err != nil {
			s.logger.Warn("Failed to persist cycle report", zap.Error(err))
		}
	}

	if s.publisher != nil {
		event := events.NewMaintenanceCycleCompleted(
			report.CycleID,
			report.EntriesDecayed,
			report.SynapsesDecayed,
			report.SynapsesPruned,
			report.SynapsesCreated,
			report.EntriesPromoted,
			report.DiscoverySkipped,
			report.Duration,
			report.FinishedAt,
		)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish cycle event", zap.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordCycle(ctx, observability.CycleMetrics{
			EntriesDecayed:   report.EntriesDecayed,
			EntriesPruned:    report.EntriesPruned,
			SynapsesDecayed:  report.SynapsesDecayed,
			SynapsesPruned:   report.SynapsesPruned,
			SynapsesCreated:  report.SynapsesCreated,
			EntriesPromoted:  report.EntriesPromoted,
			DiscoverySkipped: report.DiscoverySkipped,
			Duration:         report.Duration,
		})
	}

	s.logger.Info("Maintenance cycle finished",
		zap.String("cycleID", report.CycleID),
		zap.Duration("duration", report.Duration),
		zap.Int("entriesDecayed", report.EntriesDecayed),
		zap.Int("entriesPruned", report.EntriesPruned),
		zap.Int("synapsesDecayed", report.SynapsesDecayed),
		zap.Int("synapsesPruned", report.SynapsesPruned),
		zap.Int("synapsesCreated", report.SynapsesCreated),
		zap.Int("entriesPromoted", report.EntriesPromoted),
		zap.Bool("discoverySkipped", report.DiscoverySkipped),
	)
}
