package memory

import (
	"context"
	"sort"
	"sync"

	"neurovault/application/ports"
	pkgerrors "neurovault/pkg/errors"
)

// ReportStore is the in-memory maintenance cycle history
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]*ports.CycleReport
}

// NewReportStore creates an empty in-memory cycle report store
func NewReportStore() *ReportStore {
	return &ReportStore{
		reports: make(map[string]*ports.CycleReport),
	}
}

// SaveReport persists a completed cycle's report
func (s *ReportStore) SaveReport(ctx context.Context, report *ports.CycleReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *report
	s.reports[report.CycleID] = &clone
	return nil
}

// GetReport retrieves a report by cycle ID
func (s *ReportStore) GetReport(ctx context.Context, cycleID string) (*ports.CycleReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[cycleID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("cycle report " + cycleID)
	}
	clone := *report
	return &clone, nil
}

// ListReports retrieves the most recent reports, newest first
func (s *ReportStore) ListReports(ctx context.Context, limit int) ([]*ports.CycleReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ports.CycleReport, 0, len(s.reports))
	for _, report := range s.reports {
		clone := *report
		out = append(out, &clone)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
