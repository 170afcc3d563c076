package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable business rules for the memory graph.
type DomainConfig struct {
	// Synapse decay (forgetting curve)
	BaseDecayRate           float64       // weight lost per cycle before damping
	DampingFactor           float64       // how strongly stability slows decay
	PruneThreshold          float64       // synapses at or below this weight are deleted
	SynapseInactivityWindow time.Duration // synapses idle longer than this start decaying

	// Entry decay
	EntryInactivityCutoff time.Duration // entries idle longer than this lose strength
	EntryDecayStep        int           // strength lost per cycle

	// Dreaming sub-pass (stability reinforcement)
	DreamWindow    time.Duration // synapses fired within this window qualify
	DreamMinWeight float64       // and must be at least this strong
	StabilityStep  float64       // stability gained per qualifying cycle

	// Reinforcement
	SeedWeight          float64
	SeedStability       float64
	WeightIncrement     float64
	DefaultWeakenAmount float64

	// Discovery batching
	DeltaLimit         int // hard cap on classifier delta input
	ContextLimit       int // hard cap on classifier context input
	ContextMinStrength int // context entries must be at least this strong
	MaxLinksPerSource  int // proposed links kept per delta entry per cycle

	// Consolidation
	ConsolidationThreshold int // entry strength that triggers promotion
	LongTermStrength       int // fixed strength of long-term records
	MaxSummarySources      int // entries fed to the summarizer per cluster

	// Ingestion
	InitialEntryStrength int

	// Reads
	StrongestMinWeight float64 // floor for the "strongest synapses" view
	StrongWeight       float64 // stats: strong connection threshold
	WeakWeight         float64 // stats: weak connection threshold
}

// DefaultDomainConfig returns the default domain configuration.
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		BaseDecayRate:           0.05,
		DampingFactor:           0.8,
		PruneThreshold:          0.1,
		SynapseInactivityWindow: 7 * 24 * time.Hour,

		EntryInactivityCutoff: 24 * time.Hour,
		EntryDecayStep:        1,

		DreamWindow:    7 * 24 * time.Hour,
		DreamMinWeight: 0.5,
		StabilityStep:  0.02,

		SeedWeight:          0.3,
		SeedStability:       0.1,
		WeightIncrement:     0.15,
		DefaultWeakenAmount: 0.2,

		DeltaLimit:         50,
		ContextLimit:       20,
		ContextMinStrength: 3,
		MaxLinksPerSource:  3,

		ConsolidationThreshold: 10,
		LongTermStrength:       10,
		MaxSummarySources:      10,

		InitialEntryStrength: 5,

		StrongestMinWeight: 0.5,
		StrongWeight:       0.7,
		WeakWeight:         0.3,
	}
}

// Validate checks that the configuration values are internally consistent.
func (c *DomainConfig) Validate() error {
	if c.BaseDecayRate <= 0 || c.BaseDecayRate > 1 {
		return fmt.Errorf("base decay rate must be in (0,1], got %f", c.BaseDecayRate)
	}
	if c.DampingFactor < 0 || c.DampingFactor > 1 {
		return fmt.Errorf("damping factor must be in [0,1], got %f", c.DampingFactor)
	}
	if c.PruneThreshold < 0 || c.PruneThreshold >= 1 {
		return fmt.Errorf("prune threshold must be in [0,1), got %f", c.PruneThreshold)
	}
	if c.WeightIncrement <= 0 {
		return fmt.Errorf("weight increment must be positive, got %f", c.WeightIncrement)
	}
	if c.DeltaLimit <= 0 || c.ContextLimit <= 0 {
		return fmt.Errorf("discovery batch limits must be positive")
	}
	if c.MaxLinksPerSource <= 0 {
		return fmt.Errorf("max links per source must be positive, got %d", c.MaxLinksPerSource)
	}
	if c.ConsolidationThreshold <= 0 {
		return fmt.Errorf("consolidation threshold must be positive, got %d", c.ConsolidationThreshold)
	}
	return nil
}
