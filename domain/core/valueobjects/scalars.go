package valueobjects

// The graph's three scalar measures share one rule: any mutation that would
// leave the valid range is clamped, never rejected. Out-of-range input from
// callers is a recoverable condition, not an error.

// Weight is the current strength of a synapse's association, in [0,1].
type Weight struct {
	value float64
}

// NewWeight creates a Weight, clamping the input into [0,1].
func NewWeight(v float64) Weight {
	return Weight{value: clamp01(v)}
}

// Value returns the numeric weight.
func (w Weight) Value() float64 { return w.value }

// Add returns a new Weight increased by delta, clamped into [0,1].
func (w Weight) Add(delta float64) Weight {
	return NewWeight(w.value + delta)
}

// IsStrong reports whether the weight is at or above the given threshold.
func (w Weight) IsStrong(threshold float64) bool { return w.value >= threshold }

// Equals checks value equality.
func (w Weight) Equals(other Weight) bool { return w.value == other.value }

// Stability is a synapse's resistance to decay, in [0,1].
type Stability struct {
	value float64
}

// NewStability creates a Stability, clamping the input into [0,1].
func NewStability(v float64) Stability {
	return Stability{value: clamp01(v)}
}

// Value returns the numeric stability.
func (s Stability) Value() float64 { return s.value }

// Add returns a new Stability increased by delta, clamped into [0,1].
func (s Stability) Add(delta float64) Stability {
	return NewStability(s.value + delta)
}

// Strength is a vault entry's retention score, in [0,10].
type Strength struct {
	value int
}

const maxStrength = 10

// NewStrength creates a Strength, clamping the input into [0,10].
func NewStrength(v int) Strength {
	if v < 0 {
		v = 0
	}
	if v > maxStrength {
		v = maxStrength
	}
	return Strength{value: v}
}

// Value returns the numeric strength.
func (s Strength) Value() int { return s.value }

// Add returns a new Strength increased by delta, clamped into [0,10].
func (s Strength) Add(delta int) Strength {
	return NewStrength(s.value + delta)
}

// IsDepleted reports whether the strength has reached zero.
func (s Strength) IsDepleted() bool { return s.value <= 0 }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
