package progress

import (
	"encoding/json"
	"fmt"
)

// MaxPercentage is the upper bound for loyalty and support values.
const MaxPercentage = 100

// Percentage is a 0..100 counter with the same clamping and bar-fraction
// behaviour as Progress, but no tier concept.
type Percentage struct {
	value int
}

// NewPercentage returns a Percentage clamped to [0, 100].
func NewPercentage(v int) Percentage {
	p := Percentage{}
	p.Set(v)
	return p
}

// Value returns the raw percentage.
func (p Percentage) Value() int { return p.value }

// Fraction returns the bar fraction in [minFraction, 1].
func (p Percentage) Fraction() float64 {
	f := float64(p.value) / MaxPercentage
	if f < minFraction {
		return minFraction
	}
	return f
}

// Set replaces the value, clamping into [0, 100].
func (p *Percentage) Set(v int) {
	if v < 0 {
		v = 0
	}
	if v > MaxPercentage {
		v = MaxPercentage
	}
	p.value = v
}

// Add shifts the value by delta with the same clamping as Set.
func (p *Percentage) Add(delta int) {
	p.Set(p.value + delta)
}

// MarshalJSON encodes the value as a bare integer.
func (p Percentage) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.value)
}

// UnmarshalJSON decodes a bare integer, clamping into range.
func (p *Percentage) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("percentage: %w", err)
	}
	p.Set(v)
	return nil
}
