// Package progress provides the bounded counters behind player level,
// friend loyalty and country support. Values are clamped, never rejected.
package progress

import (
	"encoding/json"
	"fmt"
)

// Direction reports how a tier moved after a mutation.
type Direction int

const (
	NoChange Direction = iota
	Increased
	Decreased
)

func (d Direction) String() string {
	switch d {
	case Increased:
		return "increased"
	case Decreased:
		return "decreased"
	default:
		return "no change"
	}
}

const (
	// MaxProgress caps the fine-grained level counter.
	MaxProgress = 1000
	// BandWidth is the size of one tier band (0, 100, 200, ... 1000).
	BandWidth = 100
	// minFraction pads the display bar so it never renders empty.
	minFraction = 0.05
)

// Progress wraps a 0..MaxProgress counter with a derived tier number and a
// normalized bar fraction.
type Progress struct {
	value int
}

// NewProgress returns a Progress clamped to the valid range.
func NewProgress(v int) Progress {
	p := Progress{}
	p.Set(v)
	return p
}

// Value returns the raw counter.
func (p Progress) Value() int { return p.value }

// Tier returns the coarse band number the counter falls in.
func (p Progress) Tier() int {
	return p.value / BandWidth
}

// Fraction returns progress through the current band in [minFraction, 1].
// A maxed counter always reports 1.
func (p Progress) Fraction() float64 {
	if p.value >= MaxProgress {
		return 1
	}
	f := float64(p.value%BandWidth) / BandWidth
	if f < minFraction {
		return minFraction
	}
	return f
}

// Set replaces the counter, clamping into range, and reports how the tier
// moved relative to the previous value.
func (p *Progress) Set(v int) Direction {
	if v < 0 {
		v = 0
	}
	if v > MaxProgress {
		v = MaxProgress
	}
	before := p.Tier()
	p.value = v
	switch after := p.Tier(); {
	case after > before:
		return Increased
	case after < before:
		return Decreased
	default:
		return NoChange
	}
}

// Add shifts the counter by delta with the same clamping as Set.
func (p *Progress) Add(delta int) Direction {
	return p.Set(p.value + delta)
}

// MarshalJSON encodes the counter as a bare integer.
func (p Progress) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.value)
}

// UnmarshalJSON decodes a bare integer, clamping into range.
func (p *Progress) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("progress: %w", err)
	}
	p.Set(v)
	return nil
}
