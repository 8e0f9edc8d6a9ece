package game

import (
	"soviet/internal/sched"
)

// EffectKind is what a power acts on.
type EffectKind string

const (
	EffectLevel    EffectKind = "level"
	EffectSupport  EffectKind = "support"
	EffectCurrency EffectKind = "currency"
	EffectLoyalty  EffectKind = "loyalty"
	EffectOther    EffectKind = "other"
)

// PowerDef is the static definition of one power stage. Cost is the coin
// price of upgrading into the stage; Upgrades is the remaining chain.
type PowerDef struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Effect      EffectKind `yaml:"effect" json:"effect"`
	Strength    int        `yaml:"strength,omitempty" json:"strength,omitempty"`
	// Interval is the seconds between recurring applications; 0 means the
	// power fires exactly once.
	Interval float64    `yaml:"interval,omitempty" json:"interval,omitempty"`
	Cost     int        `yaml:"cost,omitempty" json:"cost,omitempty"`
	Upgrades []PowerDef `yaml:"upgrades,omitempty" json:"upgrades,omitempty"`
}

// Power is a live, upgradeable passive effect owned by the player or a
// friend. The running timer handle is engine state and never persisted.
type Power struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Effect      EffectKind `json:"effect"`
	Strength    int        `json:"strength"`
	Interval    float64    `json:"interval,omitempty"`
	Upgrades    []PowerDef `json:"upgrades,omitempty"`

	timer sched.Handle
}

// NewPower builds a live power from the head of a definition chain.
func NewPower(def PowerDef) *Power {
	return &Power{
		Name:        def.Name,
		Description: def.Description,
		Effect:      def.Effect,
		Strength:    def.Strength,
		Interval:    def.Interval,
		Upgrades:    def.Upgrades,
	}
}

// HasUpgrade reports whether the chain has another stage. A power with an
// exhausted chain is the terminal stage.
func (p *Power) HasUpgrade() bool { return len(p.Upgrades) > 0 }

// UpgradeCost is the coin price of the next stage, 0 when maxed.
func (p *Power) UpgradeCost() int {
	if !p.HasUpgrade() {
		return 0
	}
	return p.Upgrades[0].Cost
}

// Upgrade pops the chain head into the power's current fields, stopping any
// running timer first. It is a no-op on an exhausted chain.
func (p *Power) Upgrade() bool {
	if !p.HasUpgrade() {
		return false
	}
	p.StopTimer()
	next := p.Upgrades[0]
	p.Name = next.Name
	p.Description = next.Description
	p.Effect = next.Effect
	p.Strength = next.Strength
	p.Interval = next.Interval
	p.Upgrades = p.Upgrades[1:]
	return true
}

// StopTimer cancels the running interval timer, if any.
func (p *Power) StopTimer() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// consequence translates the power's effect into the engine instruction it
// applies on each firing.
func (p *Power) consequence() Consequence {
	switch p.Effect {
	case EffectLevel:
		return Consequence{Kind: ChangeLevel, Amount: p.Strength}
	case EffectSupport:
		return Consequence{Kind: ChangeSupport, Amount: p.Strength}
	case EffectCurrency:
		return Consequence{Kind: ChangeCurrency, Amount: p.Strength}
	case EffectLoyalty:
		return Consequence{Kind: ChangeLoyalty, Amount: p.Strength}
	default:
		return Consequence{Kind: Noop}
	}
}
