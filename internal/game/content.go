package game

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Content is the static game catalog: friend definitions with their message
// graphs, the player's starting state and the quiz question bank. It is
// loaded once and treated as read-only afterwards.
type Content struct {
	Player  PlayerDef      `yaml:"player"`
	Friends []FriendDef    `yaml:"friends"`
	Quiz    []QuizQuestion `yaml:"quiz"`
}

// PlayerDef is the starting player state.
type PlayerDef struct {
	Currency int        `yaml:"currency"`
	Powers   []PowerDef `yaml:"powers"`
}

// FriendDef defines one character. Identity is the last name, unique across
// the catalog. Friends marked initial are on the roster of a fresh player;
// the rest join through introduceFriend consequences.
type FriendDef struct {
	FirstName   string                   `yaml:"firstName"`
	LastName    string                   `yaml:"lastName"`
	Portrait    string                   `yaml:"portrait"`
	Description string                   `yaml:"description"`
	Loyalty     int                      `yaml:"loyalty"`
	Initial     bool                     `yaml:"initial"`
	Restriction Restriction              `yaml:"restriction"`
	Powers      []PowerDef               `yaml:"powers"`
	Messages    map[int]MessageDef       `yaml:"messages"`
	Start       StartOption              `yaml:"start"`
	Upgrades    map[int]FriendUpgradeDef `yaml:"upgrades"`
}

// MessageDef is one incoming node of a friend's message graph. A node with
// no choices expects no response; whether the chat ends there is up to an
// authored endChat consequence.
type MessageDef struct {
	Lines        []string      `yaml:"lines"`
	Choices      []ChoiceDef   `yaml:"choices"`
	Consequences []Consequence `yaml:"consequences"`
}

// ChoiceDef is one player response. Next chains into another message node;
// MinLevel hides the choice below that player level number.
type ChoiceDef struct {
	Lines        []string      `yaml:"lines" json:"lines"`
	Next         *int          `yaml:"next,omitempty" json:"next,omitempty"`
	MinLevel     int           `yaml:"minLevel,omitempty" json:"minLevel,omitempty"`
	Consequences []Consequence `yaml:"consequences,omitempty" json:"consequences,omitempty"`
}

// FriendUpgradeDef is a staged identity change unlocked by player level.
// Empty fields leave the friend's current value in place.
type FriendUpgradeDef struct {
	FirstName   string `yaml:"firstName,omitempty" json:"firstName,omitempty"`
	LastName    string `yaml:"lastName,omitempty" json:"lastName,omitempty"`
	Portrait    string `yaml:"portrait,omitempty" json:"portrait,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// SendMessage optionally pushes a message when the upgrade lands.
	SendMessage *int `yaml:"sendMessage,omitempty" json:"sendMessage,omitempty"`
}

// QuizQuestion is one entry of the quiz bank.
type QuizQuestion struct {
	Text       string   `yaml:"text"`
	Category   string   `yaml:"category"`
	Answers    []string `yaml:"answers"`
	Correct    int      `yaml:"correct"`
	Experience int      `yaml:"experience"`
}

// LoadContent reads and validates a catalog from a YAML file.
func LoadContent(path string) (*Content, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	var c Content
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// FriendDef looks up a friend definition by last name.
func (c *Content) FriendDef(id string) (FriendDef, bool) {
	for _, def := range c.Friends {
		if def.LastName == id {
			return def, true
		}
	}
	return FriendDef{}, false
}

// Validate rejects structurally broken catalogs before the engine runs.
// Runtime lookups degrade to no-ops, so everything that can be caught here
// must be.
func (c *Content) Validate() error {
	seen := make(map[string]bool, len(c.Friends))
	for i, def := range c.Friends {
		if def.LastName == "" {
			return fmt.Errorf("friend %d: missing last name", i)
		}
		if seen[def.LastName] {
			return fmt.Errorf("friend %q: duplicate last name", def.LastName)
		}
		seen[def.LastName] = true
		if err := def.validate(); err != nil {
			return fmt.Errorf("friend %q: %w", def.LastName, err)
		}
	}
	for i, q := range c.Quiz {
		if q.Text == "" || len(q.Answers) < 2 {
			return fmt.Errorf("quiz %d: needs text and at least two answers", i)
		}
		if q.Correct < 0 || q.Correct >= len(q.Answers) {
			return fmt.Errorf("quiz %d: correct answer out of range", i)
		}
	}
	for i, p := range c.Player.Powers {
		if err := p.validate(); err != nil {
			return fmt.Errorf("player power %d: %w", i, err)
		}
	}
	return nil
}

func (d FriendDef) validate() error {
	if d.Loyalty < 0 || d.Loyalty > 100 {
		return fmt.Errorf("loyalty %d out of range", d.Loyalty)
	}
	for id, msg := range d.Messages {
		if len(msg.Lines) == 0 {
			return fmt.Errorf("message %d: no lines", id)
		}
		for j, ch := range msg.Choices {
			if err := d.validateChoice(ch); err != nil {
				return fmt.Errorf("message %d choice %d: %w", id, j, err)
			}
		}
		for j, cons := range msg.Consequences {
			if err := cons.validate(); err != nil {
				return fmt.Errorf("message %d consequence %d: %w", id, j, err)
			}
		}
	}
	if d.Start.Message != nil {
		if _, ok := d.Messages[*d.Start.Message]; !ok {
			return fmt.Errorf("start message %d not in catalog", *d.Start.Message)
		}
	}
	for _, ch := range d.Start.Choices {
		if err := d.validateChoice(ch); err != nil {
			return fmt.Errorf("start choice: %w", err)
		}
	}
	for level, up := range d.Upgrades {
		if up.SendMessage != nil {
			if _, ok := d.Messages[*up.SendMessage]; !ok {
				return fmt.Errorf("upgrade %d: message %d not in catalog", level, *up.SendMessage)
			}
		}
	}
	for i, p := range d.Powers {
		if err := p.validate(); err != nil {
			return fmt.Errorf("power %d: %w", i, err)
		}
	}
	return nil
}

func (d FriendDef) validateChoice(ch ChoiceDef) error {
	if len(ch.Lines) == 0 {
		return fmt.Errorf("no lines")
	}
	if ch.Next != nil {
		if _, ok := d.Messages[*ch.Next]; !ok {
			return fmt.Errorf("next message %d not in catalog", *ch.Next)
		}
	}
	for j, cons := range ch.Consequences {
		if err := cons.validate(); err != nil {
			return fmt.Errorf("consequence %d: %w", j, err)
		}
	}
	return nil
}

func (p PowerDef) validate() error {
	if p.Name == "" {
		return fmt.Errorf("missing name")
	}
	if p.Interval < 0 {
		return fmt.Errorf("negative interval")
	}
	if p.Cost < 0 {
		return fmt.Errorf("negative cost")
	}
	switch p.Effect {
	case EffectLevel, EffectSupport, EffectCurrency, EffectLoyalty, EffectOther:
	default:
		return fmt.Errorf("unknown effect kind %q", p.Effect)
	}
	for i, up := range p.Upgrades {
		if err := up.validate(); err != nil {
			return fmt.Errorf("upgrade %d: %w", i, err)
		}
	}
	return nil
}
