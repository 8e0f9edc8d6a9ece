package save

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"soviet/internal/game"
)

// Memory keeps the snapshot in process memory. It backs tests and games
// played without a save path, and round-trips through the same JSON encoding
// as the sqlite store so both exercise identical serialization.
type Memory struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(_ context.Context, p *game.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

func (m *Memory) Load(_ context.Context) (*game.Player, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, false, nil
	}
	var p game.Player
	if err := json.Unmarshal(m.data, &p); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return &p, true, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}
