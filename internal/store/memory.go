package store

import (
	"context"
	"sync"

	"github.com/susu3304/pairbot/internal/pairing"
)

// Memory keeps encoded records in process memory.
type Memory struct {
	mu        sync.RWMutex
	histories map[string][]byte
	rounds    map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		histories: make(map[string][]byte),
		rounds:    make(map[string][]byte),
	}
}

func (m *Memory) LoadHistory(ctx context.Context, scope string) (*pairing.History, error) {
	m.mu.RLock()
	data, ok := m.histories[scope]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return DecodeHistory(scope, data)
}

func (m *Memory) SaveHistory(ctx context.Context, scope string, h *pairing.History) error {
	data, err := EncodeHistory(h)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histories[scope] = data
	return nil
}

func (m *Memory) LoadRound(ctx context.Context, scope string) (*pairing.Round, error) {
	m.mu.RLock()
	data, ok := m.rounds[scope]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return DecodeRound(scope, data)
}

func (m *Memory) SaveRound(ctx context.Context, scope string, r *pairing.Round) error {
	data, err := EncodeRound(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[scope] = data
	return nil
}

// SaveRoundState swaps in both records under one lock.
func (m *Memory) SaveRoundState(ctx context.Context, scope string, h *pairing.History, r *pairing.Round) error {
	hist, err := EncodeHistory(h)
	if err != nil {
		return err
	}
	round, err := EncodeRound(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histories[scope] = hist
	m.rounds[scope] = round
	return nil
}

// PutRaw stores already-encoded records as-is. A nil slice leaves that record alone.
func (m *Memory) PutRaw(scope string, history, round []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if history != nil {
		m.histories[scope] = history
	}
	if round != nil {
		m.rounds[scope] = round
	}
}

var (
	_ Store      = (*Memory)(nil)
	_ StateSaver = (*Memory)(nil)
)
