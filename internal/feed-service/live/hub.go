package live

import (
	"context"
	"sync"
)

// Hub conhece as sessões abertas e repassa anúncios de mutação para todas
type Hub struct {
	mu       sync.RWMutex
	sessions map[*Session]struct{}
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[*Session]struct{})}
}

// Register devolve a função que remove a sessão
func (h *Hub) Register(s *Session) func() {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.sessions, s)
		h.mu.Unlock()
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast pede recarga a todas as sessões
func (h *Hub) Broadcast() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions {
		s.Refresh()
	}
}

// Announce implementa Announcer para o modo sem Redis (uma instância só)
func (h *Hub) Announce(context.Context) error {
	h.Broadcast()
	return nil
}
