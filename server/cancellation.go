package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/felixgeelhaar/lsp-go/middleware"
)

// CancelParams is the payload of the $/cancelRequest notification.
// The id matches the id of the request to cancel.
type CancelParams struct {
	ID json.RawMessage `json:"id"`
}

// CancellationManager tracks in-flight requests and cancels them by id.
// Each tracked request also carries a sequence number, so a misbehaving
// client reusing an id within a batch cancels both requests rather than
// silently orphaning one.
type CancellationManager struct {
	mu       sync.RWMutex
	nextSeq  uint64
	requests map[string]map[uint64]context.CancelFunc
}

// NewCancellationManager creates a new cancellation manager.
func NewCancellationManager() *CancellationManager {
	return &CancellationManager{
		requests: make(map[string]map[uint64]context.CancelFunc),
	}
}

// Track starts tracking a request for potential cancellation. The request
// id is keyed by its raw JSON text, so numeric and string ids never
// collide. The returned function cancels the context and stops tracking;
// call it when the request completes.
func (m *CancellationManager) Track(ctx context.Context, requestID string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.nextSeq++
	seq := m.nextSeq
	entries := m.requests[requestID]
	if entries == nil {
		entries = make(map[uint64]context.CancelFunc)
		m.requests[requestID] = entries
	}
	entries[seq] = cancel
	m.mu.Unlock()

	return ctx, func() {
		cancel()
		m.mu.Lock()
		if entries, ok := m.requests[requestID]; ok {
			delete(entries, seq)
			if len(entries) == 0 {
				delete(m.requests, requestID)
			}
		}
		m.mu.Unlock()
	}
}

// Cancel cancels every tracked request with the given id.
// Returns true if at least one request was found and cancelled.
func (m *CancellationManager) Cancel(requestID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.requests[requestID]
	if !ok {
		return false
	}
	for _, cancel := range entries {
		cancel()
	}
	delete(m.requests, requestID)
	return true
}

// ActiveRequests returns the number of currently tracked requests.
func (m *CancellationManager) ActiveRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, entries := range m.requests {
		n += len(entries)
	}
	return n
}

// handleCancelRequest honors a $/cancelRequest notification. Cancelling an
// unknown or already-completed request is not an error.
func (s *Server) handleCancelRequest(params json.RawMessage) {
	var p CancelParams
	if err := json.Unmarshal(params, &p); err != nil || len(p.ID) == 0 {
		s.logger.Debug("malformed cancel request", middleware.F("params", string(params)))
		return
	}
	s.cancellations.Cancel(string(p.ID))
}
