package provider

import (
	"errors"
	"sync"
	"time"
)

// HealthStatus is the rolling outcome of calls to one provider.
type HealthStatus struct {
	LastSuccess       *time.Time `json:"lastSuccess"`
	LastError         *time.Time `json:"lastError"`
	ConsecutiveErrors int        `json:"consecutiveErrors"`
	LastErrorMessage  string     `json:"lastErrorMessage,omitempty"`
}

// Health counts provider outcomes for the diagnostics endpoint. It never
// influences which provider is tried. A nil *Health ignores records.
type Health struct {
	mu       sync.Mutex
	statuses map[string]*HealthStatus
	now      func() time.Time
}

func NewHealth() *Health {
	return &Health{statuses: make(map[string]*HealthStatus), now: time.Now}
}

func (h *Health) Record(provider string, err error) {
	if h == nil || errors.Is(err, ErrNotConfigured) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	st, ok := h.statuses[provider]
	if !ok {
		st = &HealthStatus{}
		h.statuses[provider] = st
	}
	now := h.now().UTC()
	if err == nil {
		st.LastSuccess = &now
		st.ConsecutiveErrors = 0
		return
	}
	st.LastError = &now
	st.ConsecutiveErrors++
	st.LastErrorMessage = sanitizeText(err.Error(), 200)
}

// Snapshot returns a copy safe to serialize.
func (h *Health) Snapshot() map[string]HealthStatus {
	out := make(map[string]HealthStatus)
	if h == nil {
		return out
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, st := range h.statuses {
		out[name] = *st
	}
	return out
}
