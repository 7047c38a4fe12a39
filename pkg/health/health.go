package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Name     string                 `json:"name"`
	Status   Status                 `json:"status"`
	Message  string                 `json:"message,omitempty"`
	Duration time.Duration          `json:"duration"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Report is the aggregated health of the process
type Report struct {
	Status     Status            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime"`
	Components []ComponentHealth `json:"components"`
}

// CheckFunc inspects one component.
type CheckFunc func(ctx context.Context) ComponentHealth

// Manager runs the registered checks
type Manager struct {
	mu        sync.RWMutex
	checks    map[string]CheckFunc
	startTime time.Time
	version   string
	timeout   time.Duration
}

func NewManager(version string, timeout time.Duration) *Manager {
	return &Manager{
		checks:    make(map[string]CheckFunc),
		startTime: time.Now(),
		version:   version,
		timeout:   timeout,
	}
}

// Register adds or replaces a named check.
func (m *Manager) Register(name string, fn CheckFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = fn
}

// Check runs every check concurrently with the manager's timeout.
// Overall status is the worst component status.
func (m *Manager) Check(ctx context.Context) Report {
	m.mu.RLock()
	names := make([]string, 0, len(m.checks))
	for n := range m.checks {
		names = append(names, n)
	}
	checks := make(map[string]CheckFunc, len(m.checks))
	for n, fn := range m.checks {
		checks[n] = fn
	}
	m.mu.RUnlock()
	sort.Strings(names)

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	results := make([]ComponentHealth, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			start := time.Now()
			res := checks[name](ctx)
			res.Name = name
			res.Duration = time.Since(start)
			if ctx.Err() != nil && res.Status == "" {
				res.Status = StatusUnhealthy
				res.Message = "check timed out"
			}
			results[i] = res
		}(i, name)
	}
	wg.Wait()

	overall := StatusHealthy
	for _, r := range results {
		switch r.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}

	return Report{
		Status:     overall,
		Timestamp:  time.Now().UTC(),
		Version:    m.version,
		Uptime:     time.Since(m.startTime).Round(time.Second).String(),
		Components: results,
	}
}

// Handler serves the report as JSON; unhealthy maps to 503.
func (m *Manager) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := m.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if rep.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(rep)
	}
}
