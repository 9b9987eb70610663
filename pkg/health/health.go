// Package health provides liveness and readiness probe endpoints backed by
// periodically evaluated checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type kind int

const (
	kindLiveness kind = iota
	kindReadiness
)

// check holds one registered probe and its last observed result.
type check struct {
	name    string
	kind    kind
	timeout time.Duration
	fn      CheckFunc

	failed  atomic.Bool
	lastErr atomic.Pointer[error]
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(ctx)
	c.failed.Store(err != nil)
	if err != nil {
		c.lastErr.Store(&err)
	}
}

// Service evaluates registered checks on an interval and serves probe
// endpoints from the cached results, so probes never block on a slow
// dependency.
type Service struct {
	mu     sync.Mutex
	checks []*check

	ready  atomic.Bool
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a Service with no checks and readiness false.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a check gating /livez.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.add(&check{name: name, kind: kindLiveness, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a check gating /readyz.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.add(&check{name: name, kind: kindReadiness, timeout: timeout, fn: fn})
}

func (s *Service) add(c *check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, c)
}

// Start begins evaluating checks every interval until ctx is cancelled or
// Stop is called. Checks are evaluated once immediately.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.runAll(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runAll(ctx)
			}
		}
	}()
}

// Stop halts check evaluation and waits for the loop to exit.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

// SetReady flips the administrative readiness gate, used to drain traffic
// before shutdown independently of check results.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Service) runAll(ctx context.Context) {
	s.mu.Lock()
	checks := append([]*check(nil), s.checks...)
	s.mu.Unlock()

	for _, c := range checks {
		c.run(ctx)
	}
}

// LiveEndpoint serves the liveness probe.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.serve(w, kindLiveness, true)
}

// ReadyEndpoint serves the readiness probe. It fails while the
// administrative gate is down, whatever the checks say.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.serve(w, kindReadiness, s.ready.Load())
}

func (s *Service) serve(w http.ResponseWriter, k kind, gate bool) {
	s.mu.Lock()
	checks := append([]*check(nil), s.checks...)
	s.mu.Unlock()

	healthy := gate
	results := make(map[string]string, len(checks))
	for _, c := range checks {
		if c.kind != k {
			continue
		}
		if c.failed.Load() {
			healthy = false
			msg := "failed"
			if p := c.lastErr.Load(); p != nil {
				msg = (*p).Error()
			}
			results[c.name] = msg
		} else {
			results[c.name] = "ok"
		}
	}

	status := http.StatusOK
	text := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		text = "unavailable"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": text,
		"checks": results,
	})
}
