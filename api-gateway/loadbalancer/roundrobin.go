package loadbalancer

import (
	"sync"

	"github.com/esouk/onboarding/pkg/logger"
)

// RoundRobin hands out upstream instances in turn
type RoundRobin struct {
	servers []string
	current int
	mu      sync.Mutex
}

// NewRoundRobin creates a balancer over servers
func NewRoundRobin(service string, servers []string) *RoundRobin {
	logger.Logger.Info().
		Str("service", service).
		Strs("servers", servers).
		Msg("Round-robin load balancer initialized")

	return &RoundRobin{servers: append([]string(nil), servers...)}
}

// Next returns the next instance, or "" when the pool is empty
func (rr *RoundRobin) Next() string {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if len(rr.servers) == 0 {
		return ""
	}

	server := rr.servers[rr.current]
	rr.current = (rr.current + 1) % len(rr.servers)
	return server
}

// Servers returns a copy of the pool
func (rr *RoundRobin) Servers() []string {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return append([]string(nil), rr.servers...)
}

// Stats is reported on the gateway overview
type Stats struct {
	Algorithm    string   `json:"algorithm"`
	Servers      []string `json:"servers"`
	CurrentIndex int      `json:"current_index"`
}

func (rr *RoundRobin) Stats() Stats {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	return Stats{
		Algorithm:    "round-robin",
		Servers:      append([]string(nil), rr.servers...),
		CurrentIndex: rr.current,
	}
}
