package smt

// monitor.go: statistics for satisfiability checks

import (
	"fmt"
	"sync"
	"time"
)

// SolverStats holds statistics about a Solver's lifetime.
type SolverStats struct {
	// Term statistics
	Variables int // Declared variable bits
	Clauses   int // Clauses taught to the backend

	// Check statistics
	Checks    int           // Calls to Check
	Sat       int           // Checks answered sat
	Unsat     int           // Checks answered unsat
	Unknown   int           // Checks stopped without an answer
	CheckTime time.Duration // Time spent inside the backend
	LastCheck time.Duration // Duration of the most recent check
	MaxScope  int           // Deepest scope stack seen
}

// String returns a one-line summary.
func (s SolverStats) String() string {
	return fmt.Sprintf("checks=%d sat=%d unsat=%d unknown=%d vars=%d clauses=%d time=%v",
		s.Checks, s.Sat, s.Unsat, s.Unknown, s.Variables, s.Clauses, s.CheckTime)
}

// SolverMonitor accumulates SolverStats.
type SolverMonitor struct {
	mu    sync.Mutex
	stats SolverStats
}

// NewSolverMonitor creates a new solver monitor
func NewSolverMonitor() *SolverMonitor {
	return &SolverMonitor{}
}

// GetStats returns a copy of the current statistics
func (m *SolverMonitor) GetStats() SolverStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// RecordVariable records declaring a variable of the given width
func (m *SolverMonitor) RecordVariable(width int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Variables += width
}

// RecordClause records teaching one clause to the backend
func (m *SolverMonitor) RecordClause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Clauses++
}

// RecordScope records the current scope depth
func (m *SolverMonitor) RecordScope(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if depth > m.stats.MaxScope {
		m.stats.MaxScope = depth
	}
}

// RecordCheck records the outcome and duration of one check
func (m *SolverMonitor) RecordCheck(status Status, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Checks++
	m.stats.CheckTime += elapsed
	m.stats.LastCheck = elapsed
	switch status {
	case Sat:
		m.stats.Sat++
	case Unsat:
		m.stats.Unsat++
	default:
		m.stats.Unknown++
	}
}
