package metrics

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// SourceStats counts lines of one input source.
type SourceStats struct {
	read     atomic.Int64
	accepted atomic.Int64
	skipped  atomic.Int64
}

func (s *SourceStats) LineRead()     { s.read.Add(1) }
func (s *SourceStats) LineAccepted() { s.accepted.Add(1) }
func (s *SourceStats) LineSkipped()  { s.skipped.Add(1) }

func (s *SourceStats) Read() int64     { return s.read.Load() }
func (s *SourceStats) Accepted() int64 { return s.accepted.Load() }
func (s *SourceStats) Skipped() int64  { return s.skipped.Load() }

// Collector gathers counters for one generator run. Safe for concurrent use.
type Collector struct {
	recordsWritten atomic.Int64

	mu      sync.Mutex
	sources map[string]*SourceStats

	startTime time.Time
}

func NewCollector() *Collector {
	return &Collector{
		sources:   make(map[string]*SourceStats),
		startTime: time.Now(),
	}
}

// Source returns the counters for the named source, creating them on first use.
func (c *Collector) Source(name string) *SourceStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sources[name]
	if !ok {
		s = &SourceStats{}
		c.sources[name] = s
	}
	return s
}

func (c *Collector) RecordWritten()        { c.recordsWritten.Add(1) }
func (c *Collector) RecordsWritten() int64 { return c.recordsWritten.Load() }

type SourceSnapshot struct {
	Read     int64 `json:"read"`
	Accepted int64 `json:"accepted"`
	Skipped  int64 `json:"skipped"`
}

type Snapshot struct {
	Sources        map[string]SourceSnapshot `json:"sources"`
	RecordsWritten int64                     `json:"records_written"`
	Elapsed        string                    `json:"elapsed"`
}

// Snapshot returns a point-in-time copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Sources:        make(map[string]SourceSnapshot, len(c.sources)),
		RecordsWritten: c.recordsWritten.Load(),
		Elapsed:        time.Since(c.startTime).Round(time.Millisecond).String(),
	}
	for name, s := range c.sources {
		snap.Sources[name] = SourceSnapshot{Read: s.Read(), Accepted: s.Accepted(), Skipped: s.Skipped()}
	}
	return snap
}

func (c *Collector) JSON() ([]byte, error) {
	return json.MarshalIndent(c.Snapshot(), "", "  ")
}

// LogSummary writes one info line per source plus the record total.
func (c *Collector) LogSummary(logger *slog.Logger) {
	snap := c.Snapshot()
	names := make([]string, 0, len(snap.Sources))
	for name := range snap.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := snap.Sources[name]
		logger.Info("Source processed", "source", name, "read", s.Read, "accepted", s.Accepted, "skipped", s.Skipped)
	}
	logger.Info("Run finished", "records", snap.RecordsWritten, "elapsed", snap.Elapsed)
}
