package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Algorithm    string
	Duration     time.Duration
	Iterations   int // Configured budget
	Episodes     int // Completed iterations
	FullPlayouts int
	Nodes        int
	Cancelled    bool
}

type MoveMetric struct {
	Step   int
	Player int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	Winner         int // -1 for a draw
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
	Fallbacks      int // Moves the engine had to pick for an agent
}

type Collector interface {
	Start(algorithm string, iterations int)
	SetCancelled(value bool)
	AddNode()
	AddFullPlayout()
	AddEpisode()
	Complete() SearchMetric
}

type collector struct {
	algorithm    string
	iterations   int
	startTime    time.Time
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
	nodes        atomic.Int32
	cancelled    atomic.Bool
}

// NewCollector returns a collector that can be reused across searches, each
// Start resets the counters.
func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetCancelled(value bool) {
	m.cancelled.Store(value)
}

func (m *collector) Start(algorithm string, iterations int) {
	m.startTime = time.Now()
	m.algorithm = algorithm
	m.iterations = iterations
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
	m.nodes.Store(0)
	m.cancelled.Store(false)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Algorithm:    m.algorithm,
		Duration:     time.Since(m.startTime),
		Iterations:   m.iterations,
		Episodes:     int(m.episodes.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Nodes:        int(m.nodes.Load()),
		Cancelled:    m.cancelled.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(algorithm string, iterations int) {}
func (m *dummyCollector) SetCancelled(value bool)                {}
func (m *dummyCollector) AddNode()                               {}
func (m *dummyCollector) AddFullPlayout()                        {}
func (m *dummyCollector) AddEpisode()                            {}
func (m *dummyCollector) Complete() SearchMetric                 { return SearchMetric{} }
