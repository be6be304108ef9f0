package search

import "time"

// Mode selects the sequential or parallel searcher.
type Mode int

const (
	SEQ Mode = iota
	PAR
)

func (m Mode) String() string {
	if m == PAR {
		return "PAR"
	}
	return "SEQ"
}

// Constraints bounds one call to Search. TimeLimit of 0 means unbounded.
type Constraints struct {
	DepthLimit int
	TimeLimit  time.Duration
	Mode       Mode
}

// IterationRecord captures telemetry for one completed iterative-deepening
// depth.
type IterationRecord struct {
	Depth              int
	Nodes              int64
	Cutoffs            int64
	TTHits             int64
	TTStores           int64
	PVResearches       int64
	MaxActiveTasks     int64
	Elapsed            time.Duration
	PrincipalVariation []int
	Warning            string
}

// Result is the outcome of a Search call.
type Result struct {
	Move           int
	DepthEvaluated int
	VisitedNodes   int64
	TimedOut       bool
	Telemetry      []IterationRecord
}
