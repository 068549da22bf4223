package pipeline

import "time"

// ItemOutcome is the terminal state of one asset within a batch run.
type ItemOutcome string

const (
	OutcomeSucceeded ItemOutcome = "succeeded"
	OutcomeFailed    ItemOutcome = "failed"
	OutcomeSkipped   ItemOutcome = "skipped"
)

// ItemResult records how a single asset fared during a batch stage.
type ItemResult struct {
	Key     string
	Outcome ItemOutcome
	Detail  string
}

// RunSummary aggregates per-asset outcomes for one batch invocation.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  int
	Failed     int
	Skipped    int
	Items      []ItemResult
}

// Record appends an item result and bumps the matching counter.
func (s *RunSummary) Record(key string, outcome ItemOutcome, detail string) {
	s.Items = append(s.Items, ItemResult{Key: key, Outcome: outcome, Detail: detail})
	switch outcome {
	case OutcomeSucceeded:
		s.Succeeded++
	case OutcomeFailed:
		s.Failed++
	case OutcomeSkipped:
		s.Skipped++
	}
}

// Total returns the number of assets considered by the run.
func (s *RunSummary) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}
