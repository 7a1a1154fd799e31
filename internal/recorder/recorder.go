package recorder

import "time"

// Provider call outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
	OutcomeFallback  = "fallback"
)

// Candidate outcomes during a refresh.
const (
	CandidateAccepted      = "accepted"
	CandidateLowConfidence = "low_confidence"
	CandidateNoData        = "no_data"
	CandidateError         = "error"
)

// Recorder collects operational counters for the recommendation pipeline.
// Nothing is written to disk; implementations only keep process-local metrics.
type Recorder interface {
	RecordProvider(provider, outcome string)
	RecordCandidate(outcome string)
	RecordRefresh(size int, elapsed time.Duration)
	Close() error
}
