package ports

import "time"

const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport_error"
	OutcomeRejected  = "rejected"
	OutcomeStale     = "stale"
	OutcomeConfig    = "not_configured"
)

type Metrics interface {
	ObserveFetch(outcome string, elapsed time.Duration)
	ObserveSubmit(action string, outcome string, elapsed time.Duration)
	SetSequence(seq uint64)
}

type NopMetrics struct{}

func (NopMetrics) ObserveFetch(string, time.Duration) {}
func (NopMetrics) ObserveSubmit(string, string, time.Duration) {}
func (NopMetrics) SetSequence(uint64) {}
