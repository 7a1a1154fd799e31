package recorder

import "time"

// NoopRecorder is used when metrics are not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordProvider(_, _ string)           {}
func (n *NoopRecorder) RecordCandidate(_ string)             {}
func (n *NoopRecorder) RecordRefresh(_ int, _ time.Duration) {}
func (n *NoopRecorder) Close() error                         { return nil }
