package health

import "context"

// DBPinger checks search backend availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks a remote provider (embedding or chat completion).
type Checker interface {
	HealthCheck(ctx context.Context) error
}
