package verification

import "context"

// StatusPublisher emits verification status events. Publication is
// best-effort: the engine logs failures and keeps serving.
type StatusPublisher interface {
	Publish(ctx context.Context, event StatusEvent) error
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, StatusEvent) error { return nil }
