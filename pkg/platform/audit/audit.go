// Package audit captures the security- and compliance-relevant actions of
// the storefront domain. Services emit Events through a Publisher; sinks
// (the in-process worker, the Kafka publisher) fan them out to stores and
// external consumers.
package audit

import "context"

// Publisher emits audit events for security-relevant operations.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
