package notify

import "context"

// Event describes a freshly submitted review. ItemName is empty for
// cafe-level reviews.
type Event struct {
	ID       string
	CafeName string
	ItemName string
	Rating   int
	Comment  string
}

// Notifier defines the interface for publishing review alerts.
// This abstraction allows swapping the log mock with a real email sender
// without refactoring.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}
