package notify

import (
	"context"
	"log"
)

// LogNotifier implements Notifier by logging events to stdout. Used whenever
// email alerting is not configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Publish(ctx context.Context, event Event) error {
	target := event.CafeName
	if event.ItemName != "" {
		target = event.ItemName + " @ " + event.CafeName
	}
	log.Printf("📨 [Notify] New review %s: %s rated %d, comment %q", event.ID, target, event.Rating, event.Comment)
	return nil
}
