package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/resend/resend-go/v2"
)

// EmailNotifier sends review alerts through Resend to a configured address
// (typically the directory admin).
type EmailNotifier struct {
	client *resend.Client
	from   string
	to     string
}

func NewEmailNotifier(apiKey, from, to string) *EmailNotifier {
	return &EmailNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

func (n *EmailNotifier) Publish(ctx context.Context, event Event) error {
	target := event.CafeName
	if event.ItemName != "" {
		target = fmt.Sprintf("%s (%s)", event.ItemName, event.CafeName)
	}
	stars := strings.Repeat("⭐", event.Rating)

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: fmt.Sprintf("New review for %s", target),
		Html: fmt.Sprintf(`
			<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
				<h2 style="color: #333;">New review for %s</h2>
				<p>Rating: %s</p>
				<p style="color: #555;">%s</p>
				<p style="color: #aaa; font-size: 12px;">Event %s</p>
			</div>
		`, target, stars, event.Comment, event.ID),
	}

	sent, err := n.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send review alert: %w", err)
	}
	log.Printf("📧 Review alert sent (ID: %s)", sent.Id)
	return nil
}
