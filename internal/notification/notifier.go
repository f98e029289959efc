// Package notification delivers workflow events best-effort. Events are
// handed over after the workflow transaction commits and delivered by a
// Dispatcher off the request path; failures never undo a state change.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/pkg/email"

	"github.com/redis/go-redis/v9"
)

// Noop drops every event.
type Noop struct{}

func (Noop) Notify(context.Context, domain.Event) error { return nil }

// Multi fans an event out to every notifier and joins their errors.
type Multi []domain.Notifier

func (m Multi) Notify(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RedisPublisher publishes events as JSON on a pub/sub channel.
type RedisPublisher struct {
	client  redis.Cmdable
	channel string
}

func NewRedisPublisher(client redis.Cmdable, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Notify(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// Mailer sends a rendered e-mail; *email.EmailService satisfies it.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

// EmailNotifier mails a summary of each event to a fixed address (the
// review team inbox).
type EmailNotifier struct {
	mailer Mailer
	to     string
}

func NewEmailNotifier(mailer Mailer, to string) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, to: to}
}

func (n *EmailNotifier) Notify(ctx context.Context, event domain.Event) error {
	title, lines := describe(event)
	msg, err := email.Render(n.to, title, lines)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, msg)
}

func describe(event domain.Event) (string, []string) {
	lines := []string{
		fmt.Sprintf("Vaga: %s (%s)", event.PostingTitle, event.PostingID),
		fmt.Sprintf("Data: %s", event.OccurredAt.Format("02/01/2006 15:04")),
	}
	switch event.Type {
	case domain.EventPostingSubmitted:
		return "Nova vaga aguardando avaliação médica", lines
	case domain.EventEvaluationDecided:
		return "Avaliação médica concluída", append(lines, "Resultado: "+outcomeLabel(event.Outcome))
	case domain.EventApplicationCreated:
		if event.ApplicationID != nil {
			lines = append(lines, "Candidatura: "+event.ApplicationID.String())
		}
		return "Nova candidatura recebida", lines
	}
	return string(event.Type), lines
}

func outcomeLabel(outcome string) string {
	switch domain.EvaluationStatus(outcome) {
	case domain.EvaluationStatusApproved:
		return "aprovada"
	case domain.EvaluationStatusRejected:
		return "rejeitada"
	case domain.EvaluationStatusAdjustmentsNeeded:
		return "ajustes necessários"
	}
	return outcome
}
