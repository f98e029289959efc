package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventPostingSubmitted   EventType = "posting.submitted"
	EventEvaluationDecided  EventType = "evaluation.decided"
	EventApplicationCreated EventType = "application.created"
)

// Event is a workflow fact handed to notification collaborators after the
// transaction that produced it has committed.
type Event struct {
	Type          EventType  `json:"type"`
	PostingID     uuid.UUID  `json:"posting_id"`
	PostingTitle  string     `json:"posting_title,omitempty"`
	CompanyID     uuid.UUID  `json:"company_id"`
	ActorID       uuid.UUID  `json:"actor_id"`
	ApplicationID *uuid.UUID `json:"application_id,omitempty"`
	Outcome       string     `json:"outcome,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// Notifier delivers events best-effort. Failures are reported to the caller
// for logging and never undo the workflow change.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}
