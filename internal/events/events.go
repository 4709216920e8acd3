// Package events publishes reservation lifecycle events to a message
// broker. Publishing is strictly best-effort: the API never fails a request
// because a broker was unreachable.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bookline/apiserver/types"
)

// Channel is the queue/topic every reservation event goes to.
const Channel = "reservation-events"

// Action identifies what happened to a reservation.
type Action string

const (
	ActionCreated Action = "reservation.created"
	ActionUpdated Action = "reservation.updated"
	ActionDeleted Action = "reservation.deleted"
)

// ReservationEvent is the payload published for each lifecycle change.
// For deletions the Reservation carries the last state before removal.
type ReservationEvent struct {
	Action      Action            `json:"action"`
	Reservation types.Reservation `json:"reservation"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// Publisher sends reservation events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event ReservationEvent) (string, error)
	Close() error
}

func encode(event ReservationEvent) ([]byte, map[string]string, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	attrs := map[string]string{"action": string(event.Action)}
	return data, attrs, nil
}
