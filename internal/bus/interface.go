package bus

import (
	"context"
	"io"
	"log"
)

// ActivityMessage is one CRM activity record published to the activity
// stream: a company created or updated, a follow-up created, closed or
// rescheduled. Supervisors tail this stream with the `watch` command.
type ActivityMessage struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"` // company.created, company.updated, followup.created, followup.updated, import.batch
	CompanyID  int64  `json:"company_id,omitempty"`
	FollowUpID int64  `json:"followup_id,omitempty"`
	UserID     int64  `json:"user_id,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// Bus defines the interface for activity stream implementations
type Bus interface {
	// PublishActivity publishes an activity record to the stream
	PublishActivity(ctx context.Context, msg ActivityMessage) error

	// ReadActivityStream reads activity records as they arrive, invoking
	// handler for each. Blocks until ctx is cancelled.
	ReadActivityStream(ctx context.Context, group, consumer string, handler func(ctx context.Context, msg ActivityMessage) error) error

	// HealthCheck performs a health check on the bus connection
	HealthCheck(ctx context.Context) error

	// Close closes the bus connection
	Close() error
}

// NewBus creates a new bus instance based on the Redis URL.
// If redisURL is empty or unreachable, returns a NullBus.
func NewBus(redisURL string, logger *log.Logger) Bus {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if redisURL == "" {
		return NewNullBus(logger)
	}

	if redisBus, err := NewRedisBus(redisURL, logger); err == nil {
		return redisBus
	}

	// Fall back to null bus if Redis fails
	return NewNullBus(logger)
}
