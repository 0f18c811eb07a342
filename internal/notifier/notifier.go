// Package notifier bridges domain events to the background notification
// queue. Actual delivery (email, in-app feed) is owned by external
// collaborators; this dispatcher only hands them structured jobs.
package notifier

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joyworks/workshop-api/internal/events"
	"github.com/joyworks/workshop-api/pkg/config"
	"github.com/joyworks/workshop-api/pkg/jobs"
)

// Notifier consumes lifecycle events and enqueues notification jobs.
type Notifier struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// New constructs a Notifier with its own worker queue.
func New(cfg config.NotificationsConfig, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Notifier{logger: logger}
	n.queue = jobs.NewQueue("notifications", n.deliver, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return n
}

// Start begins queue consumption and subscribes to the bus.
func (n *Notifier) Start(ctx context.Context, bus *events.Bus) {
	n.queue.Start(ctx)
	bus.Subscribe(n.onEvent,
		events.TypeRegistrationBooked,
		events.TypeRegistrationCancelled,
		events.TypeAttendanceRecorded,
		events.TypeCertificateIssued,
		events.TypeRewardIssued,
	)
}

// Stop drains the queue workers.
func (n *Notifier) Stop() {
	n.queue.Stop()
}

func (n *Notifier) onEvent(event events.Event) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(event.Type),
		Payload: event,
	}
	if err := n.queue.Enqueue(job); err != nil {
		n.logger.Warn("failed to enqueue notification", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func (n *Notifier) deliver(_ context.Context, job jobs.Job) error {
	event, ok := job.Payload.(events.Event)
	if !ok {
		n.logger.Warn("notification job with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	// Delivery target integration point. For now the dispatch is logged;
	// outbound channels plug in here without touching the lifecycle core.
	n.logger.Sugar().Infow("notification dispatched",
		"job_id", job.ID,
		"event", string(event.Type),
		"workshop_id", event.WorkshopID,
		"participant_id", event.ParticipantID,
	)
	return nil
}
