package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

type workshopCapacityReader interface {
	FindByID(ctx context.Context, id string) (*models.Workshop, error)
}

type seatedCounter interface {
	CountSeated(ctx context.Context, workshopID string) (int, error)
}

// CapacityLedger enforces the per-workshop seat cap. The admission check
// and the increment happen under a per-workshop mutex so concurrent
// booking attempts for the same workshop serialize while unrelated
// workshops never block each other.
type CapacityLedger struct {
	workshops     workshopCapacityReader
	registrations seatedCounter
	logger        *zap.Logger

	mu      sync.Mutex
	entries map[string]*seatEntry
}

type seatEntry struct {
	mu       sync.Mutex
	loaded   bool
	capacity int
	seated   int
}

// NewCapacityLedger constructs the ledger.
func NewCapacityLedger(workshops workshopCapacityReader, registrations seatedCounter, logger *zap.Logger) *CapacityLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CapacityLedger{
		workshops:     workshops,
		registrations: registrations,
		logger:        logger,
		entries:       make(map[string]*seatEntry),
	}
}

// Reservation is a seat held by a successful TryReserve. The holder must
// either persist the registration and leave the seat occupied, or call
// Rollback to return it. Rollback is safe to call more than once.
type Reservation struct {
	WorkshopID string

	ledger *CapacityLedger
	once   sync.Once
}

// Rollback returns the reserved seat. Used as the compensating action
// when the registration write fails after the reservation succeeded.
func (r *Reservation) Rollback() {
	r.once.Do(func() {
		r.ledger.Release(r.WorkshopID)
	})
}

func (l *CapacityLedger) entry(workshopID string) *seatEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[workshopID]
	if !ok {
		e = &seatEntry{}
		l.entries[workshopID] = e
	}
	return e
}

func (l *CapacityLedger) load(ctx context.Context, workshopID string, e *seatEntry) error {
	if e.loaded {
		return nil
	}
	workshop, err := l.workshops.FindByID(ctx, workshopID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load workshop capacity")
	}
	seated, err := l.registrations.CountSeated(ctx, workshopID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to count seated registrations")
	}
	if seated > workshop.Capacity {
		// Overbooking can only come from data corruption, never from this
		// ledger. Surface it loudly instead of absorbing it.
		l.logger.Error("seat count exceeds capacity",
			zap.String("workshop_id", workshopID),
			zap.Int("seated", seated),
			zap.Int("capacity", workshop.Capacity),
		)
	}
	e.capacity = workshop.Capacity
	e.seated = seated
	e.loaded = true
	return nil
}

// TryReserve atomically checks the seat count against capacity and
// claims a seat. Returns ErrCapacityExceeded when the workshop is full.
func (l *CapacityLedger) TryReserve(ctx context.Context, workshopID string) (*Reservation, error) {
	e := l.entry(workshopID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := l.load(ctx, workshopID, e); err != nil {
		return nil, err
	}
	if e.seated >= e.capacity {
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "")
	}
	e.seated++
	return &Reservation{WorkshopID: workshopID, ledger: l}, nil
}

// Release returns one seat. Called exactly once per successful
// cancellation of a seated registration; the count is clamped at zero.
func (l *CapacityLedger) Release(workshopID string) {
	e := l.entry(workshopID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		// Nothing cached for this workshop yet; the next load recounts
		// from the database, which already reflects the cancellation.
		return
	}
	if e.seated > 0 {
		e.seated--
	}
}

// Seated returns the current seat usage for a workshop.
func (l *CapacityLedger) Seated(ctx context.Context, workshopID string) (int, error) {
	e := l.entry(workshopID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := l.load(ctx, workshopID, e); err != nil {
		return 0, err
	}
	return e.seated, nil
}

// Resize revalidates and applies a new capacity while holding the
// workshop's admission lock, so no booking can slip past a shrinking
// cap. The persist callback runs inside the lock; the in-memory capacity
// only changes once it succeeds.
func (l *CapacityLedger) Resize(ctx context.Context, workshopID string, capacity int, persist func(context.Context) error) error {
	if capacity < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "capacity must be at least 1")
	}

	e := l.entry(workshopID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := l.load(ctx, workshopID, e); err != nil {
		return err
	}
	if capacity < e.seated {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "capacity below current enrollment")
	}
	if persist != nil {
		if err := persist(ctx); err != nil {
			return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist capacity")
		}
	}
	e.capacity = capacity
	return nil
}
