package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

type mockCapacityWorkshops struct {
	workshops map[string]*models.Workshop
	loads     int
}

func (m *mockCapacityWorkshops) FindByID(ctx context.Context, id string) (*models.Workshop, error) {
	m.loads++
	if w, ok := m.workshops[id]; ok {
		return w, nil
	}
	return nil, sql.ErrNoRows
}

type mockSeatedCounter struct {
	counts map[string]int
}

func (m *mockSeatedCounter) CountSeated(ctx context.Context, workshopID string) (int, error) {
	return m.counts[workshopID], nil
}

func newTestLedger(capacity, seated int) *CapacityLedger {
	workshops := &mockCapacityWorkshops{workshops: map[string]*models.Workshop{
		"ws-1": {ID: "ws-1", Capacity: capacity, Status: models.WorkshopStatusPublished},
	}}
	counter := &mockSeatedCounter{counts: map[string]int{"ws-1": seated}}
	return NewCapacityLedger(workshops, counter, nil)
}

func TestTryReserveRespectsCapacity(t *testing.T) {
	ledger := newTestLedger(2, 0)
	ctx := context.Background()

	_, err := ledger.TryReserve(ctx, "ws-1")
	require.NoError(t, err)
	_, err = ledger.TryReserve(ctx, "ws-1")
	require.NoError(t, err)

	_, err = ledger.TryReserve(ctx, "ws-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestTryReserveSeedsFromExistingRegistrations(t *testing.T) {
	ledger := newTestLedger(3, 2)
	ctx := context.Background()

	_, err := ledger.TryReserve(ctx, "ws-1")
	require.NoError(t, err)

	_, err = ledger.TryReserve(ctx, "ws-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestConcurrentReservesNeverOverbook(t *testing.T) {
	const capacity = 2
	const racers = 3
	ledger := newTestLedger(capacity, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = ledger.TryReserve(ctx, "ws-1")
		}(i)
	}
	wg.Wait()

	granted := 0
	rejected := 0
	for _, err := range results {
		if err == nil {
			granted++
		} else if appErrors.Is(err, appErrors.ErrCapacityExceeded) {
			rejected++
		}
	}
	assert.Equal(t, capacity, granted, "exactly capacity seats must be granted")
	assert.Equal(t, racers-capacity, rejected)

	seated, err := ledger.Seated(ctx, "ws-1")
	require.NoError(t, err)
	assert.Equal(t, capacity, seated)
}

func TestReservationRollbackIsIdempotent(t *testing.T) {
	ledger := newTestLedger(1, 0)
	ctx := context.Background()

	reservation, err := ledger.TryReserve(ctx, "ws-1")
	require.NoError(t, err)

	reservation.Rollback()
	reservation.Rollback()

	seated, err := ledger.Seated(ctx, "ws-1")
	require.NoError(t, err)
	assert.Equal(t, 0, seated, "double rollback must release the seat only once")
}

func TestReleaseClampsAtZero(t *testing.T) {
	ledger := newTestLedger(2, 0)
	ctx := context.Background()

	// Force a load, then release more than was ever reserved.
	_, err := ledger.Seated(ctx, "ws-1")
	require.NoError(t, err)
	ledger.Release("ws-1")
	ledger.Release("ws-1")

	seated, err := ledger.Seated(ctx, "ws-1")
	require.NoError(t, err)
	assert.Equal(t, 0, seated)
}

func TestResizeRejectsBelowSeated(t *testing.T) {
	ledger := newTestLedger(5, 3)
	ctx := context.Background()

	err := ledger.Resize(ctx, "ws-1", 2, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestResizeAppliesAfterPersist(t *testing.T) {
	ledger := newTestLedger(2, 2)
	ctx := context.Background()

	persisted := false
	err := ledger.Resize(ctx, "ws-1", 3, func(context.Context) error {
		persisted = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, persisted)

	_, err = ledger.TryReserve(ctx, "ws-1")
	require.NoError(t, err, "the grown capacity must admit another seat")
}

func TestResizePersistFailureKeepsOldCapacity(t *testing.T) {
	ledger := newTestLedger(2, 2)
	ctx := context.Background()

	err := ledger.Resize(ctx, "ws-1", 3, func(context.Context) error {
		return sql.ErrConnDone
	})
	require.Error(t, err)

	_, err = ledger.TryReserve(ctx, "ws-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded), "capacity must not change when persistence fails")
}
