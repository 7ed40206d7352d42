package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-agenda/internal/logging"
)

type Event struct {
	ShopID   uuid.UUID
	UserID   *uuid.UUID
	Action   string
	Entity   string
	EntityID *uuid.UUID
	Metadata any
}

// Store persists one event.
type Store interface {
	Log(ctx context.Context, ev Event) error
}

type Dispatcher struct {
	store  Store
	logger *logging.Logger
	queue  chan Event
	wg     sync.WaitGroup
	once   sync.Once
}

func NewDispatcher(store Store, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	d := &Dispatcher{
		store:  store,
		logger: logger,
		queue:  make(chan Event, 100),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		if err := d.store.Log(context.Background(), ev); err != nil {
			d.logger.Error("audit write failed", "action", ev.Action, "shop_id", ev.ShopID, "err", err)
		}
	}
}

// Dispatch never blocks the request path. A full queue drops the event.
func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("audit queue full, dropping event", "action", ev.Action, "shop_id", ev.ShopID)
	}
}

// Close drains queued events. Dispatch must not be called afterwards.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
