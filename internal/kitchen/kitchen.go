// Package kitchen is the concurrent shelf-management engine: the
// intake producer, the cleanup sweeper, per-order fulfillment and
// courier tasks, and the orchestrator that wires them together (spec
// §4.4–§4.8, §5).
package kitchen

import (
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"kitchen-dispatcher/internal/allocator"
	"kitchen-dispatcher/internal/config"
	"kitchen-dispatcher/internal/events"
	"kitchen-dispatcher/internal/order"
	"kitchen-dispatcher/internal/orderstate"
	shelf "kitchen-dispatcher/internal/shelves"
)

// Counters summarizes one completed run (spec §4.8 step 5).
type Counters struct {
	Total     int
	Active    int
	Wasted    int
	Delivered int
}

// Kitchen owns the one global lock protecting the order table, the
// per-order cancellation-signal registry, and every shelf count
// derived from them (spec §5). No sleep or wait ever happens while mu
// is held; event log records are written while it is held.
type Kitchen struct {
	orders []order.Order
	cfg    config.Config
	log    *zap.SugaredLogger

	mu     sync.Mutex
	states map[int]*orderstate.OrderState
	cancel map[int]*cancelSignal

	wg          sync.WaitGroup // one entry per dispatched courier
	stop        chan struct{}  // closed to force an early shutdown
	stopOnce    sync.Once
	clock       orderstate.Clock
	pickupDelay func(min, max int) int
}

// New constructs a Kitchen ready to Run against orders under cfg.
func New(orders []order.Order, cfg config.Config, log *zap.SugaredLogger) *Kitchen {
	return &Kitchen{
		orders:      orders,
		cfg:         cfg,
		log:         log,
		states:      make(map[int]*orderstate.OrderState),
		cancel:      make(map[int]*cancelSignal),
		stop:        make(chan struct{}),
		clock:       time.Now,
		pickupDelay: uniformPickupDelay,
	}
}

func uniformPickupDelay(min, max int) int {
	if min >= max {
		return min
	}
	return min + rand.IntN(max-min+1)
}

// Stop forces an early, best-effort shutdown: it unblocks the cleanup
// sweeper if it is waiting, and stops the intake producer from
// submitting further orders. Couriers already dispatched are not
// interrupted; each still waits out its pickup delay. It is the process-level
// escape hatch a SIGINT/SIGTERM handler uses; the normal path is for
// Run to return on its own once every order is terminal.
func (k *Kitchen) Stop() {
	k.stopOnce.Do(func() { close(k.stop) })
}

// Run starts the cleanup sweeper, runs the intake producer to
// completion, waits for every courier to finish, stops the sweeper,
// and returns the final counters (spec §4.8).
func (k *Kitchen) Run() Counters {
	k.log.Infow("kitchen starting", "order_count", len(k.orders), "config", k.cfg)

	cleanupDone := make(chan struct{})
	go func() {
		defer close(cleanupDone)
		k.cleanup()
	}()

	k.acceptOrders()
	k.wg.Wait()

	k.Stop() // signal the sweeper; its last iteration becomes a no-op
	<-cleanupDone

	counters := k.counters()
	k.log.Infow("kitchen stopped",
		"total", counters.Total,
		"active", counters.Active,
		"wasted", counters.Wasted,
		"delivered", counters.Delivered,
	)
	return counters
}

// acceptOrders iterates the input list in order, submitting one order
// per 1/intake_orders_per_sec seconds, spawning a fulfillment task for
// each without waiting on it (spec §4.5). There is no cancellation of
// the intake producer in the model; Stop only lets the host process
// end it early, during the wait before the next order.
func (k *Kitchen) acceptOrders() {
	delay := time.Duration(float64(time.Second) / float64(k.cfg.IntakeOrdersPerSec))
	k.log.Infow("accepting orders", "delay", delay)

	for orderNum, o := range k.orders {
		select {
		case <-k.stop:
			return
		case <-time.After(delay):
		}
		k.fulfillOrder(orderNum, o)
	}
}

// fulfillOrder runs the allocator, builds the OrderState, records a
// fresh cancellation signal, and registers the forthcoming courier —
// all under the lock — then dispatches the courier outside of it
// (spec §4.6).
func (k *Kitchen) fulfillOrder(orderNum int, o order.Order) {
	k.mu.Lock()
	_, pickupSec := k.placeOrder(orderNum, o)
	k.logSnapshot()
	k.wg.Add(1) // register the forthcoming courier before releasing the lock
	k.mu.Unlock()

	go k.dispatchOrder(orderNum, pickupSec)
}

// logSnapshot dumps each shelf's occupancy at debug level: FULL/OK
// against its configured capacity, or unbounded for waste. Caller must
// hold k.mu.
func (k *Kitchen) logSnapshot() {
	counts := shelf.Counts(k.states)

	for _, name := range []string{string(shelf.HotShelf), string(shelf.ColdShelf), string(shelf.FrozenShelf), string(shelf.OverflowShelf)} {
		capacity := k.cfg.Capacity[name]
		status := "OK"
		if counts[name] >= capacity {
			status = "FULL"
		}
		k.log.Debugw("snapshot", "shelf", name, "status", status, "count", counts[name], "capacity", capacity)
	}
	k.log.Debugw("snapshot", "shelf", orderstate.Waste, "status", "--->", "count", counts[orderstate.Waste], "capacity", "unlimited")
}

func (k *Kitchen) placeOrder(orderNum int, o order.Order) (string, int) {
	cancel := func(evicted int) {
		if sig := k.cancel[evicted]; sig != nil {
			sig.set()
		}
	}

	shelf, evts := allocator.MakeRoom(k.states, k.cfg.Capacity, string(o.Temp), cancel)
	for _, evt := range evts {
		events.Log(k.log, evt.Kind, evt.OrderNum, evt.Fields...)
	}

	pickupSec := k.pickupDelay(k.cfg.PickupMinSec, k.cfg.PickupMaxSec)

	k.states[orderNum] = orderstate.New(o, shelf, pickupSec, k.clock)
	k.cancel[orderNum] = newCancelSignal()

	events.Log(k.log, events.New, orderNum, "shelf", shelf, "pickup_sec", pickupSec)

	return shelf, pickupSec
}

// dispatchOrder waits up to pickupSec seconds for either the timeout
// or the order's cancellation signal, then finalizes the order under
// the lock (spec §4.7).
func (k *Kitchen) dispatchOrder(orderNum int, pickupSec int) {
	defer k.wg.Done()

	k.mu.Lock()
	sig := k.cancel[orderNum]
	k.mu.Unlock()

	select {
	case <-sig.wait():
	case <-time.After(time.Duration(pickupSec) * time.Second):
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	state := k.states[orderNum]
	if state.CurrentShelf() == orderstate.Waste {
		events.Log(k.log, events.PickupCanceled, orderNum, "age", state.TotalAge())
		return
	}

	state.Close(time.Time{}, nil)
	events.Log(k.log, events.Delivered, orderNum, "age", state.TotalAge(), "value", valueOrZero(state.LastValue))
}

// cleanup is the periodic sweeper: each cycle it waits up to
// cleanup_delay seconds (cancellable via Stop), wastes any order whose
// value has dropped to zero or below, and opportunistically recovers
// one overflow order (spec §4.4).
func (k *Kitchen) cleanup() {
	delay := time.Duration(k.cfg.CleanupDelay * float64(time.Second))

	for {
		select {
		case <-k.stop:
			return
		case <-time.After(delay):
		}

		k.sweep()

		select {
		case <-k.stop:
			return
		default:
		}
	}
}

func (k *Kitchen) sweep() {
	k.mu.Lock()
	defer k.mu.Unlock()

	checked, expired := 0, 0
	for orderNum, state := range k.states {
		if state.Closed() || state.CurrentShelf() == orderstate.Waste {
			continue
		}
		checked++

		val := state.Value()
		if val <= 0 {
			expired++
			state.MoveToWaste(&val)
			if sig := k.cancel[orderNum]; sig != nil {
				sig.set()
			}
			events.Log(k.log, events.Unhealthy, orderNum, "age", state.TotalAge(), "value", val)
		}
	}

	if evt, ok := allocator.Recover(k.states, k.cfg.Capacity); ok {
		events.Log(k.log, evt.Kind, evt.OrderNum, evt.Fields...)
	}

	if expired > 0 {
		k.log.Debugw("cleanup sweep", "checked", checked, "expired", expired)
	}
}

func (k *Kitchen) counters() Counters {
	k.mu.Lock()
	defer k.mu.Unlock()

	c := Counters{Total: len(k.states)}
	for _, state := range k.states {
		switch {
		case state.CurrentShelf() == orderstate.Waste:
			c.Wasted++
		case state.Closed():
			c.Delivered++
		default:
			c.Active++
		}
	}
	return c
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
