// Package orderstate holds the mutable per-order placement history and
// the decay arithmetic derived from it. An Order itself never changes;
// everything that changes over an order's life — which shelf it sits
// on, how long it has sat there, what it is worth right now — lives
// here instead.
package orderstate

import (
	"time"

	"kitchen-dispatcher/internal/order"
)

// Waste is the virtual, unbounded terminal shelf. It is never present
// in a capacity map; an order only ever lands here by eviction or
// decay, and once there its segment is closed immediately.
const Waste = "waste"

// Clock returns the current time. Tests substitute a fake clock to
// control decay arithmetic deterministically; production code uses
// time.Now.
type Clock func() time.Time

// ShelfHistory is one placement segment: the order sat on Shelf from
// AddedAt until RemovedAt (zero while the segment is open). Value is
// recorded once the segment closes.
type ShelfHistory struct {
	Shelf     string
	AddedAt   time.Time
	RemovedAt time.Time
	Value     *float64
}

func newSegment(shelf string, at time.Time) ShelfHistory {
	return ShelfHistory{Shelf: shelf, AddedAt: at}
}

func (h ShelfHistory) open() bool {
	return h.RemovedAt.IsZero()
}

// OrderState is the mutable record of one order's placement history.
// It is only ever mutated while the caller holds the kitchen's global
// lock (spec §5); every method here assumes that discipline and does
// no locking of its own.
type OrderState struct {
	Order     order.Order
	History   []ShelfHistory
	PickupSec int
	LastValue *float64

	clock Clock
}

// New creates the initial, single-segment state for an order placed
// on shelf at the given clock's current time.
func New(o order.Order, shelf string, pickupSec int, clock Clock) *OrderState {
	if clock == nil {
		clock = time.Now
	}
	return &OrderState{
		Order:     o,
		History:   []ShelfHistory{newSegment(shelf, clock())},
		PickupSec: pickupSec,
		clock:     clock,
	}
}

// SetClock replaces the state's clock. Production code never calls
// this after construction; it exists so tests can advance time
// between observations without forcing a state transition.
func (s *OrderState) SetClock(clock Clock) {
	s.clock = clock
}

func (s *OrderState) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock()
}

func (s *OrderState) last() *ShelfHistory {
	return &s.History[len(s.History)-1]
}

// CurrentShelf is the shelf of the most recent segment.
func (s *OrderState) CurrentShelf() string {
	return s.last().Shelf
}

// Closed reports whether the most recent segment has been closed.
func (s *OrderState) Closed() bool {
	return !s.last().open()
}

// Close closes the last segment, idempotently: a second call on an
// already-closed segment is a no-op. removedAt/value default to now()
// and the freshly computed Value().
func (s *OrderState) Close(removedAt time.Time, value *float64) {
	last := s.last()
	if !last.open() {
		return
	}
	if removedAt.IsZero() {
		removedAt = s.now()
	}
	last.RemovedAt = removedAt

	v := value
	if v == nil {
		computed := s.Value()
		v = &computed
	}
	last.Value = v
	s.LastValue = v
}

// Move closes the current segment and appends next, reusing a single
// now() read for both the closing RemovedAt and the new segment's
// AddedAt (invariant I2 — no drift between two clock reads).
func (s *OrderState) Move(shelf string, value *float64) time.Time {
	now := s.now()
	s.Close(now, value)

	next := ShelfHistory{Shelf: shelf, AddedAt: now}
	s.History = append(s.History, next)
	return now
}

// MoveToWaste moves the order to the virtual waste shelf and closes
// that segment immediately (invariant I4). The new waste segment
// inherits the value recorded when the prior segment closed.
func (s *OrderState) MoveToWaste(value *float64) {
	if s.CurrentShelf() == Waste && s.Closed() {
		return // already wasted; idempotent (P6)
	}
	now := s.Move(Waste, value)
	s.Close(now, nil)

	// Copy the value the prior segment closed with, rather than
	// recomputing — the waste segment itself has zero age.
	prior := s.History[len(s.History)-2]
	s.last().Value = prior.Value
	s.LastValue = prior.Value
}

// ages returns, for every segment, the elapsed time it was occupied:
// removedAt (or now, for the open last segment) minus addedAt.
func (s *OrderState) ages() []float64 {
	ages := make([]float64, len(s.History))
	now := s.now()
	for i, h := range s.History {
		removed := h.RemovedAt
		if removed.IsZero() {
			removed = now
		}
		ages[i] = removed.Sub(h.AddedAt).Seconds()
	}
	return ages
}

// decayRates returns, for every segment, Order.DecayRate times the
// decay modifier for that segment's shelf (1 on the order's home
// shelf, 2 elsewhere — overflow and waste both count as elsewhere).
func (s *OrderState) decayRates() []float64 {
	rates := make([]float64, len(s.History))
	for i, h := range s.History {
		modifier := 2.0
		if h.Shelf == string(s.Order.Temp) {
			modifier = 1.0
		}
		rates[i] = s.Order.DecayRate * modifier
	}
	return rates
}

// TotalAge is the sum of every segment's age.
func (s *OrderState) TotalAge() float64 {
	total := 0.0
	for _, a := range s.ages() {
		total += a
	}
	return total
}

// Value computes 1 - (sum of age_i * decayRate_i) / shelfLife across
// the whole history. It may go negative; callers interpret Value() <=
// 0 as perished.
func (s *OrderState) Value() float64 {
	ages := s.ages()
	rates := s.decayRates()

	decayed := 0.0
	for i := range ages {
		decayed += ages[i] * rates[i]
	}
	return 1.0 - decayed/float64(s.Order.ShelfLife)
}

// TTL is the remaining time on the current shelf before Value reaches
// zero, given everything already accrued on prior (closed) segments.
func (s *OrderState) TTL() float64 {
	ages := s.ages()
	rates := s.decayRates()

	priorDecay := 0.0
	for i := 0; i < len(ages)-1; i++ {
		priorDecay += ages[i] * rates[i]
	}
	lastRate := rates[len(rates)-1]
	return (float64(s.Order.ShelfLife) - priorDecay) / lastRate
}

// PickupTTL is the margin between the order's remaining TTL and the
// worst-case remaining pickup wait. Negative means the courier will
// be too late; this is a valid signal, not an error.
func (s *OrderState) PickupTTL() float64 {
	timeToPickup := float64(s.PickupSec) - s.TotalAge()
	return s.TTL() - timeToPickup
}
