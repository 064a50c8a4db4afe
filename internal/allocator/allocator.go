// Package allocator implements make_room: the placement, recovery and
// eviction policy that decides which shelf a new order lands on and
// may mutate other orders' states to make room for it (spec §4.3).
package allocator

import (
	"fmt"
	"math"

	"kitchen-dispatcher/internal/events"
	"kitchen-dispatcher/internal/orderstate"
	shelf "kitchen-dispatcher/internal/shelves"
)

const overflow = string(shelf.OverflowShelf)

// Event is one log-worthy side effect of a MakeRoom call. The
// allocator never touches a logger itself — it returns what happened
// so the caller (which already holds the logger) can emit it. This
// keeps MakeRoom a pure decision-plus-state-mutation function, exactly
// the shape spec §4.3 describes.
type Event struct {
	Kind     events.Kind
	OrderNum int
	Fields   []interface{}
}

// Canceler is called to signal an order's pending courier that its
// order moved to waste and its pickup wait should end early.
type Canceler func(orderNum int)

// MakeRoom returns the shelf a new order should be placed on, given
// its desired (home) shelf. It may mutate other OrderStates in states
// to recover an overflow order to its home shelf, or to evict one to
// waste, and will invoke cancel for any order it evicts. Must be
// called while the caller holds the global lock.
func MakeRoom(
	states map[int]*orderstate.OrderState,
	capacity map[string]int,
	desired string,
	cancel Canceler,
) (string, []Event) {
	counts := shelf.Counts(states)

	if !shelf.IsFull(counts, capacity, desired) {
		return desired, nil
	}

	if !shelf.IsFull(counts, capacity, overflow) {
		return overflow, nil
	}

	// Overflow is full. Try to recover an active overflow order back
	// to its own home shelf before resorting to eviction.
	if evt, ok := Recover(states, capacity); ok {
		return overflow, []Event{evt}
	}

	orderNum, pickupTTL, ok := findEvictionCandidate(states)
	if !ok {
		// I3 says this can't happen: overflow is full of active
		// orders, so there must be at least one to evict. Reaching
		// here means the order table and its derived counts have
		// diverged — a bug, not a recoverable runtime condition.
		panic(fmt.Sprintf("allocator: overflow full (%d/%d) but no active overflow order to evict",
			counts[overflow], capacity[overflow]))
	}

	states[orderNum].MoveToWaste(nil)
	cancel(orderNum)

	return overflow, []Event{{
		Kind:     events.Discarded,
		OrderNum: orderNum,
		Fields:   []interface{}{"pickup_ttl", pickupTTL},
	}}
}

// Recover attempts a single recovery: among active orders on overflow,
// move the one whose home shelf has the lowest utilization back to
// that home shelf. Used both by MakeRoom (step 3, on the capacity-
// pressure path) and by the cleanup sweeper (spec §4.4 step 2, as an
// opportunistic recovery once per sweep). Returns ok=false if no
// overflow order can currently be recovered.
func Recover(states map[int]*orderstate.OrderState, capacity map[string]int) (Event, bool) {
	counts := shelf.Counts(states)

	orderNum, homeShelf, ok := findRecoverable(states, capacity, counts)
	if !ok {
		return Event{}, false
	}

	states[orderNum].Move(homeShelf, nil)

	return Event{
		Kind:     events.Recovered,
		OrderNum: orderNum,
		Fields:   []interface{}{"from", overflow, "to", homeShelf},
	}, true
}

// findRecoverable scans active orders currently on overflow and picks
// the one whose home shelf has capacity and the lowest utilization
// (spec §4.3 step 3). Ties break on the smallest order number.
func findRecoverable(
	states map[int]*orderstate.OrderState,
	capacity map[string]int,
	counts map[string]int,
) (orderNum int, homeShelf string, ok bool) {
	bestUtil := math.Inf(1)

	for num, state := range states {
		if state.CurrentShelf() != overflow || state.Closed() {
			continue
		}
		home := string(state.Order.Temp)
		if shelf.IsFull(counts, capacity, home) {
			continue
		}
		util := shelf.Utilization(counts, capacity, home)
		if util < bestUtil || (util == bestUtil && num < orderNum) || !ok {
			bestUtil = util
			orderNum = num
			homeShelf = home
			ok = true
		}
	}
	return orderNum, homeShelf, ok
}

// findEvictionCandidate picks the active overflow order with the
// smallest pickup_ttl (spec §4.3 step 4). Ties break on the smallest
// order number.
func findEvictionCandidate(states map[int]*orderstate.OrderState) (orderNum int, pickupTTL float64, ok bool) {
	best := math.Inf(1)

	for num, state := range states {
		if state.CurrentShelf() != overflow || state.Closed() {
			continue
		}
		ttl := state.PickupTTL()
		if ttl < best || (ttl == best && num < orderNum) || !ok {
			best = ttl
			orderNum = num
			pickupTTL = ttl
			ok = true
		}
	}
	return orderNum, pickupTTL, ok
}
