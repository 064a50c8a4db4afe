package kitchen_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kitchen-dispatcher/internal/config"
	"kitchen-dispatcher/internal/kitchen"
	"kitchen-dispatcher/internal/order"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestRun_DirectDelivery(t *testing.T) {
	orders := []order.Order{
		order.New("a", "Burger", order.Hot, 300, 0.5),
	}
	cfg := config.Config{
		Capacity:           map[string]int{"hot": 10, "cold": 10, "frozen": 10, "overflow": 15},
		IntakeOrdersPerSec: 10, // keep the test fast
		PickupMinSec:       1,
		PickupMaxSec:       1,
		CleanupDelay:       0.05,
	}

	k := kitchen.New(orders, cfg, testLogger())
	counters := k.Run()

	assert.Equal(t, 1, counters.Total)
	assert.Equal(t, 0, counters.Active)
	assert.Equal(t, 1, counters.Delivered)
	assert.Equal(t, 0, counters.Wasted)
}

func TestRun_OverflowRouting(t *testing.T) {
	orders := []order.Order{
		order.New("a", "Burger", order.Hot, 300, 0.01),
		order.New("b", "Fries", order.Hot, 300, 0.01),
		order.New("c", "Nuggets", order.Hot, 300, 0.01),
	}
	cfg := config.Config{
		Capacity:           map[string]int{"hot": 1, "cold": 1, "frozen": 1, "overflow": 2},
		IntakeOrdersPerSec: 20,
		PickupMinSec:       2,
		PickupMaxSec:       2,
		CleanupDelay:       0.05,
	}

	k := kitchen.New(orders, cfg, testLogger())
	counters := k.Run()

	assert.Equal(t, 3, counters.Total)
	assert.Equal(t, 0, counters.Active)
	assert.Equal(t, 3, counters.Delivered)
}

func TestRun_WasteByDecayCancelsCourier(t *testing.T) {
	// Ample capacity; shelf life so short the cleanup sweep always
	// wastes the order long before the (long) pickup window elapses.
	orders := []order.Order{
		order.New("a", "Doomed", order.Hot, 1, 10),
	}
	cfg := config.Config{
		Capacity:           map[string]int{"hot": 10, "cold": 10, "frozen": 10, "overflow": 10},
		IntakeOrdersPerSec: 20,
		PickupMinSec:       30,
		PickupMaxSec:       30,
		CleanupDelay:       0.05,
	}

	k := kitchen.New(orders, cfg, testLogger())

	start := time.Now()
	counters := k.Run()
	elapsed := time.Since(start)

	assert.Equal(t, 1, counters.Wasted)
	assert.Equal(t, 0, counters.Delivered)
	// Cancellation must be bounded by cleanup_delay, not pickup_max_sec.
	assert.Less(t, elapsed, 5*time.Second)
}

func TestRun_P2_NoOrderLost(t *testing.T) {
	orders := make([]order.Order, 0, 6)
	for i := 0; i < 6; i++ {
		orders = append(orders, order.New("o", "Item", order.Hot, 2, 5))
	}
	cfg := config.Config{
		Capacity:           map[string]int{"hot": 1, "cold": 1, "frozen": 1, "overflow": 1},
		IntakeOrdersPerSec: 50,
		PickupMinSec:       1,
		PickupMaxSec:       1,
		CleanupDelay:       0.02,
	}

	k := kitchen.New(orders, cfg, testLogger())
	counters := k.Run()

	require.Equal(t, len(orders), counters.Total)
	assert.Equal(t, 0, counters.Active)
	assert.Equal(t, counters.Total, counters.Delivered+counters.Wasted)
}
