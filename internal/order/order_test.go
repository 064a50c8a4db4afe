package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kitchen-dispatcher/internal/order"
)

func TestNew(t *testing.T) {
	o := order.New("o-1", "Burger", order.Hot, 300, 0.5)

	assert.Equal(t, "o-1", o.ID)
	assert.Equal(t, "Burger", o.Name)
	assert.Equal(t, order.Hot, o.Temp)
	assert.Equal(t, 300, o.ShelfLife)
	assert.Equal(t, 0.5, o.DecayRate)
}

func TestTemperatureValid(t *testing.T) {
	assert.True(t, order.Hot.Valid())
	assert.True(t, order.Cold.Valid())
	assert.True(t, order.Frozen.Valid())
	assert.False(t, order.Temperature("lukewarm").Valid())
}

func TestString(t *testing.T) {
	o := order.New("o-2", "Salad", order.Cold, 200, 0.2)
	assert.Contains(t, o.String(), "Salad")
	assert.Contains(t, o.String(), "cold")
}
