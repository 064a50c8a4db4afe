// Package events names the order-lifecycle transitions the kitchen
// emits to its logging sink and maps each to the zap level the
// original implementation used (spec §6).
package events

import "go.uber.org/zap"

// Kind is one order state transition worth a log line.
type Kind string

const (
	New            Kind = "new"
	Delivered      Kind = "delivered"
	PickupCanceled Kind = "pickup_canceled"
	Unhealthy      Kind = "unhealthy"
	Recovered      Kind = "recovered"
	Discarded      Kind = "discarded"
)

// Log emits one structured record for an order transition.
// Unhealthy/pickup_canceled/discarded log at error level;
// new/delivered/recovered log at info level.
func Log(log *zap.SugaredLogger, kind Kind, orderNum int, fields ...interface{}) {
	args := append([]interface{}{"order_num", orderNum, "status", string(kind)}, fields...)

	switch kind {
	case Unhealthy, PickupCanceled, Discarded:
		log.Errorw(string(kind), args...)
	default:
		log.Infow(string(kind), args...)
	}
}
