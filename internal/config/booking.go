package config

import (
	"github.com/tigertix/event-ticketing/internal/booking"
)

// LoadBookingPolicy reads the retry/contention tunables for the booking
// service.  All values are optional; the defaults give three allocation
// attempts 100ms apart under an overall five second timeout.
//
//	BOOKING_MAX_ATTEMPTS – total attempts per purchase (>= 1)
//	BOOKING_RETRY_WAIT   – fixed pause between attempts (Go duration)
//	BOOKING_TIMEOUT      – hard bound on one purchase call
func LoadBookingPolicy() booking.Policy {
	def := booking.DefaultPolicy()
	return booking.Policy{
		MaxAttempts: envInt("BOOKING_MAX_ATTEMPTS", def.MaxAttempts),
		RetryWait:   envDur("BOOKING_RETRY_WAIT", def.RetryWait),
		Timeout:     envDur("BOOKING_TIMEOUT", def.Timeout),
	}
}
