package redisx

import "time"

const (
	// Cached reservation record: reservation:{id} -> detail JSON
	KeyReservation = "reservation:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLReservationCache = 5 * time.Minute
	TTLDedup            = 48 * time.Hour
)
