package redisx

import "time"

const (
	// Session token: session:{token} -> user_id
	KeySession = "session:%s"

	// Jumlah line di pending cart: cart_count:{user_id} -> int
	KeyCartCount = "cart_count:%s"

	// Cache status order: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSession     = 24 * time.Hour
	TTLCartCount   = 5 * time.Minute
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
