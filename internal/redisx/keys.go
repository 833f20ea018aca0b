package redisx

import "time"

const (
	// Product cache: product:{id} -> product json, or "notfound"
	KeyProduct = "product:%s"

	// Product list caches: products:all:{gen}. Every product write bumps
	// the generation, so lists filled before a write are never read again.
	KeyProductsGen      = "products:gen"
	KeyProductsAll      = "products:all:%d"
	KeyProductsLowStock = "products:low-stock:%d"

	// Registered expo push tokens (set)
	KeyPushTokens = "push:tokens"

	// Dedup event processing: dedup:{service}:{id} (id = event_id)
	KeyDedup = "dedup:%s:%s"

	// Pub/sub channel for in-app toast alerts
	ChannelLowStock = "alerts:low-stock"
)

var (
	TTLProductCache = 5 * time.Minute
	TTLNotFound     = 1 * time.Minute
	TTLDedup        = 48 * time.Hour
)
