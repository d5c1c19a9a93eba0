package utils

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// NewMembershipCache holds positive room membership lookups for ttl.
func NewMembershipCache(ttl time.Duration) *cache.Cache {
	return cache.New(ttl, 30*time.Second)
}

// NewAuthCache holds validated bearer token claims. Entries must not outlive the token.
func NewAuthCache(ttl time.Duration) *cache.Cache {
	return cache.New(ttl, time.Second)
}
