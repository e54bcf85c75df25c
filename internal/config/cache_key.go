package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionSnapshotKey returns the durable snapshot key for a (user, test)
// pair. This key name is a wire contract shared with the client.
func (r *CacheKeyStruct) SessionSnapshotKey(userID, testID string) string {
	return fmt.Sprintf("session:%s:%s", userID, testID)
}

// SessionLivenessKey returns the volatile liveness marker key for a
// (user, test) pair. The marker carries a TTL and is refreshed by client
// heartbeats; its presence means the same browsing context is still open.
func (r *CacheKeyStruct) SessionLivenessKey(userID, testID string) string {
	return fmt.Sprintf("active:%s:%s", userID, testID)
}

// TestDefinitionKey returns the cache key for a warmed test definition.
func (r *CacheKeyStruct) TestDefinitionKey(testID string) string {
	return fmt.Sprintf("test:%s:definition", testID)
}

var CacheKey = NewCacheKeyStruct()
