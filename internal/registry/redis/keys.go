package redis

import "fmt"

// Key prefix for all relay data.
const keyPrefix = "keyrelay"

// pendingKey returns the Redis key for a player's pending verification record.
func pendingKey(playerID string) string {
	return fmt.Sprintf("%s:pending:%s", keyPrefix, playerID)
}

// pendingKeyPattern matches all pending verification records.
func pendingKeyPattern() string {
	return fmt.Sprintf("%s:pending:*", keyPrefix)
}

// completionsKey returns the Redis key for the completion queue.
func completionsKey() string {
	return fmt.Sprintf("%s:completions", keyPrefix)
}
